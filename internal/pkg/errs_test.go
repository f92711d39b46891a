package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrappersKeepKind(t *testing.T) {
	err := Invalidf("join mode %q", "weird")
	assert.ErrorIs(t, err, ErrInvalid)

	err = NotFoundf("user %q", "u_x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `user "u_x"`)

	err = Conflictf("cid %q in use", "go")
	assert.ErrorIs(t, err, ErrConflict)

	// 再包一层也不丢分类
	wrapped := fmt.Errorf("outer: %w", Invariantf("orphan thread %d", 7))
	assert.ErrorIs(t, wrapped, ErrInvariant)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Invalidf("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Invariantf("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
