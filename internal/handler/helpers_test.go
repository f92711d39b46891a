package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"Thread_Hive/internal/middleware"
	"Thread_Hive/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFailStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{pkg.Invalidf("content required"), http.StatusBadRequest},
		{pkg.NotFoundf("thread %d", 7), http.StatusNotFound},
		{pkg.Conflictf("already a member"), http.StatusConflict},
		// 未分类错误不能假装成调用方问题
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		fail(c, tc.err)
		assert.Equal(t, tc.want, w.Code)
		assert.Contains(t, w.Body.String(), "msg")
	}
}

func TestCallerHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Empty(t, callerUid(c))
	assert.Zero(t, callerID(c))

	c.Set(middleware.ContextUidKey, "u_abc")
	c.Set(middleware.ContextUserIDKey, uint64(42))
	assert.Equal(t, "u_abc", callerUid(c))
	assert.EqualValues(t, 42, callerID(c))
}
