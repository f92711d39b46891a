package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailCodeTwoPhase(t *testing.T) {
	InitTestRedis(t)
	repo := &EmailRepository{}

	require.NoError(t, repo.SetCodePending("register", "a@b.com", "123456"))

	// pending 阶段还查不到
	_, err := repo.GetConfirmedCode("register", "a@b.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)

	require.NoError(t, repo.ConfirmCode("register", "a@b.com"))
	code, err := repo.GetConfirmedCode("register", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	// confirm 之后 pending 键已经转移，再 confirm 失败
	err = repo.ConfirmCode("register", "a@b.com")
	assert.ErrorIs(t, err, ErrCodeConfirmedFailed)

	// 用完即删
	require.NoError(t, repo.DeleteConfirmedCode("register", "a@b.com"))
	_, err = repo.GetConfirmedCode("register", "a@b.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestEmailCodeScopesIsolated(t *testing.T) {
	InitTestRedis(t)
	repo := &EmailRepository{}

	require.NoError(t, repo.SetCodePending("register", "a@b.com", "111111"))
	require.NoError(t, repo.SetCodePending("reset", "a@b.com", "222222"))
	require.NoError(t, repo.ConfirmCode("register", "a@b.com"))

	// reset 作用域不受 register 影响
	_, err := repo.GetConfirmedCode("reset", "a@b.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	require.NoError(t, repo.ConfirmCode("reset", "a@b.com"))
	code, err := repo.GetConfirmedCode("reset", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}
