package service

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeToggleByUid(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	author := newUser(t, db, "alice")
	fan := newUser(t, db, "bob")
	newCommunity(t, db, author, "go", model.JoinModeOpen)

	threads := NewThreadService(db, nil)
	th, err := threads.Create(ctx, author.Uid, "go", "post")
	require.NoError(t, err)

	svc := NewThreadLikeService(db, nil, nil)
	liked, count, err := svc.Toggle(ctx, fan.Uid, th.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	isLiked, err := svc.IsLiked(ctx, fan.Uid, th.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	n, err := svc.GetCount(ctx, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	liked, count, err = svc.Toggle(ctx, fan.Uid, th.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)
}

func TestLikeToggleUnknownUser(t *testing.T) {
	db := mysql.CreateTempDB(t)
	svc := NewThreadLikeService(db, nil, nil)
	_, _, err := svc.Toggle(context.Background(), "u_nobody", 1)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestLikeCountMissingThread(t *testing.T) {
	db := mysql.CreateTempDB(t)
	svc := NewThreadLikeService(db, nil, nil)
	_, err := svc.GetCount(context.Background(), 99999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
