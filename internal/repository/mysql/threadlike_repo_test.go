package mysql

import (
	"context"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleRoundTrip(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	fan := seedUser(t, db, "bob")
	c := seedCommunity(t, db, author, "go", model.JoinModeOpen)
	th := seedThread(t, db, author, &c.ID, nil)

	repo := &ThreadLikeRepository{DB: db}

	liked, count, err := repo.Toggle(ctx, fan.ID, th.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	liked, count, err = repo.Toggle(ctx, fan.ID, th.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)

	// 取消后关系表里也不能残留
	isLiked, err := repo.IsLiked(ctx, fan.ID, th.ID)
	require.NoError(t, err)
	assert.False(t, isLiked)
	real, err := repo.CountReal(ctx, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, real)
}

func TestToggleMissingThread(t *testing.T) {
	db := CreateTempDB(t)
	fan := seedUser(t, db, "bob")

	repo := &ThreadLikeRepository{DB: db}
	_, _, err := repo.Toggle(context.Background(), fan.ID, 99999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestToggleTwoUsersIndependent(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	u1 := seedUser(t, db, "bob")
	u2 := seedUser(t, db, "carol")
	c := seedCommunity(t, db, author, "go", model.JoinModeOpen)
	th := seedThread(t, db, author, &c.ID, nil)

	repo := &ThreadLikeRepository{DB: db}
	_, _, err := repo.Toggle(ctx, u1.ID, th.ID)
	require.NoError(t, err)
	_, count, err := repo.Toggle(ctx, u2.ID, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	_, count, err = repo.Toggle(ctx, u1.ID, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	isLiked, err := repo.IsLiked(ctx, u2.ID, th.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)
}

func TestRemoveAllByUser(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	fan := seedUser(t, db, "bob")
	c := seedCommunity(t, db, author, "go", model.JoinModeOpen)
	t1 := seedThread(t, db, author, &c.ID, nil)
	t2 := seedThread(t, db, author, &c.ID, nil)

	repo := &ThreadLikeRepository{DB: db}
	for _, id := range []uint64{t1.ID, t2.ID} {
		_, _, err := repo.Toggle(ctx, fan.ID, id)
		require.NoError(t, err)
	}
	_, _, err := repo.Toggle(ctx, author.ID, t1.ID)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveAllByUser(ctx, fan.ID))

	// fan 的赞全部回收并同步扣减计数，author 的不受影响
	n, err := repo.GetLikeCount(ctx, t1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.GetLikeCount(ctx, t2.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	ids, err := repo.LikedThreadIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
