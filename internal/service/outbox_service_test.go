package service

import (
	"context"
	"errors"
	"testing"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/repository/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayerDrainOnce(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()

	ob := &mysql.OutboxRepository{DB: db}
	require.NoError(t, ob.InsertOutbox(ctx, "member_joined", 1, 1))
	require.NoError(t, ob.InsertOutbox(ctx, "member_left", 1, 1))

	// member_left 投递失败，其余成功
	relayer := NewOutboxRelayer(db, func(ctx context.Context, row *model.CommunityOutbox) error {
		if row.EventType == "member_left" {
			return errors.New("broker down")
		}
		return nil
	})
	relayer.drainOnce(ctx)

	var sent, failed model.CommunityOutbox
	require.NoError(t, db.First(&sent, "event_type = ?", "member_joined").Error)
	assert.EqualValues(t, 1, sent.Status)
	require.NoError(t, db.First(&failed, "event_type = ?", "member_left").Error)
	assert.EqualValues(t, 2, failed.Status)
	assert.Equal(t, 1, failed.Retry)

	// 失败的不会被下一轮重复投递（status!=0）
	delivered := 0
	relayer2 := NewOutboxRelayer(db, func(ctx context.Context, row *model.CommunityOutbox) error {
		delivered++
		return nil
	})
	relayer2.drainOnce(ctx)
	assert.Zero(t, delivered)
}

func TestReconcilerFixesDriftedCounts(t *testing.T) {
	db := mysql.CreateTempDB(t)
	ctx := context.Background()
	author := newUser(t, db, "alice")
	fan := newUser(t, db, "bob")
	newCommunity(t, db, author, "go", model.JoinModeOpen)

	threads := NewThreadService(db, nil)
	th, err := threads.Create(ctx, author.Uid, "go", "post")
	require.NoError(t, err)

	likes := &mysql.ThreadLikeRepository{DB: db}
	_, _, err = likes.Toggle(ctx, fan.ID, th.ID)
	require.NoError(t, err)

	// 人为把冗余计数改坏
	require.NoError(t, db.Model(&model.Thread{}).Where("id = ?", th.ID).Update("like_count", 40).Error)

	NewLikeCountReconciler(db).reconcileOnce(ctx)

	n, err := likes.GetLikeCount(ctx, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
