package mysql

import (
	"context"
	"encoding/json"
	"testing"

	"Thread_Hive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxLifecycle(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()

	repo := &OutboxRepository{DB: db}
	require.NoError(t, repo.InsertOutbox(ctx, "member_joined", 7, 42))
	require.NoError(t, repo.InsertOutbox(ctx, "member_left", 7, 42))

	rows, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "member_joined", rows[0].EventType)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[0].Payload), &payload))
	assert.Equal(t, "member_joined", payload["event"])
	assert.EqualValues(t, 7, payload["community_id"])
	assert.EqualValues(t, 42, payload["user_id"])
	assert.NotEmpty(t, payload["event_time"])

	require.NoError(t, repo.SuccessUpdate(ctx, rows[0].ID))
	require.NoError(t, repo.RetryUpdate(ctx, rows[1].ID))

	// 成功的不再出现在 pending 批次里
	rows, err = repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 0)

	var failed model.CommunityOutbox
	require.NoError(t, db.First(&failed, "event_type = ?", "member_left").Error)
	assert.EqualValues(t, 2, failed.Status)
	assert.Equal(t, 1, failed.Retry)
}

func TestReconcilerFixesDrift(t *testing.T) {
	db := CreateTempDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	fan := seedUser(t, db, "bob")
	c := seedCommunity(t, db, author, "go", model.JoinModeOpen)
	th := seedThread(t, db, author, &c.ID, nil)

	likes := &ThreadLikeRepository{DB: db}
	_, _, err := likes.Toggle(ctx, fan.ID, th.ID)
	require.NoError(t, err)

	// 人为制造计数漂移
	require.NoError(t, db.Model(&model.Thread{}).Where("id = ?", th.ID).Update("like_count", 99).Error)

	repo := &LikeCountReconcilerRepo{DB: db}
	pairs, last, err := repo.ReconcileList(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, th.ID, last)

	real, err := repo.RealLikes(ctx, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, real)

	require.NoError(t, repo.FixLikeCount(ctx, th.ID, real))
	n, err := likes.GetLikeCount(ctx, th.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
