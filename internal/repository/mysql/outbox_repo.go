package mysql

import (
	"context"
	"encoding/json"
	"time"

	"Thread_Hive/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

type LikeCountReconcilerRepo struct {
	DB *gorm.DB
}

// Pair 对账消息结构体
type Pair struct {
	ID        uint64
	LikeCount int64
}

// InsertOutbox 在业务事务里顺带写入一条事件，由 relayer 异步投递到 kafka
func (r *OutboxRepository) InsertOutbox(ctx context.Context, event string, communityID, userID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"event":        event,
		"community_id": communityID,
		"user_id":      userID,
	})
	ob := &model.CommunityOutbox{
		EventType:   event,
		CommunityID: communityID,
		UserID:      userID,
		Payload:     string(payload),
		Status:      0,
	}
	return r.DB.WithContext(ctx).Create(ob).Error
}

// List outbox查询
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.CommunityOutbox, error) {
	var list []model.CommunityOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.CommunityOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.CommunityOutbox{}).Where("id = ?", id).
		Update("status", 1).Error
}

// ReconcileList 批量读取帖子的冗余点赞计数，按 id 游标推进
func (r *LikeCountReconcilerRepo) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]Pair, uint64, error) {
	var list []Pair
	if err := r.DB.WithContext(ctx).Model(&model.Thread{}).
		Select("id", "like_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealLikes 点赞关系表里的真实数量
func (r *LikeCountReconcilerRepo) RealLikes(ctx context.Context, threadID uint64) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.ThreadLike{}).
		Where("thread_id = ?", threadID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FixLikeCount 修正漂移的冗余计数
func (r *LikeCountReconcilerRepo) FixLikeCount(ctx context.Context, threadID uint64, real int64) error {
	return r.DB.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", threadID).
		UpdateColumn("like_count", real).Error
}
