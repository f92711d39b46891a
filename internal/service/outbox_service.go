package service

import (
	"context"
	"time"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"

	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.CommunityOutbox) error

// OutboxRelayer 把 community_outbox 里的 pending 事件批量投递出去（kafka）
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

// LikeCountReconciler 点赞计数对账：threads.like_count 是冗余列，
// 定期和 thread_likes 的真实计数比对并修正漂移
type LikeCountReconciler struct {
	repo      *mysql.LikeCountReconcilerRepo
	batchSize int
	interval  time.Duration
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func NewLikeCountReconciler(db *gorm.DB) *LikeCountReconciler {
	return &LikeCountReconciler{
		repo:      &mysql.LikeCountReconcilerRepo{DB: db},
		batchSize: 500,
		interval:  5 * time.Minute,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		pkg.Log.WithError(err).Error("outbox query failed")
		return
	}
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			pkg.Log.WithError(err).WithField("outbox_id", ob.ID).Warn("outbox send failed")
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				pkg.Log.WithError(err).Error("outbox retry update failed")
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			pkg.Log.WithError(err).Error("outbox success update failed")
		}
	}
}

// Run 对账启动器
func (r *LikeCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

func (r *LikeCountReconciler) reconcileOnce(ctx context.Context) {
	var lastID uint64
	for {
		batch, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			pkg.Log.WithError(err).Error("reconcile list failed")
			return
		}
		if len(batch) == 0 {
			return
		}
		for _, p := range batch {
			real, err := r.repo.RealLikes(ctx, p.ID)
			if err != nil {
				pkg.Log.WithError(err).WithField("thread_id", p.ID).Error("reconcile count failed")
				continue
			}
			if real != p.LikeCount {
				pkg.Log.WithField("thread_id", p.ID).
					WithField("cached", p.LikeCount).
					WithField("real", real).
					Warn("like count drift, fixing")
				if err := r.repo.FixLikeCount(ctx, p.ID, real); err != nil {
					pkg.Log.WithError(err).WithField("thread_id", p.ID).Error("reconcile fix failed")
				}
			}
		}
		lastID = next
	}
}
