package mysql

import (
	"context"
	"errors"

	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThreadLikeRepository struct {
	DB *gorm.DB
}

// Toggle 点赞开关。整个读改写在一个事务里，先对帖子行加锁，
// 避免同一用户并发切换时丢更新；liked/count 都以事务内的最新状态为准。
func (r *ThreadLikeRepository) Toggle(ctx context.Context, userID, threadID uint64) (liked bool, count int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Thread
		if e := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, threadID).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				return pkg.NotFoundf("thread %d", threadID)
			}
			return e
		}

		var like model.ThreadLike
		e := tx.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&like).Error
		switch {
		case e == nil:
			// 已赞 -> 取消
			if e := tx.Delete(&model.ThreadLike{}, like.ID).Error; e != nil {
				return e
			}
			if e := tx.Model(&model.Thread{}).Where("id = ?", threadID).
				UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).Error; e != nil {
				return e
			}
			liked = false
		case errors.Is(e, gorm.ErrRecordNotFound):
			// 未赞 -> 点赞
			if e := tx.Create(&model.ThreadLike{UserID: userID, ThreadID: threadID}).Error; e != nil {
				return e
			}
			if e := tx.Model(&model.Thread{}).Where("id = ?", threadID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; e != nil {
				return e
			}
			liked = true
		default:
			return e
		}

		// 计数回读最新值，不信任内存里的旧行
		var after model.Thread
		if e := tx.Select("id", "like_count").First(&after, threadID).Error; e != nil {
			return e
		}
		count = after.LikeCount
		return nil
	})
	return liked, count, err
}

func (r *ThreadLikeRepository) IsLiked(ctx context.Context, userID, threadID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.ThreadLike{}).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Count(&count).Error
	return count > 0, err
}

func (r *ThreadLikeRepository) GetLikeCount(ctx context.Context, threadID uint64) (int64, error) {
	var t model.Thread
	err := r.DB.WithContext(ctx).Select("id", "like_count").First(&t, threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkg.NotFoundf("thread %d", threadID)
	}
	if err != nil {
		return 0, err
	}
	return t.LikeCount, nil
}

// CountReal 点赞关系表里的真实计数（对账用）
func (r *ThreadLikeRepository) CountReal(ctx context.Context, threadID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.ThreadLike{}).Where("thread_id = ?", threadID).Count(&n).Error
	return n, err
}

// LikedThreadIDs 某用户点过赞的帖子 id
func (r *ThreadLikeRepository) LikedThreadIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.ThreadLike{}).
		Where("user_id = ?", userID).
		Order("thread_id ASC").
		Pluck("thread_id", &ids).Error
	return ids, err
}

// RemoveAllByUser 删除某用户的全部点赞并同步扣减对应帖子的计数。
// 用户删除级联的一步；必须在事务内调用。
func (r *ThreadLikeRepository) RemoveAllByUser(ctx context.Context, userID uint64) error {
	if err := r.DB.WithContext(ctx).Exec(`
		UPDATE threads t
		JOIN thread_likes l ON l.thread_id = t.id
		SET t.like_count = CASE WHEN t.like_count > 0 THEN t.like_count - 1 ELSE 0 END
		WHERE l.user_id = ?`, userID).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ThreadLike{}).Error
}
