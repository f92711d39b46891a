package service

import (
	"context"
	"fmt"
	"time"

	"Thread_Hive/internal/repository/mysql"
	"Thread_Hive/internal/repository/redis"

	"gorm.io/gorm"
)

type ThreadLikeService struct {
	repo      *mysql.ThreadLikeRepository
	users     *mysql.UserRepository
	likeCache *redis.LikeCacheRepository // 可为 nil
	lock      *redis.DistLock            // 可为 nil
}

func NewThreadLikeService(db *gorm.DB, likeCache *redis.LikeCacheRepository, lock *redis.DistLock) *ThreadLikeService {
	return &ThreadLikeService{
		repo:      &mysql.ThreadLikeRepository{DB: db},
		users:     &mysql.UserRepository{DB: db},
		likeCache: likeCache,
		lock:      lock,
	}
}

// Toggle 点赞开关。数据库事务内完成读改写，结果永远来自库里的最新状态；
// 缓存只在落库之后回写，失败就删Key交给读侧重建。
func (s *ThreadLikeService) Toggle(ctx context.Context, uid string, threadID uint64) (liked bool, count int64, err error) {
	user, err := s.users.FindByUid(ctx, uid)
	if err != nil {
		return false, 0, err
	}

	liked, count, err = s.repo.Toggle(ctx, user.ID, threadID)
	if err != nil {
		return false, 0, err
	}

	if s.likeCache != nil {
		if e := s.likeCache.SetAfterToggle(ctx, user.ID, threadID, liked, count); e != nil {
			_ = s.likeCache.DeleteCount(ctx, threadID, 500*time.Millisecond)
		}
	}
	return liked, count, nil
}

// IsLiked 先查缓存集合（命中才用），miss 回源 MySQL 并惰性回填
func (s *ThreadLikeService) IsLiked(ctx context.Context, uid string, threadID uint64) (bool, error) {
	user, err := s.users.FindByUid(ctx, uid)
	if err != nil {
		return false, err
	}

	if s.likeCache != nil {
		if b, ok, err := s.likeCache.IsLikedCached(ctx, user.ID, threadID); err == nil && ok {
			return b, nil
		}
	}
	b, err := s.repo.IsLiked(ctx, user.ID, threadID)
	if err == nil && s.likeCache != nil {
		s.likeCache.WarmIsLiked(ctx, user.ID, threadID, b)
	}
	return b, err
}

// GetCount 读点赞计数：缓存 -> 分布式锁单兵重建 -> 回源
func (s *ThreadLikeService) GetCount(ctx context.Context, threadID uint64) (int64, error) {
	if s.likeCache == nil || s.lock == nil {
		return s.repo.GetLikeCount(ctx, threadID)
	}

	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, threadID); err == nil && ok {
		return v, nil
	}

	token := fmt.Sprintf("%d-%d", threadID, time.Now().UnixNano())
	got, _ := s.lock.Acquire(ctx, threadID, token)
	if got {
		// 锁到期会自动释放，Release 失败不致命
		defer func() { _ = s.lock.Release(ctx, threadID, token) }()

		// 拿锁后二次检查
		if v, ok, err := s.likeCache.GetLikeCountCached(ctx, threadID); err == nil && ok {
			return v, nil
		}

		v, err := s.repo.GetLikeCount(ctx, threadID)
		if err != nil {
			return 0, err
		}
		_ = s.likeCache.SetLikeCount(ctx, threadID, v)
		return v, nil
	}

	// 没拿到锁，短暂退避后再读一次缓存，避免全体打DB
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, threadID); err == nil && ok {
		return v, nil
	}

	return s.repo.GetLikeCount(ctx, threadID)
}
