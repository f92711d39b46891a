package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeSetTTL       = 24 * time.Hour
	LikeCntTTL       = 24 * time.Hour
	LockTTL          = 300 * time.Millisecond
	LikeSetKeyPrefix = "like:set:thread"  // 某个帖子已点赞的用户ID集合
	LikeCntKeyPrefix = "like:cnt:thread"  // 某个帖子的点赞计数缓存
	LockKeyPrefix    = "lock:like:thread" // 分布式锁
)

type LikeCacheRepository struct {
	likeSetTTL time.Duration
	likeCntTTL time.Duration
}

type DistLock struct {
	RDB *redis.Client
}

func NewLikeCacheRepository() *LikeCacheRepository {
	return &LikeCacheRepository{
		likeSetTTL: LikeSetTTL,
		likeCntTTL: LikeCntTTL,
	}
}

func NewDistLock() *DistLock {
	return &DistLock{RDB: Client}
}

func (r *LikeCacheRepository) likeSetKey(threadID uint64) string {
	return fmt.Sprintf("%s:%d", LikeSetKeyPrefix, threadID)
}
func (r *LikeCacheRepository) likeCntKey(threadID uint64) string {
	return fmt.Sprintf("%s:%d", LikeCntKeyPrefix, threadID)
}

// SetAfterToggle 点赞开关落库后回写缓存：集合按方向增删，计数直接用库里的新值覆盖
func (r *LikeCacheRepository) SetAfterToggle(ctx context.Context, userID, threadID uint64, liked bool, count int64) error {
	k := r.likeSetKey(threadID)
	if liked {
		if err := Client.SAdd(ctx, k, userID).Err(); err != nil {
			return err
		}
	} else {
		if err := Client.SRem(ctx, k, userID).Err(); err != nil {
			return err
		}
	}
	_ = Client.Expire(ctx, k, r.likeSetTTL).Err()

	ck := r.likeCntKey(threadID)
	if err := Client.Set(ctx, ck, count, r.likeCntTTL).Err(); err != nil {
		return err
	}
	return nil
}

// IsLikedCached 从缓存查看用户是否点过赞；第二个返回值表示缓存是否命中
func (r *LikeCacheRepository) IsLikedCached(ctx context.Context, userID, threadID uint64) (bool, bool, error) {
	k := r.likeSetKey(threadID)
	exists, err := Client.Exists(ctx, k).Result()
	if err != nil {
		return false, false, err
	}
	if exists == 0 {
		return false, false, nil
	}
	b, err := Client.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

// GetLikeCountCached 从缓存读取帖子的点赞数量
func (r *LikeCacheRepository) GetLikeCountCached(ctx context.Context, threadID uint64) (int64, bool, error) {
	ck := r.likeCntKey(threadID)
	val, err := Client.Get(ctx, ck).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

// SetLikeCount 回填帖子点赞数
func (r *LikeCacheRepository) SetLikeCount(ctx context.Context, threadID uint64, cnt int64) error {
	ck := r.likeCntKey(threadID)
	return Client.Set(ctx, ck, cnt, r.likeCntTTL).Err()
}

// WarmIsLiked 惰性回填：只在集合已存在时写，避免无界扩张
func (r *LikeCacheRepository) WarmIsLiked(ctx context.Context, userID, threadID uint64, liked bool) {
	k := r.likeSetKey(threadID)
	if ok, _ := Client.Exists(ctx, k).Result(); ok > 0 {
		if liked {
			_ = Client.SAdd(ctx, k, userID).Err()
		} else {
			_ = Client.SRem(ctx, k, userID).Err()
		}
		_ = Client.Expire(ctx, k, r.likeSetTTL).Err()
	}
}

// DropThread 帖子被删除后清掉它的集合和计数缓存
func (r *LikeCacheRepository) DropThread(ctx context.Context, threadID uint64) error {
	return Client.Del(ctx, r.likeSetKey(threadID), r.likeCntKey(threadID)).Err()
}

// DeleteCount 删除计数Key，交给读侧惰性重建；delay>0 时后台再删一次，
// 抵消并发回填窗口
func (r *LikeCacheRepository) DeleteCount(ctx context.Context, threadID uint64, delay ...time.Duration) error {
	key := r.likeCntKey(threadID)
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = Client.Del(context.Background(), key).Err()
		}()
	}
	return nil
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, threadID uint64, token string) (bool, error) {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, threadID)
	return l.RDB.SetNX(ctx, key, token, LockTTL).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, threadID uint64, token string) error {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, threadID)
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}
