package redis

import (
	"context"
	"os"
	"testing"
)

// InitTestRedis 连到 TEST_REDIS_ADDR 指向的实例（固定用 15 号库），
// 用例前后各 FlushDB 一次。没配环境变量就 Skip。
func InitTestRedis(t *testing.T) {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	if err := Init(addr, os.Getenv("TEST_REDIS_PASSWORD"), 15); err != nil {
		t.Fatalf("connect test redis: %v", err)
	}
	if err := Client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush test redis: %v", err)
	}
	t.Cleanup(func() {
		Client.FlushDB(context.Background())
		Close()
		Client = nil
	})
}
