package mysql

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDBPrefix = "threadhive_test_"

// CreateTempDB 建一个随机名字的临时库并完成迁移，测试结束自动 DROP。
// 没配 TEST_MYSQL_DSN 时 Skip，环境里没有 mysql 也能跑其余用例。
// 超时或 Ctrl+C 退出时库可能残留，按 threadhive_test_ 前缀手动清理即可。
func CreateTempDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set, skipping db test")
	}

	admin, err := openSilent(dsn)
	if err != nil {
		t.Fatalf("connect admin db: %v", err)
	}

	name := fmt.Sprintf("%s%08x", testDBPrefix, rand.Uint32())
	if err := admin.Exec("CREATE DATABASE " + name + " CHARACTER SET utf8mb4").Error; err != nil {
		t.Fatalf("create temp db %s: %v", name, err)
	}

	db, err := openSilent(swapDBName(dsn, name))
	if err != nil {
		t.Fatalf("connect temp db %s: %v", name, err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate temp db %s: %v", name, err)
	}

	t.Cleanup(func() {
		admin.Exec("DROP DATABASE IF EXISTS " + name)
		// 主动关连接，避免用例多了把连接数打满
		if conn, err := db.DB(); err == nil {
			conn.Close()
		}
		if conn, err := admin.DB(); err == nil {
			conn.Close()
		}
	})
	return db
}

func openSilent(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

// swapDBName 把 DSN "user:pass@tcp(host:port)/db?params" 里的库名换掉
func swapDBName(dsn, name string) string {
	slash := strings.LastIndex(dsn, "/")
	rest := dsn[slash+1:]
	if q := strings.Index(rest, "?"); q >= 0 {
		return dsn[:slash+1] + name + rest[q:]
	}
	return dsn[:slash+1] + name
}
