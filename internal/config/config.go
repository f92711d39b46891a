package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	JWTAccessSecret  string
	JWTRefreshSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load 读取 .env（如果有）和环境变量。线上直接用环境变量，本地用 .env。
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		MySQLDSN: getenv("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/threadhive?charset=utf8mb4&parseTime=True"),

		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		KafkaBrokers: strings.Split(getenv("KAFKA_BROKERS", "127.0.0.1:9092"), ","),
		KafkaTopic:   getenv("KAFKA_TOPIC", "community-events"),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "NoReply <no-reply@example.com>"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
