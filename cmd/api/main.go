package main

import (
	"context"

	"Thread_Hive/internal/config"
	"Thread_Hive/internal/model"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"
	"Thread_Hive/internal/repository/redis"
	"Thread_Hive/internal/router"
	"Thread_Hive/internal/service"
)

func main() {
	cfg := config.Load()
	pkg.SetSecrets(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		pkg.Log.WithError(err).Fatal("mysql init failed")
	}
	if err := mysql.AutoMigrate(mysql.DB); err != nil {
		pkg.Log.WithError(err).Fatal("migrate failed")
	}

	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		pkg.Log.WithError(err).Fatal("redis init failed")
	}
	defer redis.Close()

	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	if err != nil {
		pkg.Log.WithError(err).Fatal("kafka init failed")
	}
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// outbox 投递和点赞计数对账都是后台长跑任务
	relayer := service.NewOutboxRelayer(mysql.DB, func(ctx context.Context, ob *model.CommunityOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.CommunityID), []byte(ob.Payload))
	})
	go relayer.Run(ctx)

	reconciler := service.NewLikeCountReconciler(mysql.DB)
	go reconciler.Run(ctx)

	r := router.InitRouter(cfg)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		pkg.Log.WithError(err).Fatal("http server exited")
	}
}
