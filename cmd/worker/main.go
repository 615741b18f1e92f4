package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	mqcontracts "habitgrid/contracts/mq"
	"habitgrid/internal/bootstrap"
	"habitgrid/internal/config"
	"habitgrid/internal/mqhandler"
	"habitgrid/pkg/logger"
	"habitgrid/pkg/mq"
	redisclient "habitgrid/pkg/redis"
	"habitgrid/pkg/util"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting habitgrid worker...",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	store, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to init store", zap.Error(err))
	}
	defer store.Close()

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// 一个周期最长一个月，去重 key 保留 35 天
	deduper := util.NewDeduper(rdb, 35*24*time.Hour, log)

	completedHandler := mqhandler.NewHabitCompletedHandler(store.Activities(), deduper, log)

	log.Info("Initializing MQ consumer for habit.completed...",
		zap.String("queue", mqcontracts.QueueHabitCompletedFeed),
		zap.String("routing_key", mqcontracts.RoutingKeyHabitCompleted),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, mqcontracts.QueueHabitCompletedFeed, mqcontracts.RoutingKeyHabitCompleted, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(completedHandler.Handle)

	go func() {
		log.Info("Starting habit.completed consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("habit.completed consumer failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down habitgrid worker gracefully...")
	consumer.Stop()
	log.Info("habitgrid worker shutdown complete")
}
