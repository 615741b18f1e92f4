package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitgrid/internal/bootstrap"
	"habitgrid/internal/config"
	"habitgrid/internal/handler"
	"habitgrid/internal/httpserver"
	"habitgrid/internal/period"
	"habitgrid/internal/service/completion"
	"habitgrid/internal/service/grid"
	"habitgrid/internal/service/habit"
	"habitgrid/internal/service/progress"
	"habitgrid/pkg/logger"
	"habitgrid/pkg/mq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting habitgrid api...",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
	)

	store, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to init store", zap.Error(err))
	}
	defer store.Close()

	// MQ 是可选的：没有 publisher 时打卡照常，只是不产生动态
	var publisher *mq.Publisher
	var eventPublisher completion.EventPublisher
	var mqStatus httpserver.ConnChecker
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPublisher = publisher
		mqStatus = publisher
		log.Info("MQ publisher connected")
	}

	aggregator := progress.NewAggregator(store.Logs(), log)
	gridService := grid.NewService(store.Habits(), store.Profiles(), aggregator, log)
	completionService := completion.NewService(store.Habits(), store.Logs(), aggregator, period.SystemClock{}, eventPublisher, log)
	habitService := habit.NewService(store.Habits(), store.Profiles(), log)

	router := httpserver.NewRouter(
		handler.NewGridHandler(gridService, log),
		handler.NewCompletionHandler(completionService, log),
		handler.NewProfileHandler(habitService, log),
		handler.NewActivityHandler(store.Activities(), log),
		cfg.JWT.Secret,
		store,
		mqStatus,
		log,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down habitgrid api gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("habitgrid api shutdown complete")
}
