package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/avezina/flashdeck/pkg/cache"
	"github.com/avezina/flashdeck/pkg/config"
	"github.com/avezina/flashdeck/pkg/db"
	"github.com/avezina/flashdeck/pkg/logger"
	"github.com/avezina/flashdeck/pkg/scheduler"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var progress scheduler.ProgressStore
	if config.AppConfig.Redis.Addr != "" {
		store, err := cache.NewProgressStore(config.AppConfig.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		progress = store
	} else {
		progress = scheduler.NewMemoryProgressStore()
	}

	svc := scheduler.NewService(
		db.NewCardStore(db.DB),
		db.NewSetStore(db.DB),
		progress,
		scheduler.Limits{
			NewCardsPerDay: config.AppConfig.Scheduler.NewCardsPerDay,
			ReviewsPerDay:  config.AppConfig.Scheduler.ReviewsPerDay,
		},
		nil,
	)

	go svc.Sessions.StartSweeper(ctx)
	go db.StartSessionCleanup(ctx, db.SessionCleanupInterval)

	logger.Info("flashdeck scheduler running")
	<-ctx.Done()
}
