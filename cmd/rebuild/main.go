package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pitchstats/goalvalue/internal/services"
	"github.com/pitchstats/goalvalue/pkg/config"
	"github.com/pitchstats/goalvalue/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Optional redis mirror for the lookup table
	var cache *services.CacheService
	if cfg.CacheEnabled() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()
		cache = services.NewCacheService(redisClient)
	}

	// Initialize pipeline services
	aggregator := services.NewEventAggregator(db, logger)
	store := services.NewLookupStore(db, cache, cfg.LookupCacheTTL, logger)
	assigner := services.NewValueAssigner(db, store, logger)
	updater := services.NewAggregateUpdater(db, logger)
	scheduler := services.NewRebuildScheduler(aggregator, store, assigner, updater,
		logger, cfg.LookupVersion, cfg.RebuildSchedule)

	// "watch" keeps the process alive on the configured cron schedule;
	// the default is a one-shot full rebuild.
	if len(os.Args) > 1 && os.Args[1] == "watch" {
		if err := scheduler.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down rebuild scheduler")
		return
	}

	if err := scheduler.RunOnce(); err != nil {
		logrus.Fatalf("Rebuild failed: %v", err)
	}
}
