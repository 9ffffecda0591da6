package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamshare/dreamshare/internal/config"
	"github.com/dreamshare/dreamshare/internal/workers"
	"github.com/dreamshare/dreamshare/pkg/cache"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting DreamShare trending worker...")

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	dreamEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.DreamEvents, "trending-worker-group")

	trendingWorker := workers.NewTrendingWorker(redisClient, dreamEventsConsumer, cfg.Trending.MaxEntries, logger)

	go func() {
		if err := trendingWorker.Start(ctx); err != nil {
			logger.WithError(err).Error("Trending worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := trendingWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop trending worker")
	}

	logger.Info("Worker exited")
}
