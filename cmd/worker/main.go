package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"stemtab/internal/config"
	"stemtab/internal/executor"
	"stemtab/internal/logger"
	"stemtab/internal/separation"
	"stemtab/internal/storage"
	"stemtab/internal/store"
	"stemtab/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Storage
	files, err := storage.NewManager(cfg.UploadDir, cfg.StemsDir)
	if err != nil {
		appLogger.Error("Failed to init storage", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Ping(pingCtx).Err(); err != nil {
		cancel()
		appLogger.Error("Failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	cancel()
	defer client.Close()

	// Initialize Worker
	engine := separation.NewCommandEngine(cfg.SeparatorCmd, appLogger)
	runner := executor.NewRunner(db, files, engine, cfg.JobTimeout, appLogger)

	w := worker.New(runner, client, cfg.QueueKey, cfg.WorkerMaxJobs, appLogger)
	w.Start()

	// Run until signaled or the job allowance is drained.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Shutting down worker...")
		w.Stop()
	case <-w.Done():
		log.Println("Worker drained its job allowance, exiting for recycle")
	}

	log.Println("Worker exiting")
}
