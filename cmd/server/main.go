package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"stemtab/internal/app"
	"stemtab/internal/config"
	"stemtab/internal/constants"
	"stemtab/internal/executor"
	httpapp "stemtab/internal/http"
	"stemtab/internal/logger"
	"stemtab/internal/pitch"
	"stemtab/internal/separation"
	"stemtab/internal/status"
	"stemtab/internal/storage"
	"stemtab/internal/store"
	"stemtab/internal/sweeper"
	"stemtab/internal/tablature"
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

	// Initialize Execution Backend
	engine := separation.NewCommandEngine(cfg.SeparatorCmd, appLogger)
	runner := executor.NewRunner(db, files, engine, cfg.JobTimeout, appLogger)

	var backend executor.Backend
	switch cfg.ExecutionMode {
	case "queue":
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
		backend = executor.NewQueueBackend(client, cfg.QueueKey, appLogger)
	default:
		backend = executor.NewLocalBackend(runner, appLogger)
	}
	defer backend.Close()

	// Initialize Sweeper
	sw := sweeper.New(cfg.StemsDir, cfg.RetentionAge, cfg.SweepInterval, constants.SweepStartupDelay, appLogger)
	sw.Start()
	defer sw.Stop()

	// Initialize Services
	fileService := app.NewFileService(db, files, cfg.MaxUploadSize, appLogger)
	jobService := app.NewJobService(db, files, backend, appLogger)
	trackService := app.NewTrackService(db, appLogger)
	extractor := pitch.NewCommandExtractor(cfg.PitchCmd, appLogger)
	tabService := app.NewTablatureService(db, tablature.NewMapper(extractor, appLogger), appLogger)
	publisher := status.NewPublisher(db, constants.StatusPushInterval, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(fileService, jobService, trackService, tabService, publisher, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
