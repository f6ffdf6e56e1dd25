package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stemtab/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DBPath        string
	UploadDir     string
	StemsDir      string
	MaxUploadSize int64
	ExecutionMode string // local, queue
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueueKey      string
	SeparatorCmd  string
	PitchCmd      string
	JobTimeout    time.Duration
	WorkerMaxJobs int
	SweepInterval time.Duration
	RetentionAge  time.Duration
	LogLevel      string
	LogFormat     string
}

// Load loads configuration from the environment with defaults. A .env
// file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", constants.DefaultPort),
		DBPath:        getEnv("DB_PATH", constants.DefaultDBPath),
		UploadDir:     getEnv("UPLOAD_DIR", constants.DefaultUploadDir),
		StemsDir:      getEnv("STEMS_DIR", constants.DefaultStemsDir),
		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", constants.MaxUploadBytes),
		ExecutionMode: getEnv("EXECUTION_MODE", constants.DefaultExecutionMode),
		RedisAddr:     getEnv("REDIS_ADDR", constants.DefaultRedisAddr),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		QueueKey:      getEnv("QUEUE_KEY", constants.DefaultQueueKey),
		SeparatorCmd:  getEnv("SEPARATOR_CMD", constants.DefaultSeparatorCmd),
		PitchCmd:      getEnv("PITCH_CMD", constants.DefaultPitchCmd),
		JobTimeout:    getEnvDuration("JOB_TIMEOUT", constants.DefaultJobTimeout),
		WorkerMaxJobs: getEnvInt("WORKER_MAX_JOBS", constants.DefaultWorkerMaxJobs),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", constants.DefaultSweepInterval),
		RetentionAge:  getEnvDuration("RETENTION_AGE", constants.DefaultRetentionAge),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}
	if c.UploadDir == "" {
		errors = append(errors, "UPLOAD_DIR cannot be empty")
	}
	if c.StemsDir == "" {
		errors = append(errors, "STEMS_DIR cannot be empty")
	}
	if c.MaxUploadSize <= 0 {
		errors = append(errors, fmt.Sprintf("MAX_UPLOAD_SIZE must be positive, got: %d", c.MaxUploadSize))
	}

	validModes := map[string]bool{
		"local": true,
		"queue": true,
	}
	if !validModes[c.ExecutionMode] {
		errors = append(errors, fmt.Sprintf("EXECUTION_MODE must be one of: local, queue, got: %s", c.ExecutionMode))
	}
	if c.ExecutionMode == "queue" && c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR cannot be empty in queue mode")
	}

	if c.JobTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("JOB_TIMEOUT must be positive, got: %s", c.JobTimeout))
	}
	if c.WorkerMaxJobs < 1 {
		errors = append(errors, fmt.Sprintf("WORKER_MAX_JOBS must be at least 1, got: %d", c.WorkerMaxJobs))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
