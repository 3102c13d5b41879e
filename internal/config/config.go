package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Print engine
	PrintEngineURL     string
	PrintEngineTimeout time.Duration

	// Session persistence; empty disables it. Persisted documents untouched
	// for DocumentRetention are pruned; zero keeps them forever.
	DatabasePath      string
	DocumentRetention time.Duration

	// Export worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxDocumentBytes int64

	// State retention
	JobTTL     time.Duration
	SessionTTL time.Duration

	// Seed used for new sessions.
	DefaultTemplate string
}

// LoadEnvFile seeds the environment from a dotenv file. Variables already
// set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("AGENDAGEN_API_KEY"),

		PrintEngineURL:     envOr("PRINT_ENGINE_URL", "http://localhost:8000"),
		PrintEngineTimeout: envDuration("PRINT_ENGINE_TIMEOUT", 60*time.Second),

		DatabasePath:      envOr("DATABASE_PATH", "agendagen.db"),
		DocumentRetention: envDuration("DOCUMENT_RETENTION", 30*24*time.Hour),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 5<<20),

		JobTTL:     envDuration("JOB_TTL", time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),

		DefaultTemplate: envOr("DEFAULT_TEMPLATE", "cover"),
	}
	if v, ok := os.LookupEnv("DATABASE_PATH"); ok && v == "" {
		cfg.DatabasePath = ""
	}

	if cfg.PrintEngineTimeout <= 0 {
		cfg.PrintEngineTimeout = 60 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 5 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.DocumentRetention < 0 {
		cfg.DocumentRetention = 30 * 24 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("AGENDAGEN_API_KEY is required")
	}
	if c.PrintEngineURL == "" {
		return fmt.Errorf("PRINT_ENGINE_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
