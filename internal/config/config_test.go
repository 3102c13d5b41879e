package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "AGENDAGEN_API_KEY", "PRINT_ENGINE_URL", "WORKER_COUNT", "JOB_TTL", "SESSION_TTL", "DOCUMENT_RETENTION", "DEFAULT_TEMPLATE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.PrintEngineURL != "http://localhost:8000" {
		t.Errorf("expected default print engine URL, got %q", cfg.PrintEngineURL)
	}
	if cfg.WorkerCount != 2 || cfg.MaxQueueSize != 50 {
		t.Errorf("expected workers=2 queue=50, got %d %d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.DocumentRetention != 30*24*time.Hour {
		t.Errorf("expected 30 day retention, got %s", cfg.DocumentRetention)
	}
	if cfg.DefaultTemplate != "cover" {
		t.Errorf("expected cover template, got %q", cfg.DefaultTemplate)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error without an API key")
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_QUEUE_SIZE", "zero")
	t.Setenv("JOB_TTL", "-1m")
	t.Setenv("PRINT_ENGINE_TIMEOUT", "soon")
	t.Setenv("DOCUMENT_RETENTION", "-5h")

	cfg := Load()
	if cfg.WorkerCount != 2 {
		t.Errorf("expected clamped worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 50 {
		t.Errorf("expected fallback queue size 50, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected clamped job TTL, got %s", cfg.JobTTL)
	}
	if cfg.PrintEngineTimeout != 60*time.Second {
		t.Errorf("expected fallback timeout, got %s", cfg.PrintEngineTimeout)
	}
	if cfg.DocumentRetention != 30*24*time.Hour {
		t.Errorf("expected clamped retention, got %s", cfg.DocumentRetention)
	}
}

func TestEmptyDatabasePathDisablesPersistence(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	if cfg := Load(); cfg.DatabasePath != "" {
		t.Errorf("expected persistence disabled, got %q", cfg.DatabasePath)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("AGENDAGEN_API_KEY", "")
	os.Unsetenv("AGENDAGEN_API_KEY")
	t.Setenv("PORT", "9100")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("AGENDAGEN_API_KEY=from-file\nPORT=1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("AGENDAGEN_API_KEY") })

	cfg := Load()
	if cfg.APIKey != "from-file" {
		t.Errorf("expected key from file, got %q", cfg.APIKey)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected existing PORT to win, got %q", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}
