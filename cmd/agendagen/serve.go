package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/agendagen/internal/api"
	"github.com/dgallion1/agendagen/internal/config"
	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/metrics"
	"github.com/dgallion1/agendagen/internal/pipeline"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/schema"
	"github.com/dgallion1/agendagen/internal/session"
	"github.com/dgallion1/agendagen/internal/store"
)

var (
	envFile  string
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session persistence.
	var (
		persist session.Persister
		db      *store.SQLiteStore
	)
	if cfg.DatabasePath != "" {
		var err error
		db, err = store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		persist = db
		log.Info("session persistence enabled", "path", cfg.DatabasePath)
	}
	sessions := session.NewStore(cfg.SessionTTL, persist, log)

	// Print engine and export pipeline.
	reg := schema.Default()
	engine := printengine.NewClient(cfg.PrintEngineURL, cfg.PrintEngineTimeout)
	orch := pipeline.NewOrchestrator(cfg, export.New(reg, engine), log)
	orch.Start(ctx)

	go maintain(ctx, log, cfg, sessions, db)

	srv := api.NewServer(reg, sessions, orch, engine, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		engine.Close()
	}()

	log.Info("starting agendagen", "port", cfg.Port, "print_engine", cfg.PrintEngineURL)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		orch.Stop()
		return err
	}
	<-done
	return nil
}

// maintain evicts idle sessions and prunes stale persisted documents.
func maintain(ctx context.Context, log *slog.Logger, cfg config.Config, sessions *session.Store, db *store.SQLiteStore) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Cleanup(); n > 0 {
				log.Debug("idle sessions evicted", "count", n)
			}
			metrics.ActiveSessions.Set(float64(sessions.Len()))

			if db == nil || cfg.DocumentRetention == 0 {
				continue
			}
			n, err := db.Prune(ctx, time.Now().Add(-cfg.DocumentRetention))
			if err != nil {
				log.Warn("prune documents", "error", err)
			} else if n > 0 {
				log.Info("stale documents pruned", "count", n)
			}
		}
	}
}
