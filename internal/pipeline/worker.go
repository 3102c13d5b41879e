package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/metrics"
)

// Worker processes export jobs one at a time.
type Worker struct {
	exporter *export.Exporter
	log      *slog.Logger
}

func NewWorker(exporter *export.Exporter, log *slog.Logger) *Worker {
	return &Worker{exporter: exporter, log: log}
}

// Process runs the export of a job through conversion and rendering.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "session_id", job.SessionID, "format", job.Format)
	ctx, cancel := job.bind(ctx)
	defer cancel()

	// Phase 1: Convert
	if !job.SetStatus(StatusConverting, "converting") {
		log.Info("job canceled before start")
		return
	}
	prepared, err := w.exporter.Prepare(job.Document(), job.opts)
	if err != nil {
		w.fail(log, job, "converting", err)
		return
	}
	job.SetContentHash(ContentHashHex([]byte(prepared.Page)))

	// Phase 2: Render
	if !job.SetStatus(StatusRendering, "rendering") {
		log.Info("job canceled after conversion")
		return
	}
	var art *export.Artifact
	for attempt := range MaxRetries {
		job.IncrAttempts()
		start := time.Now()
		art, err = w.exporter.Produce(ctx, prepared, job.Format)
		if job.Format == export.FormatPDF {
			metrics.PrintEngineDuration.Observe(time.Since(start).Seconds())
		}
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable render error", "attempt", attempt, "error", err)
		metrics.PrintEngineRetries.Inc()
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && job.Snapshot().Status == StatusCanceled {
			log.Info("job canceled during rendering")
			return
		}
		w.fail(log, job, "rendering", err)
		return
	}

	if !job.Complete(art) {
		log.Info("job canceled, artifact discarded")
		return
	}
	metrics.ExportJobs.WithLabelValues(string(job.Format), string(StatusCompleted)).Inc()
	log.Info("export complete", "bytes", art.Size(), "pages", art.Pages)
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("export failed", "phase", phase, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	if job.SetStatus(StatusFailed, phase) {
		metrics.ExportJobs.WithLabelValues(string(job.Format), string(StatusFailed)).Inc()
	}
}
