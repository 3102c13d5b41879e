package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/agendagen/internal/config"
	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/metrics"
)

// ErrQueueFull is returned by Submit when every queue slot is taken.
var ErrQueueFull = errors.New("export queue is full")

// Orchestrator runs export jobs on a bounded worker pool.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	exporter *export.Exporter
	log      *slog.Logger
	cfg      config.Config

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to run workers.
func NewOrchestrator(cfg config.Config, exporter *export.Exporter, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		exporter: exporter,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.exporter, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.ExportQueueLength.Set(float64(len(o.queue)))
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired export jobs removed", "count", n)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Jobs still queued are canceled.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
	for job := range o.queue {
		job.Cancel()
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return errors.New("export pipeline stopped")
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		metrics.ExportQueueLength.Set(float64(len(o.queue)))
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Cancel cancels a job. It reports false for unknown or finished jobs.
func (o *Orchestrator) Cancel(id string) bool {
	job := o.jobs.Get(id)
	if job == nil {
		return false
	}
	if !job.Cancel() {
		return false
	}
	metrics.ExportJobs.WithLabelValues(string(job.Format), string(StatusCanceled)).Inc()
	o.log.Info("export job canceled", "job_id", id)
	return true
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// JobCount returns the number of retained jobs.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}
