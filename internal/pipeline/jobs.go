package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/export"
)

// JobStatus represents the state of an export job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusRendering  JobStatus = "rendering"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCanceled   JobStatus = "canceled"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Job tracks the export of one document snapshot.
type Job struct {
	mu sync.Mutex

	ID        string        `json:"job_id"`
	SessionID string        `json:"session_id"`
	Format    export.Format `json:"format"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	doc      *doctree.Document
	opts     export.Options
	artifact *export.Artifact
	cancel   context.CancelFunc
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Attempts int      `json:"attempts"`
	Errors   []string `json:"errors"`
}

// NewJob creates a queued job exporting doc. Documents are immutable, so
// the job keeps exporting this snapshot whatever later edits happen.
func NewJob(sessionID string, doc *doctree.Document, format export.Format, opts export.Options) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Format:    format,
		Status:    StatusQueued,
		Phase:     "queued",
		Title:     opts.Title,
		CreatedAt: now,
		UpdatedAt: now,
		doc:       doc,
		opts:      opts,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs older than the TTL. Running jobs stay.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Terminal() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically. It reports false once the job
// has reached a terminal status.
func (j *Job) SetStatus(status JobStatus, phase string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return false
	}
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	return true
}

// Complete attaches the artifact and marks the job completed, unless the
// job was canceled or failed meanwhile.
func (j *Job) Complete(art *export.Artifact) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return false
	}
	j.artifact = art
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
	return true
}

// Cancel stops the job. It reports false when the job had already finished.
func (j *Job) Cancel() bool {
	j.mu.Lock()
	if j.Status.Terminal() {
		j.mu.Unlock()
		return false
	}
	j.Status = StatusCanceled
	j.Phase = "canceled"
	j.UpdatedAt = time.Now()
	cancel := j.cancel
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// bind derives the job's working context so Cancel can interrupt it.
func (j *Job) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	j.mu.Lock()
	j.cancel = cancel
	canceled := j.Status == StatusCanceled
	j.mu.Unlock()
	if canceled {
		cancel()
	}
	return ctx, cancel
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one call to the exporter.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Attempts++
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the rendered page.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// Document returns the snapshot being exported.
func (j *Job) Document() *doctree.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

// Artifact returns the finished artifact, or nil until the job completes.
func (j *Job) Artifact() *export.Artifact {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil
	}
	return j.artifact
}

// ArtifactInfo describes a finished artifact without its body.
type ArtifactInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Pages       int    `json:"pages,omitempty"`
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string        `json:"job_id"`
	SessionID   string        `json:"session_id"`
	Format      export.Format `json:"format"`
	Status      JobStatus     `json:"status"`
	Phase       string        `json:"phase"`
	Title       string        `json:"title,omitempty"`
	Progress    Progress      `json:"progress"`
	ContentHash string        `json:"content_hash,omitempty"`
	Artifact    *ArtifactInfo `json:"artifact,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	snap := JobSnapshot{
		ID:          j.ID,
		SessionID:   j.SessionID,
		Format:      j.Format,
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Progress: Progress{
			Attempts: j.Progress.Attempts,
			Errors:   errs,
		},
	}
	if j.Status == StatusCompleted && j.artifact != nil {
		snap.Artifact = &ArtifactInfo{
			Filename:    j.artifact.Filename,
			ContentType: j.artifact.ContentType,
			Size:        j.artifact.Size(),
			Pages:       j.artifact.Pages,
		}
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
