package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/export"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	doc := doctree.New()
	job := NewJob("sess-1", doc, export.FormatPDF, export.Options{Title: "June"})
	if job.ID == "" || job.Status != StatusQueued {
		t.Fatalf("expected queued job with ID, got %q %q", job.ID, job.Status)
	}
	if job.Document() != doc {
		t.Error("expected job to keep the submitted snapshot")
	}
	if other := NewJob("sess-1", doc, export.FormatPDF, export.Options{}); other.ID == job.ID {
		t.Error("expected unique job IDs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusConverting, "converting"},
		{StatusRendering, "rendering"},
		{StatusFailed, "rendering"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		if !job.SetStatus(tr.status, tr.phase) {
			t.Fatalf("expected transition to %q to be accepted", tr.status)
		}
		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}

	if job.SetStatus(StatusRendering, "again") {
		t.Error("expected terminal status to stick")
	}
}

func TestJob_CancelDiscardsArtifact(t *testing.T) {
	job := NewJob("s", doctree.New(), export.FormatHTML, export.Options{})
	job.SetStatus(StatusRendering, "rendering")

	if !job.Cancel() {
		t.Fatal("expected cancel to succeed")
	}
	if job.Cancel() {
		t.Error("expected second cancel to report false")
	}
	if job.Complete(&export.Artifact{Body: []byte("x")}) {
		t.Error("expected Complete to be refused after cancel")
	}
	if job.Artifact() != nil {
		t.Error("expected no artifact on a canceled job")
	}
	if snap := job.Snapshot(); snap.Status != StatusCanceled || snap.Artifact != nil {
		t.Errorf("expected canceled snapshot without artifact, got %+v", snap)
	}
}

func TestJob_CompleteExposesArtifact(t *testing.T) {
	job := NewJob("s", doctree.New(), export.FormatPDF, export.Options{})
	art := &export.Artifact{Filename: "agenda.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.4"), Pages: 2}
	if !job.Complete(art) {
		t.Fatal("expected complete to succeed")
	}
	if job.Cancel() {
		t.Error("expected cancel after completion to report false")
	}
	snap := job.Snapshot()
	if snap.Artifact == nil || snap.Artifact.Pages != 2 || snap.Artifact.Size != 8 {
		t.Fatalf("unexpected artifact info: %+v", snap.Artifact)
	}
	if job.Artifact() != art {
		t.Error("expected artifact back")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("rendering: status 503")
	job.AddError("rendering: status 502")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "rendering: status 503" {
		t.Errorf("expected first error %q, got %q", "rendering: status 503", snap.Progress.Errors[0])
	}
}

func TestJob_IncrAttempts(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.IncrAttempts()
	job.IncrAttempts()
	if snap := job.Snapshot(); snap.Progress.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", snap.Progress.Attempts)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("store-1"); got != job {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusRendering, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: time.Now()}
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 removal, got %d", n)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("running") == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	if d := Backoff(0); d < time.Second || d > 1500*time.Millisecond {
		t.Errorf("attempt 0: expected 1s-1.5s, got %s", d)
	}
	if d := Backoff(2); d < 4*time.Second || d > 6*time.Second {
		t.Errorf("attempt 2: expected 4s-6s, got %s", d)
	}
	if d := Backoff(10); d < 30*time.Second || d > 45*time.Second {
		t.Errorf("attempt 10: expected capped 30s-45s, got %s", d)
	}
}
