package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/pipeline"
)

type exportRequest struct {
	Format   string `json:"format"`
	Title    string `json:"title,omitempty"`
	Basename string `json:"basename,omitempty"`
}

// handleExport queues an export of the session's current document. Later
// edits do not affect the queued job.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := export.Options{Title: req.Title}
	if req.Basename != "" {
		opts.Basename = sanitizeFilename(req.Basename)
	}
	job := pipeline.NewJob(sess.ID, sess.Document(), format, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("export queued", "job_id", job.ID, "session_id", sess.ID, "format", format)
	writeJSON(w, http.StatusAccepted, job.Snapshot())
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleExportArtifact(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	art := job.Artifact()
	if art == nil {
		jsonError(w, fmt.Sprintf("job is %s, no artifact available", job.Snapshot().Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(art.Size()))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(art.Filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}

func (s *Server) handleExportCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(id)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if !s.orchestrator.Cancel(id) {
		jsonError(w, fmt.Sprintf("job already %s", job.Snapshot().Status), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
