package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/metrics"
	"github.com/dgallion1/agendagen/internal/outline"
	"github.com/dgallion1/agendagen/internal/parser"
	"github.com/dgallion1/agendagen/internal/seed"
	"github.com/dgallion1/agendagen/internal/session"
)

type createSessionRequest struct {
	Template string          `json:"template,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Template != "" && len(req.Document) > 0 {
		s.writeError(w, r, badRequest("template and document are mutually exclusive"))
		return
	}

	var (
		doc *doctree.Document
		err error
	)
	switch {
	case len(req.Document) > 0:
		doc, err = parser.NewJSONParser(s.reg).Parse(bytes.NewReader(req.Document), "document")
		if err != nil {
			err = &requestError{err: err}
		}
	case req.Template != "":
		doc, err = seed.Load(s.reg, req.Template)
	default:
		doc, err = seed.Load(s.reg, s.cfg.DefaultTemplate)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Create(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("session created", "session_id", sess.ID, "template", req.Template)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) session(r *http.Request) (*session.Session, error) {
	return s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkup(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markup, err := s.conv.Convert(sess.Document())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, markup)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.page(sess.Document(), r.URL.Query().Get("title"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeHTML(w, page)
}

type outlineResponse struct {
	SessionID string            `json:"session_id"`
	Version   int               `json:"version"`
	Words     int               `json:"words"`
	Sections  []outline.Section `json:"sections"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := sess.Snapshot()
	sections := outline.Build(s.reg, snap.Document)
	if sections == nil {
		sections = []outline.Section{}
	}
	writeJSON(w, http.StatusOK, outlineResponse{
		SessionID: snap.ID,
		Version:   snap.Version,
		Words:     outline.Words(sections),
		Sections:  sections,
	})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
