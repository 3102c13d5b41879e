package api

import (
	"net/http"
	"time"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/metrics"
)

type mutationResponse struct {
	SessionID string            `json:"session_id"`
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Path      *doctree.Path     `json:"path,omitempty"`
	Document  *doctree.Document `json:"document"`
}

// mutation edits the current document of a session. It returns the path of
// the node it created, if any.
type mutation func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error)

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn mutation) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var created *doctree.Path
	snap, err := sess.Apply(r.Context(), func(doc *doctree.Document) (*doctree.Document, error) {
		next, p, err := fn(doc)
		created = p
		return next, err
	})
	if err != nil {
		metrics.Mutations.WithLabelValues(op, "rejected").Inc()
		s.writeError(w, r, err)
		return
	}
	metrics.Mutations.WithLabelValues(op, "applied").Inc()

	writeJSON(w, http.StatusOK, mutationResponse{
		SessionID: snap.ID,
		Version:   snap.Version,
		UpdatedAt: snap.UpdatedAt,
		Path:      created,
		Document:  snap.Document,
	})
}

// parentOr returns p, or the root of doc when p is absent.
func parentOr(p *doctree.Path, doc *doctree.Document) doctree.Path {
	if p == nil {
		return doctree.RootPath(doc)
	}
	return *p
}

func indexOr(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}

func requirePath(p *doctree.Path) (doctree.Path, error) {
	if p == nil {
		return doctree.Path{}, badRequest("path is required")
	}
	return *p, nil
}

type insertNodeRequest struct {
	Kind    doctree.Kind    `json:"kind"`
	Parent  *doctree.Path   `json:"parent,omitempty"`
	Index   *int            `json:"index,omitempty"`
	Attrs   doctree.Attrs   `json:"attrs,omitempty"`
	Content []*doctree.Node `json:"content,omitempty"`
	// Text and Marks apply to text runs only.
	Text  string         `json:"text,omitempty"`
	Marks []doctree.Mark `json:"marks,omitempty"`
}

func (s *Server) handleInsertNode(w http.ResponseWriter, r *http.Request) {
	var req insertNodeRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Kind == "" {
		s.writeError(w, r, badRequest("kind is required"))
		return
	}
	s.mutate(w, r, "insert", func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		parent := parentOr(req.Parent, doc)
		var (
			next *doctree.Document
			p    doctree.Path
			err  error
		)
		if req.Kind == doctree.TextKind {
			next, p, err = s.editor.InsertText(doc, parent, indexOr(req.Index), req.Text, req.Marks)
		} else {
			next, p, err = s.editor.InsertNode(doc, req.Kind, parent, indexOr(req.Index), req.Attrs, req.Content)
		}
		if err != nil {
			return nil, nil, err
		}
		return next, &p, nil
	})
}

type pathRequest struct {
	Path *doctree.Path `json:"path"`
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := requirePath(req.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, "remove", func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		next, err := s.editor.RemoveNode(doc, path)
		return next, nil, err
	})
}

type updateAttrsRequest struct {
	Path  *doctree.Path `json:"path"`
	Attrs doctree.Attrs `json:"attrs"`
}

func (s *Server) handleUpdateAttrs(w http.ResponseWriter, r *http.Request) {
	var req updateAttrsRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := requirePath(req.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, "attrs", func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		next, err := s.editor.UpdateAttributes(doc, path, req.Attrs)
		return next, nil, err
	})
}

type setMarksRequest struct {
	Path  *doctree.Path  `json:"path"`
	Marks []doctree.Mark `json:"marks"`
}

func (s *Server) handleSetMarks(w http.ResponseWriter, r *http.Request) {
	var req setMarksRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := requirePath(req.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, "marks", func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		next, err := s.editor.SetMarks(doc, path, req.Marks)
		return next, nil, err
	})
}

type setTextRequest struct {
	Path *doctree.Path `json:"path"`
	Text string        `json:"text"`
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req setTextRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	path, err := requirePath(req.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, "text", func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		next, err := s.editor.SetText(doc, path, req.Text)
		return next, nil, err
	})
}

type commandRequest struct {
	Command string        `json:"command"`
	Parent  *doctree.Path `json:"parent,omitempty"`
	Index   *int          `json:"index,omitempty"`
	Text    string        `json:"text,omitempty"`
	Title   string        `json:"title,omitempty"`
	Lines   []string      `json:"lines,omitempty"`
	Src     string        `json:"src,omitempty"`
	Size    string        `json:"size,omitempty"`
	Level   string        `json:"level,omitempty"`
}

// handleCommand runs one of the editor's block insertion commands.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	type insertFunc func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error)
	var run insertFunc
	switch req.Command {
	case "coverHeader":
		run = s.editor.InsertCoverHeader
	case "councilList":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertCouncilList(doc, parent, index, req.Lines...)
		}
	case "locationBlock":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertLocationBlock(doc, parent, index, req.Lines...)
		}
	case "noticeBox":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertNoticeBox(doc, parent, index, req.Title, req.Text)
		}
	case "sectionBreak":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertSectionBreak(doc, parent, index, req.Text)
		}
	case "logo":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertLogo(doc, parent, index, req.Src, req.Size)
		}
	case "title":
		run = func(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
			return s.editor.InsertTitle(doc, parent, index, req.Text, req.Level)
		}
	default:
		s.writeError(w, r, badRequest("unknown command %q", req.Command))
		return
	}
	s.mutate(w, r, req.Command, func(doc *doctree.Document) (*doctree.Document, *doctree.Path, error) {
		next, p, err := run(doc, parentOr(req.Parent, doc), indexOr(req.Index))
		if err != nil {
			return nil, nil, err
		}
		return next, &p, nil
	})
}
