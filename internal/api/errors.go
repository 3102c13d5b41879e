package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/pipeline"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/schema"
	"github.com/dgallion1/agendagen/internal/seed"
	"github.com/dgallion1/agendagen/internal/session"
)

// requestError marks a malformed request.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, doctree.ErrNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrUnknownNodeKind),
		errors.Is(err, schema.ErrContentModel),
		errors.Is(err, schema.ErrUnknownAttribute),
		errors.Is(err, schema.ErrInvalidAttribute),
		errors.Is(err, schema.ErrUnknownMarkType):
		return http.StatusUnprocessableEntity
	case errors.As(err, &reqErr), errors.Is(err, seed.ErrUnknown), errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable
	case printengine.IsRetryable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	} else {
		s.log.Debug("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body into v. An empty body leaves v
// untouched when allowEmpty is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	body := s.limitBody(w, r)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return err
		case errors.Is(err, io.EOF) && allowEmpty:
			return nil
		case errors.Is(err, io.EOF):
			return badRequest("request body is required")
		}
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	if s.cfg.MaxDocumentBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxDocumentBytes)
	}
	return r.Body
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, `"`, "")
	if name == "" || name == "." {
		name = "agenda"
	}
	return name
}
