package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/agendagen/internal/config"
	"github.com/dgallion1/agendagen/internal/edit"
	"github.com/dgallion1/agendagen/internal/pipeline"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/render"
	"github.com/dgallion1/agendagen/internal/schema"
	"github.com/dgallion1/agendagen/internal/session"
)

// Server is the HTTP API server for agendagen.
type Server struct {
	router       chi.Router
	reg          *schema.Registry
	editor       *edit.Editor
	conv         *render.Converter
	sessions     *session.Store
	orchestrator *pipeline.Orchestrator
	engine       *printengine.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. engine may be nil when
// no print engine is configured; PDF export then fails per job.
func NewServer(reg *schema.Registry, sessions *session.Store, orch *pipeline.Orchestrator, engine *printengine.Client, log *slog.Logger, cfg config.Config) *Server {
	if reg == nil {
		reg = schema.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		reg:          reg,
		editor:       edit.New(reg),
		conv:         render.New(reg),
		sessions:     sessions,
		orchestrator: orch,
		engine:       engine,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/nodes", s.handleInsertNode)
			r.Delete("/nodes", s.handleRemoveNode)
			r.Patch("/attrs", s.handleUpdateAttrs)
			r.Put("/marks", s.handleSetMarks)
			r.Put("/text", s.handleSetText)
			r.Post("/commands", s.handleCommand)

			r.Get("/markup", s.handleMarkup)
			r.Get("/page", s.handlePage)
			r.Get("/outline", s.handleOutline)
			r.Post("/export", s.handleExport)
		})

		r.Post("/api/convert", s.handleConvert)

		r.Get("/api/export/{jobID}", s.handleExportStatus)
		r.Get("/api/export/{jobID}/artifact", s.handleExportArtifact)
		r.Delete("/api/export/{jobID}", s.handleExportCancel)

		r.Get("/api/registry", s.handleRegistry)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.engine != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.engine.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["print_engine"] = err.Error()
		} else {
			resp["print_engine"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
