package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/folio/internal/config"
	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/editor"
	"github.com/dgallion1/folio/internal/pagination"
)

// HealthChecker reports whether the backing database answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the HTTP API server for folio.
type Server struct {
	router   chi.Router
	docs     *documents.Service
	sessions *editor.Store
	db       HealthChecker
	page     pagination.Options
	log      *slog.Logger
	cfg      config.Server
}

// NewServer creates and configures the HTTP server.
func NewServer(docs *documents.Service, sessions *editor.Store, db HealthChecker, page pagination.Options, log *slog.Logger, cfg config.Server) *Server {
	s := &Server{
		docs:     docs,
		sessions: sessions,
		db:       db,
		page:     page,
		log:      log,
		cfg:      cfg,
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
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/documents", http.StatusFound)
	})
	r.Get("/documents", s.handleGallery)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/stats", s.handleStats)

		r.Get("/documents", s.handleListDocuments)
		r.Post("/documents", s.handleCreateDocument)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Get("/documents/{id}/export.pdf", s.handleExportPDF)
		r.Get("/documents/{id}/export.md", s.handleExportMarkdown)

		r.Post("/sessions", s.handleCreateSession)
		r.Post("/sessions/import", s.handleImportSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDiscardSession)
			r.Put("/title", s.handleSetTitle)
			r.Put("/content", s.handleUpdateContent)
			r.Post("/pages", s.handleAddPage)
			r.Post("/pages/{n}/select", s.handleSelectPage)
			r.Delete("/pages/{n}", s.handleDeletePage)
			r.Post("/next", s.handleNextPage)
			r.Post("/prev", s.handlePrevPage)
			r.Post("/format", s.handleFormat)
			r.Post("/submit", s.handleSubmit)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.db.Health(ctx); err != nil {
		s.log.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
