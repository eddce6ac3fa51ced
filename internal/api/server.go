// Package api exposes the playbook tools over HTTP for non-MCP
// clients. All query endpoints are read-only views on the knowledge
// base; /api/reload re-reads the source document.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdurante/playbookmcp/internal/knowledge"
	"github.com/kdurante/playbookmcp/internal/tools"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	tools  *tools.Router
	store  *knowledge.Store
	log    *slog.Logger
	apiKey string
}

// NewServer creates and configures the HTTP server.
func NewServer(t *tools.Router, store *knowledge.Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tools:  t,
		store:  store,
		log:    log,
		apiKey: apiKey,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.apiKey, s.log))

		r.Get("/api/overview", s.handleOverview)
		r.Get("/api/definition", s.handleDefinition)
		r.Get("/api/issues", s.handleIssues)
		r.Get("/api/compliance", s.handleCompliance)
		r.Get("/api/compare", s.handleCompare)
		r.Post("/api/feedback", s.handleFeedback)
		r.Post("/api/reload", s.handleReload)
	})

	s.router = r
}
