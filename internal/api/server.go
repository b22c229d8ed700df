// Package api exposes the history index over a small JSON API. It is a
// thin consumer of the core: every handler goes through the index cache
// and the content reader, never the filesystem directly.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lhist/internal/history"
)

// Server represents the HTTP server.
type Server struct {
	*http.Server
	router chi.Router
	cache  *history.Cache
	logger history.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(addr string, cache *history.Cache, logger history.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	s := &Server{
		Server: &http.Server{
			Addr:    addr,
			Handler: r,
		},
		router: r,
		cache:  cache,
		logger: logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		r.Get("/health", s.handleHealth)
		r.Get("/projects", s.handleListProjects)
		r.Get("/projects/{project}/files", s.handleListFiles)
		r.Get("/projects/{project}/content", s.handleGetContent)
		r.Post("/refresh", s.handleRefresh)
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
