package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"snippit/internal/library"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http *http.Server
	log  logrus.FieldLogger
}

// New builds the HTTP server (router, middlewares, route registration).
func New(addr string, registry *library.Registry, logger logrus.FieldLogger) *Server {
	log := logger.WithField("component", "http")

	s := &http.Server{
		Addr:              addr,
		Handler:           Router(registry, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return &Server{http: s, log: log}
}

// Router returns the route tree without a listener.
func Router(registry *library.Registry, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(accessLog(log))

	h := &handlers{registry: registry, log: log}
	r.Get("/healthz", h.healthz)
	r.Route("/users/{userID}/bookmarks", func(r chi.Router) {
		r.Get("/", h.listBookmarks)
		r.Get("/{bookmarkID}/archive", h.archivedPage)
	})
	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
