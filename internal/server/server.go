// Package server exposes a store.Store over the dashboard JSON API and
// serves a read-only HTML view of the four sections.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/store"
)

type Config struct {
	Addr    string
	Token   string // when set, /api/ requires "Authorization: Bearer <token>"
	Backend string // reported by /health
	Title   string
}

type Server struct {
	cfg   Config
	store store.Store
	log   *zap.Logger
	mux   *http.ServeMux
}

func New(st store.Store, cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Dashboard"
	}
	s := &Server{cfg: cfg, store: st, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /section/{section}", s.handleSection)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.Handle("GET /api/{section}", s.api(s.handleList))
	s.mux.Handle("POST /api/{section}", s.api(s.handleCreate))
	s.mux.Handle("GET /api/{section}/{id}", s.api(s.handleGet))
	s.mux.Handle("PATCH /api/{section}/{id}", s.api(s.handleUpdate))
	s.mux.Handle("PUT /api/{section}/{id}", s.api(s.handleUpdate))
	s.mux.Handle("DELETE /api/{section}/{id}", s.api(s.handleDelete))
	s.mux.Handle("POST /api/{section}/{id}/toggle", s.api(s.handleToggle))
}

// Handler is the full HTTP handler with request ids and access logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("serving", zap.String("addr", ln.Addr().String()), zap.String("backend", s.cfg.Backend))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("stopped")
	return nil
}
