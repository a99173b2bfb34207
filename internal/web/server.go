// Package web serves CoCa's HTTP surface: the calculator and compound
// management pages plus a small JSON API for scripting.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Oskait/CoCa/internal/ports"
	"github.com/Oskait/CoCa/internal/registry"
	"github.com/Oskait/CoCa/pkg/log"
)

// Server hosts the web UI over a compound registry.
type Server struct {
	registry *registry.Registry
	logger   ports.Logger

	addr            string
	httpTimeout     time.Duration
	shutdownTimeout time.Duration
}

// Config holds configuration for the web server.
type Config struct {
	Registry *registry.Registry
	Logger   ports.Logger

	// ListenAddr is the bind address, e.g. "127.0.0.1:8117".
	ListenAddr string

	// HTTPTimeout bounds reading of request headers.
	HTTPTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// NewServer creates a web server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{
		registry:        cfg.Registry,
		logger:          logger,
		addr:            cfg.ListenAddr,
		httpTimeout:     cfg.HTTPTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Handler builds the full route tree.
func (s *Server) Handler() (http.Handler, error) {
	pages, err := newPageSet()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := chi.NewMux()
	r.Use(
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/", s.handleIndex(pages))
	r.Post("/calculate", s.handleCalculate(pages))
	r.Get("/compounds", s.handleCompounds(pages))
	r.Post("/compounds", s.handleCompoundAdd(pages))
	r.Post("/compounds/{name}/replace", s.handleCompoundReplace(pages))
	r.Post("/compounds/{name}/delete", s.handleCompoundDelete(pages))

	r.Route("/api", func(r chi.Router) {
		r.Get("/compounds", s.apiListCompounds)
		r.Post("/compounds", s.apiAddCompound)
		r.Post("/compounds/import", s.apiImportCompounds)
		r.Put("/compounds/{name}", s.apiReplaceCompound)
		r.Delete("/compounds/{name}", s.apiRemoveCompound)
		r.Post("/calculate", s.apiCalculate)
	})

	return r, nil
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    s.addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: s.httpTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", log.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Debug("shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Int("status", ww.Status()),
			log.Duration("duration", time.Since(start)),
		)
	})
}
