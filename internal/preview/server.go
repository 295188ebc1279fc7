// Package preview serves the generated site over HTTP for local review.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stationhq/stylebook/internal/logfields"
)

// Server serves the generated site directory plus health and metrics
// endpoints.
type Server struct {
	addr      string
	siteDir   string
	outputDir string
	registry  *prometheus.Registry
	srv       *http.Server
}

// New creates a preview server for the given site tree. outputDir is the
// build output root holding the report files. A non-nil registry enables the
// /metrics endpoint.
func New(addr, siteDir, outputDir string, registry *prometheus.Registry) *Server {
	return &Server{addr: addr, siteDir: siteDir, outputDir: outputDir, registry: registry}
}

// Start begins listening. It returns once the listener goroutine is running;
// fatal listen errors are logged.
func (s *Server) Start(ctx context.Context) error {
	if st, err := os.Stat(s.siteDir); err != nil || !st.IsDir() {
		return fmt.Errorf("site directory not found: %s (run a build first)", s.siteDir)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/build-report.json", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(s.outputDir, "build-report.json"))
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Handle("/*", http.FileServer(http.Dir(s.siteDir)))

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Preview server listening", slog.String("addr", s.addr), logfields.Path(s.siteDir))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", logfields.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	slog.Info("Stopping preview server")
	return s.srv.Shutdown(ctx)
}
