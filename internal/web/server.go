// Package web serves the DDS form: a single page backed by the controller,
// plus the PDF download.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/thywilljoshua/ddsgen/internal/controller"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	// GenerateInterval is the average spacing allowed between generations.
	GenerateInterval time.Duration
	GenerateBurst    int
	// RefreshSeconds is how often the page reloads while a generation runs.
	RefreshSeconds int
}

type Server struct {
	ctrl    *controller.Controller
	tmpl    *template.Template
	limiter *rate.Limiter
	opts    Options
	logger  *slog.Logger
}

func New(ctrl *controller.Controller, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.GenerateBurst <= 0 {
		opts.GenerateBurst = 1
	}
	if opts.RefreshSeconds <= 0 {
		opts.RefreshSeconds = 2
	}
	limit := rate.Inf
	if opts.GenerateInterval > 0 {
		limit = rate.Every(opts.GenerateInterval)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		ctrl:    ctrl,
		tmpl:    tmpl,
		limiter: rate.NewLimiter(limit, opts.GenerateBurst),
		opts:    opts,
		logger:  logger,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /example", s.handleExample)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /notice/dismiss", s.handleDismiss)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s.logRequests(mux)
}

// ListenAndServe runs until ctx is done, then shuts down within grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", "addr", addr)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.ctrl.Wait()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
