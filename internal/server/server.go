// Package server wires the HTTP surface of the conversion service: the
// two conversion endpoints, health probes, and metrics exposition.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/cors"

	"github.com/previewkit/convertd/internal/cache"
	"github.com/previewkit/convertd/internal/inliner"
	"github.com/previewkit/convertd/internal/metrics"
	"github.com/previewkit/convertd/internal/soffice"
	"github.com/previewkit/convertd/internal/workspace"
)

// Converter is the external-converter boundary the handlers depend on.
// Satisfied by *soffice.Invoker; tests substitute a fake.
type Converter interface {
	ConvertToPDF(ctx context.Context, inputPath, outDir string, spec soffice.FilterSpec) error
	ConvertToHTML(ctx context.Context, inputPath, outDir string) error
}

// Server owns the service's long-lived state: the result cache, the
// workspace managers, the converter invoker, and the HTTP listener.
type Server struct {
	config     Config
	logger     *slog.Logger
	converter  Converter
	cache      *cache.ResultCache
	workspaces *workspace.Manager
	sheets     *workspace.Manager
	inliner    *inliner.Inliner
	metrics    *metrics.Metrics

	httpServer *http.Server
}

// NewServer creates a server and all its dependencies from config.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	pdfTimeout, err := time.ParseDuration(cfg.ConvertTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse convert timeout: %w", err)
	}
	htmlTimeout, err := time.ParseDuration(cfg.HTMLTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse html timeout: %w", err)
	}

	root, err := workspace.NewManager(workspace.Config{
		Root:   cfg.ScratchDir,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("workspace init: %w", err)
	}

	// Independent sub-roots: one for per-request conversions, one for
	// per-sheet jobs, one for the converter's per-call user profiles.
	jobs, err := root.Sub("jobs")
	if err != nil {
		return nil, fmt.Errorf("workspace init: %w", err)
	}
	sheets, err := root.Sub("sheets")
	if err != nil {
		return nil, fmt.Errorf("workspace init: %w", err)
	}
	profiles, err := root.Sub("profiles")
	if err != nil {
		return nil, fmt.Errorf("workspace init: %w", err)
	}

	invoker := soffice.New(soffice.Config{
		BinaryPath:    cfg.SofficePath,
		PDFTimeout:    pdfTimeout,
		HTMLTimeout:   htmlTimeout,
		MaxConcurrent: cfg.MaxConcurrent,
		Profiles:      profiles,
		Logger:        logger,
	})

	return &Server{
		config:     cfg,
		logger:     logger,
		converter:  invoker,
		cache:      cache.New(cfg.CacheSize).WithLogger(logger),
		workspaces: jobs,
		sheets:     sheets,
		inliner:    inliner.New().WithLogger(logger),
		metrics:    metrics.New(),
	}, nil
}

// Handler returns the full HTTP handler: routes wrapped in the
// permissive CORS policy the preview front-ends rely on.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/convert-excel", s.handleConvertExcel)
	mux.HandleFunc("/health/live", s.livenessHandler)
	mux.HandleFunc("/health/ready", s.readinessHandler)
	mux.Handle("/metrics", s.metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxAge:         86400,
	})
	return c.Handler(mux)
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// Write timeout must outlast the longest converter run.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	s.logger.InfoContext(context.Background(), "conversion server starting",
		"addr", addr,
		"soffice", s.config.SofficePath,
		"scratch_root", filepath.Dir(s.workspaces.Root()),
		"cache_size", s.config.CacheSize,
		"max_concurrent", s.config.MaxConcurrent,
		"endpoints", []string{"/convert", "/convert-excel", "/health/live", "/health/ready", "/metrics"},
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
