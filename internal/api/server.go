// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apihandler "github.com/newthinker/fundrep/internal/api/handler/api"
	"github.com/newthinker/fundrep/internal/api/handler/web"
	"github.com/newthinker/fundrep/internal/api/middleware"
	"github.com/newthinker/fundrep/internal/api/response"
	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/metrics"
	"github.com/newthinker/fundrep/internal/report"
	"github.com/newthinker/fundrep/internal/storage/archive"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for fund reports
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     chi.Router
	renderer   *web.Renderer
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	TemplatesDir   string // empty = embedded templates
	APIKey         string
	MetricsEnabled bool
	MetricsPath    string
}

// Dependencies holds the services the routes need. Archive and Metrics are
// optional.
type Dependencies struct {
	Source        collector.FundSource
	ReportOptions report.Options
	Archive       *archive.Archive
	Metrics       *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("fund source required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := web.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	router := chi.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute, // reports wait on several upstream fetches
			IdleTimeout:  60 * time.Second,
		},
		logger:   logger,
		router:   router,
		renderer: renderer,
		deps:     deps,
	}

	s.setupRoutes(cfg)
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	r := s.router

	r.Use(chimw.RealIP)
	r.Use(metrics.LoggingMiddleware(s.logger))
	if s.deps.Metrics != nil {
		r.Use(metrics.HTTPMiddleware(s.deps.Metrics))
	}
	r.Use(chimw.Recoverer)

	// Web UI routes
	webHandler := web.NewHandler(s.renderer, s.deps.Source, s.deps.ReportOptions, s.logger)
	if s.deps.Metrics != nil {
		webHandler.SetRecorder(s.deps.Metrics)
	}
	r.Get("/", webHandler.Index)
	r.Get("/isin/{"+web.ISINParam+"}", webHandler.Report(report.VariantPrimary))
	r.Get("/design_b/{"+web.ISINParam+"}", webHandler.Report(report.VariantDesignB))

	// JSON API
	r.Get("/api/health", s.handleHealth)

	funds := apihandler.NewFundHandler(s.deps.Source, s.logger)
	var reports *apihandler.ReportsHandler
	if s.deps.Archive != nil {
		reports = apihandler.NewReportsHandler(s.deps.Archive, s.render, s.logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/funds/{code}", funds.Get)
		r.Get("/funds/{code}/prices", funds.Prices)
		r.Get("/ranking", funds.Ranking)

		if reports != nil {
			r.Get("/reports", reports.List)
			r.With(middleware.APIKeyAuth(cfg.APIKey)).Post("/reports/{code}", reports.Create)
		}
	})

	// Archived report pages
	if reports != nil {
		r.Get("/archive/*", reports.Page)
	}

	if cfg.MetricsEnabled && s.deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// render builds one report page with the server's templates and source
func (s *Server) render(ctx context.Context, isin string, variant report.Variant) ([]byte, error) {
	return web.RenderReport(ctx, s.renderer, s.deps.Source, isin, variant, s.deps.ReportOptions)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"source":  s.deps.Source.Name(),
		"archive": s.deps.Archive != nil,
	})
}
