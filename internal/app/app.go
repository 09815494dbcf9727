package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/fundrep/internal/api"
	"github.com/newthinker/fundrep/internal/api/handler/web"
	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/collector/toushin"
	"github.com/newthinker/fundrep/internal/config"
	"github.com/newthinker/fundrep/internal/metrics"
	"github.com/newthinker/fundrep/internal/report"
	"github.com/newthinker/fundrep/internal/storage/archive"
	"go.uber.org/zap"
)

// App is the main application orchestrator. It owns the configured fund
// source, templates, metrics and report archive shared by the server and
// the CLI.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	sources *collector.Registry
	metrics *metrics.Registry

	mu       sync.Mutex
	renderer *web.Renderer
	archive  *archive.Archive
}

// New creates a new App instance with the built-in sources registered
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := metrics.NewRegistry()
	sources := collector.NewRegistry()
	sources.Register(toushin.New(
		toushin.Config{
			BaseURL: cfg.Upstream.BaseURL,
			Timeout: cfg.Upstream.Timeout,
		},
		toushin.WithLogger(logger.Named("toushin")),
		toushin.WithRecorder(reg),
	))

	return &App{
		cfg:     cfg,
		logger:  logger,
		sources: sources,
		metrics: reg,
	}
}

// RegisterSource adds a fund source, replacing one with the same name
func (a *App) RegisterSource(s collector.FundSource) {
	a.sources.Register(s)
}

// Sources returns the registered source names
func (a *App) Sources() []string {
	return a.sources.Names()
}

// Source returns the configured fund source
func (a *App) Source() (collector.FundSource, error) {
	return a.sources.MustGet(a.cfg.Upstream.Source)
}

// Metrics returns the metrics registry
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// ReportOptions returns the report settings from config
func (a *App) ReportOptions() report.Options {
	return report.Options{DividendYears: a.cfg.Report.DividendYears}
}

// Renderer returns the page renderer, parsing templates on first use
func (a *App) Renderer() (*web.Renderer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.renderer == nil {
		r, err := web.NewRenderer(a.cfg.Server.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
		a.renderer = r
	}
	return a.renderer, nil
}

// Archive returns the report archive, opening the backend on first use
func (a *App) Archive() (*archive.Archive, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.archive == nil {
		c := a.cfg.Archive
		store, err := archive.New(archive.Config{
			Type: c.Type,
			Path: c.Path,
			S3: archive.S3Config{
				Bucket:    c.S3.Bucket,
				Endpoint:  c.S3.Endpoint,
				Region:    c.S3.Region,
				AccessKey: c.S3.AccessKey,
				SecretKey: c.S3.SecretKey,
				Prefix:    c.S3.Prefix,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("opening %s archive: %w", c.Type, err)
		}
		a.archive = archive.NewArchive(store, c.Type)
		a.archive.SetRecorder(a.metrics)
	}
	return a.archive, nil
}

// Render builds and renders one report page
func (a *App) Render(ctx context.Context, isin string, variant report.Variant) ([]byte, error) {
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	renderer, err := a.Renderer()
	if err != nil {
		return nil, err
	}

	page, err := web.RenderReport(ctx, renderer, src, isin, variant, a.ReportOptions())
	if err != nil {
		return nil, err
	}
	a.logger.Info("report rendered",
		zap.String("isin", isin),
		zap.String("variant", variant.String()),
		zap.Int("bytes", len(page)),
	)
	return page, nil
}

// Server creates the HTTP server. An archive that cannot be opened is
// logged and left out; report pages do not depend on it.
func (a *App) Server() (*api.Server, error) {
	src, err := a.Source()
	if err != nil {
		return nil, err
	}

	deps := api.Dependencies{
		Source:        src,
		ReportOptions: a.ReportOptions(),
		Metrics:       a.metrics,
	}
	if arc, err := a.Archive(); err != nil {
		a.logger.Warn("report archive disabled", zap.Error(err))
	} else {
		deps.Archive = arc
	}

	return api.NewServer(api.Config{
		Host:           a.cfg.Server.Host,
		Port:           a.cfg.Server.Port,
		TemplatesDir:   a.cfg.Server.TemplatesDir,
		APIKey:         a.cfg.Server.APIKey,
		MetricsEnabled: a.cfg.Metrics.Enabled,
		MetricsPath:    a.cfg.Metrics.Path,
	}, deps, a.logger)
}
