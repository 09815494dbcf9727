// internal/api/handler/web/handler.go
package web

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/newthinker/fundrep/internal/api/response"
	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/report"
	"go.uber.org/zap"
)

// ISINParam is the route parameter holding the fund's ISIN
const ISINParam = "code"

// Recorder receives one observation per report render
type Recorder interface {
	RecordReport(variant, outcome string, duration float64)
}

// Handler provides the report pages
type Handler struct {
	renderer *Renderer
	source   collector.FundSource
	opts     report.Options
	logger   *zap.Logger
	recorder Recorder
}

// NewHandler creates a new web handler
func NewHandler(renderer *Renderer, source collector.FundSource, opts report.Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		renderer: renderer,
		source:   source,
		opts:     opts,
		logger:   logger,
	}
}

// SetRecorder sets the render metrics recorder
func (h *Handler) SetRecorder(r Recorder) {
	h.recorder = r
}

// RenderReport builds the report for one ISIN and renders it with the
// variant's template. It returns the complete page or an error, never a
// partial page.
func RenderReport(ctx context.Context, renderer *Renderer, src collector.FundSource, isin string, variant report.Variant, opts report.Options) ([]byte, error) {
	rep, err := report.New(ctx, collector.NewFund(src, isin), variant, opts)
	if err != nil {
		return nil, err
	}

	bindings, err := rep.Bindings(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, rep.TemplateFile(), bindings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Index renders the landing page. It fetches nothing.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, PageIndex, map[string]any{}); err != nil {
		h.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Report returns the handler rendering the given variant for the ISIN in
// the route
func (h *Handler) Report(variant report.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isin := chi.URLParam(r, ISINParam)

		start := time.Now()
		page, err := RenderReport(r.Context(), h.renderer, h.source, isin, variant, h.opts)
		elapsed := time.Since(start)

		outcome := "ok"
		if err != nil {
			outcome = response.Describe(err).Code
		}
		if h.recorder != nil {
			h.recorder.RecordReport(variant.String(), outcome, elapsed.Seconds())
		}

		if err != nil {
			h.Error(w, r, err)
			return
		}

		h.logger.Info("report rendered",
			zap.String("isin", isin),
			zap.String("variant", variant.String()),
			zap.Duration("duration", elapsed),
		)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}

// Error writes an error page with the status mapped from err
func (h *Handler) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := response.StatusFor(err)
	detail := response.Describe(err)

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("code", detail.Code),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request failed", fields...)
	}

	var buf bytes.Buffer
	renderErr := h.renderer.Render(&buf, PageError, map[string]any{
		"status":      status,
		"status_text": http.StatusText(status),
		"code":        detail.Code,
		"message":     detail.Message,
	})
	if renderErr != nil {
		http.Error(w, detail.Code+": "+detail.Message, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
