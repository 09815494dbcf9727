// internal/api/handler/api/reports.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/newthinker/fundrep/internal/api/response"
	"github.com/newthinker/fundrep/internal/core"
	"github.com/newthinker/fundrep/internal/report"
	"github.com/newthinker/fundrep/internal/storage/archive"
	"go.uber.org/zap"
)

// RenderFunc renders the complete report page for one fund.
type RenderFunc func(ctx context.Context, isin string, variant report.Variant) ([]byte, error)

// ReportsHandler exposes the report archive.
type ReportsHandler struct {
	archive *archive.Archive
	render  RenderFunc
	logger  *zap.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(a *archive.Archive, render RenderFunc, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{archive: a, render: render, logger: logger}
}

// ReportEntry is one archived report.
type ReportEntry struct {
	Key       string    `json:"key"`
	ISIN      string    `json:"isin"`
	Variant   string    `json:"variant"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntry(e archive.Entry) ReportEntry {
	return ReportEntry{Key: e.Key, ISIN: e.ISIN, Variant: e.Variant, CreatedAt: e.CreatedAt}
}

// List returns archived reports, newest first, filtered by the optional
// isin query parameter.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.archive.List(r.Context(), r.URL.Query().Get("isin"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reports := make([]ReportEntry, 0, len(entries))
	for _, e := range entries {
		reports = append(reports, toEntry(e))
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// Create renders a report for the fund in the route and archives it. The
// variant query parameter selects the design (default primary).
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	variant := report.VariantPrimary
	if v := r.URL.Query().Get("variant"); v != "" {
		parsed, err := report.ParseVariant(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
			return
		}
		variant = parsed
	}

	isin := chi.URLParam(r, "code")
	page, err := h.render(r.Context(), isin, variant)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	key, err := h.archive.Store(r.Context(), isin, variant.String(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	e, err := archive.ParseReportKey(key)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("archived under unexpected key: %w", err))
		return
	}
	response.JSON(w, http.StatusCreated, toEntry(e))
}

// Page serves an archived report page as HTML. Unknown or malformed keys
// are 404; storage failures are 500.
func (h *ReportsHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.archive.Get(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
