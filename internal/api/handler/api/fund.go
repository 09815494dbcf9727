// internal/api/handler/api/fund.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/newthinker/fundrep/internal/api/response"
	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/core"
	"go.uber.org/zap"
)

// FundHandler serves raw fund data as JSON.
type FundHandler struct {
	source collector.FundSource
	logger *zap.Logger
}

// NewFundHandler creates a new fund handler.
func NewFundHandler(source collector.FundSource, logger *zap.Logger) *FundHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FundHandler{source: source, logger: logger}
}

// FundResponse is the fund identity plus its latest figures.
type FundResponse struct {
	ISIN           string `json:"isin"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	BasicPrice     string `json:"basic_price"`
	NetAssetAmount string `json:"net_asset_amount"`
}

// PricePoint is one day of the price history.
type PricePoint struct {
	Date           string  `json:"date"`
	BasicPrice     float64 `json:"basic_price"`
	NetAssetAmount float64 `json:"net_asset_amount"`
}

// writeError logs the full error chain and answers with its code only
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := response.StatusFor(err)
	detail := response.Describe(err)

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("code", detail.Code),
		zap.String("cause", detail.Cause),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", fields...)
	} else {
		logger.Warn("api request failed", fields...)
	}
	response.Error(w, status, err)
}

// Get returns the fund identity and latest NAV/AUM.
func (h *FundHandler) Get(w http.ResponseWriter, r *http.Request) {
	fund := collector.NewFund(h.source, chi.URLParam(r, "code"))

	profile, err := fund.Profile(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	nav, err := fund.NavAum(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, FundResponse{
		ISIN:           fund.ISIN(),
		Name:           profile.Name,
		Category:       profile.Category,
		BasicPrice:     nav.BasicPrice,
		NetAssetAmount: nav.NetAssetAmount,
	})
}

// Prices returns the price history, optionally limited by the from and to
// query parameters (YYYY-MM-DD, inclusive).
func (h *FundHandler) Prices(w http.ResponseWriter, r *http.Request) {
	from, err := parseDay(r.URL.Query().Get("from"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	to, err := parseDay(r.URL.Query().Get("to"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	fund := collector.NewFund(h.source, chi.URLParam(r, "code"))
	series, err := fund.PriceHistory(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	points := make([]PricePoint, 0, len(series))
	for _, p := range series {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		points = append(points, PricePoint{
			Date:           p.Date.Format(time.DateOnly),
			BasicPrice:     p.BasicPrice,
			NetAssetAmount: p.NetAssetAmount,
		})
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"isin":   fund.ISIN(),
		"prices": points,
		"count":  len(points),
	})
}

// Ranking returns the fund-flow ranking.
func (h *FundHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	entries, err := h.source.Ranking(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []core.RankingEntry{}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"ranking": entries,
		"count":   len(entries),
	})
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
