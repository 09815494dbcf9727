// internal/api/handler/api/fund_test.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/newthinker/fundrep/internal/api/response"
	"github.com/newthinker/fundrep/internal/collector/mock"
	"github.com/newthinker/fundrep/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testISIN = "JP90C0003PR7"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSource() *mock.Source {
	src := mock.New()
	src.SetFund(testISIN, mock.Fund{
		Profile: core.FundProfile{Name: "テストファンド", Category: "国内株式"},
		Prices: core.PriceSeries{
			{Date: day(2020, 1, 1), BasicPrice: 10000, NetAssetAmount: 50000},
			{Date: day(2020, 6, 1), BasicPrice: 11000, NetAssetAmount: 55000},
			{Date: day(2021, 1, 1), BasicPrice: 12000, NetAssetAmount: 60000},
		},
		NavAum: core.NavAum{BasicPrice: "12,000", NetAssetAmount: "600億円"},
	})
	src.SetRanking([]core.RankingEntry{
		{ISIN: "JP1", Name: "Fund A", Flow: "1,000"},
	})
	return src
}

func fundRouter(src *mock.Source) http.Handler {
	h := NewFundHandler(src, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/v1/funds/{code}", h.Get)
	r.Get("/api/v1/funds/{code}/prices", h.Prices)
	r.Get("/api/v1/ranking", h.Ranking)
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFundHandler_Get(t *testing.T) {
	w := serve(fundRouter(newSource()), "GET", "/api/v1/funds/"+testISIN)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data FundResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ISIN != testISIN || resp.Data.Name != "テストファンド" {
		t.Errorf("unexpected fund %+v", resp.Data)
	}
	if resp.Data.BasicPrice != "12,000" {
		t.Errorf("expected basic price 12,000, got %s", resp.Data.BasicPrice)
	}
}

func TestFundHandler_Get_NotFound(t *testing.T) {
	w := serve(fundRouter(newSource()), "GET", "/api/v1/funds/XX0000000000")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "FUND_NOT_FOUND" {
		t.Errorf("expected FUND_NOT_FOUND, got %s", resp.Error.Code)
	}
}

func TestFundHandler_Get_UpstreamDown(t *testing.T) {
	src := newSource()
	src.SetError(core.WrapError(core.ErrDataUnavailable, errors.New("timeout")))

	w := serve(fundRouter(src), "GET", "/api/v1/funds/"+testISIN)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestFundHandler_Prices(t *testing.T) {
	w := serve(fundRouter(newSource()), "GET", "/api/v1/funds/"+testISIN+"/prices?from=2020-02-01")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Prices []PricePoint `json:"prices"`
			Count  int          `json:"count"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Count != 2 {
		t.Fatalf("expected 2 prices, got %d", resp.Data.Count)
	}
	if resp.Data.Prices[0].Date != "2020-06-01" || resp.Data.Prices[0].BasicPrice != 11000 {
		t.Errorf("unexpected first price %+v", resp.Data.Prices[0])
	}
}

func TestFundHandler_Prices_BadDate(t *testing.T) {
	w := serve(fundRouter(newSource()), "GET", "/api/v1/funds/"+testISIN+"/prices?to=yesterday")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFundHandler_Ranking(t *testing.T) {
	w := serve(fundRouter(newSource()), "GET", "/api/v1/ranking")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Ranking []core.RankingEntry `json:"ranking"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Ranking) != 1 || resp.Data.Ranking[0].ISIN != "JP1" {
		t.Errorf("unexpected ranking %+v", resp.Data.Ranking)
	}
}

func TestFundHandler_ErrorCauseLoggedNotSent(t *testing.T) {
	src := newSource()
	src.SetError(core.WrapError(core.ErrDataUnavailable,
		errors.New("fetching https://upstream.internal/FdsWeb/FDST030000: connection refused")))
	obs, logs := observer.New(zapcore.WarnLevel)

	h := NewFundHandler(src, zap.New(obs))
	r := chi.NewRouter()
	r.Get("/api/v1/funds/{code}", h.Get)

	w := serve(r, "GET", "/api/v1/funds/"+testISIN)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "upstream.internal") {
		t.Errorf("upstream URL leaked to client: %s", w.Body.String())
	}

	entries := logs.FilterMessage("api request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if !strings.Contains(fields["cause"].(string), "upstream.internal") {
		t.Errorf("expected cause in log, got %v", fields)
	}
	if fields["code"] != "DATA_UNAVAILABLE" || entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("unexpected log entry %v at %s", fields, entries[0].Level)
	}
}
