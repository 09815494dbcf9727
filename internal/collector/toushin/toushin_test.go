package toushin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const testISIN = "JP90C0003PR7"

const detailHTML = `<html><body>
<h1 class="fund-name"> テストファンド </h1>
<span class="fund-category">国内株式</span>
<span id="basic-price">12,345</span>
<span id="net-asset-amount">1,234百万円</span>
<table class="pct-change"><tbody>
<tr><td>1ヵ月</td><td>1.23%</td><td>0.98%</td></tr>
<tr><td>1年</td><td>12.34%</td><td>10.01%</td></tr>
<tr><td>malformed</td></tr>
</tbody></table>
<table class="dividend"><tbody>
<tr><td>2021年01月15日</td><td>10.00円</td></tr>
<tr><td>2020/07/15</td><td>20.00円</td></tr>
</tbody></table>
</body></html>`

const rankingHTML = `<html><body><table class="ranking"><tbody>
<tr><td class="rank">1</td><td class="isin">JP1</td><td class="name">Fund A</td><td class="flow">1,000</td></tr>
<tr><td class="rank">2</td><td class="isin">JP2</td><td class="name">Fund B</td><td class="flow">900</td></tr>
<tr><td class="rank">-</td><td class="isin"></td><td class="name">footer</td><td class="flow"></td></tr>
<tr><td class="rank">3</td><td class="isin">JP3</td><td class="name">Fund C</td><td class="flow">-50</td></tr>
</tbody></table></body></html>`

const priceCSV = "年月日,基準価額(円),純資産総額（百万円）,分配金,決算期\n" +
	"2021年01月01日,12000,60000,,\n" +
	"2020年01月01日,\"10,000\",50000,10,第1期\n" +
	"\n"

func shiftJIS(t *testing.T, s string) string {
	t.Helper()
	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	require.NoError(t, err)
	return out
}

type recorder struct {
	mu  sync.Mutex
	obs []string
}

func (r *recorder) RecordUpstream(endpoint, status string, duration float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, endpoint+":"+status)
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	csvBody := shiftJIS(t, priceCSV)

	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("isinCd") != testISIN {
			w.Write([]byte(`<html><body><p>該当するファンドはありません</p></body></html>`))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(detailHTML))
	})
	mux.HandleFunc(csvPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("isinCd") != testISIN {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=Shift_JIS")
		w.Write([]byte(csvBody))
	})
	mux.HandleFunc(rankingPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rankingHTML))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ImplementsFundSource(t *testing.T) {
	var _ collector.FundSource = (*Client)(nil)
}

func TestClient_Name(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, "toushin", c.Name())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
}

func TestClient_URLs(t *testing.T) {
	c := New(Config{BaseURL: "http://example.test/"})

	assert.Equal(t, "http://example.test/FdsWeb/FDST030000?isinCd=JP90C0003PR7", c.detailURL(testISIN))
	assert.Equal(t, "http://example.test/FdsWeb/FDST030000/csv-file-download?isinCd=JP90C0003PR7", c.csvURL(testISIN))
	assert.Equal(t, "http://example.test/FdsWeb/FDST999900/ranking", c.rankingURL())
}

func TestClient_PriceHistory(t *testing.T) {
	srv := newUpstream(t)
	rec := &recorder{}
	c := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, WithRecorder(rec))

	series, err := c.PriceHistory(context.Background(), testISIN)
	require.NoError(t, err)
	require.Len(t, series, 2)

	// sorted by date ascending
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, 10000.0, series[0].BasicPrice)
	assert.Equal(t, 50000.0, series[0].NetAssetAmount)
	assert.Equal(t, 10.0, series[0].Dividend)
	assert.Equal(t, "第1期", series[0].ClosingPeriod)

	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), series[1].Date)
	assert.Equal(t, 12000.0, series[1].BasicPrice)
	assert.Equal(t, 0.0, series[1].Dividend)

	assert.Equal(t, []string{"csv:2xx"}, rec.obs)
}

func TestClient_PriceHistory_UnknownISIN(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	_, err := c.PriceHistory(context.Background(), "XX0000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
	assert.True(t, errors.Is(err, core.ErrFundNotFound))
}

func TestClient_PriceHistory_Unreachable(t *testing.T) {
	srv := newUpstream(t)
	url := srv.URL
	srv.Close()

	rec := &recorder{}
	c := New(Config{BaseURL: url}, WithRecorder(rec))

	_, err := c.PriceHistory(context.Background(), testISIN)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
	assert.False(t, errors.Is(err, core.ErrFundNotFound))
	assert.Equal(t, []string{"csv:error"}, rec.obs)
}

func TestClient_PriceHistory_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.PriceHistory(context.Background(), testISIN)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
	assert.False(t, errors.Is(err, core.ErrFundNotFound))
}

func TestClient_Profile(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	p, err := c.Profile(context.Background(), testISIN)
	require.NoError(t, err)
	assert.Equal(t, testISIN, p.ISIN)
	assert.Equal(t, "テストファンド", p.Name)
	assert.Equal(t, "国内株式", p.Category)
}

func TestClient_Profile_UnknownISIN(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	_, err := c.Profile(context.Background(), "XX0000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
	assert.True(t, errors.Is(err, core.ErrFundNotFound))
}

func TestClient_NavAum(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	nav, err := c.NavAum(context.Background(), testISIN)
	require.NoError(t, err)
	assert.Equal(t, "12,345", nav.BasicPrice)
	assert.Equal(t, "1,234百万円", nav.NetAssetAmount)
}

func TestClient_PeriodReturns(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	returns, err := c.PeriodReturns(context.Background(), testISIN)
	require.NoError(t, err)
	assert.Equal(t, []core.PeriodReturn{
		{Period: "1ヵ月", Fund: "1.23%", Category: "0.98%"},
		{Period: "1年", Fund: "12.34%", Category: "10.01%"},
	}, returns)
}

func TestClient_Dividends(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	divs, err := c.Dividends(context.Background(), testISIN)
	require.NoError(t, err)
	require.Len(t, divs, 2)
	assert.Equal(t, time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC), divs[0].Period)
	assert.Equal(t, "10.00円", divs[0].Amount)
	assert.Equal(t, time.Date(2020, 7, 15, 0, 0, 0, 0, time.UTC), divs[1].Period)
}

func TestClient_Ranking(t *testing.T) {
	srv := newUpstream(t)
	c := New(Config{BaseURL: srv.URL})

	entries, err := c.Ranking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.RankingEntry{
		{ISIN: "JP1", Name: "Fund A", Flow: "1,000"},
		{ISIN: "JP2", Name: "Fund B", Flow: "900"},
		{ISIN: "JP3", Name: "Fund C", Flow: "-50"},
	}, entries)
}

func TestParsePriceCSV_MissingColumn(t *testing.T) {
	body := shiftJIS(t, "年月日,分配金\n2020年01月01日,0\n")

	_, err := ParsePriceCSV(strings.NewReader(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "basic_price")
}

func TestParsePriceCSV_BadDate(t *testing.T) {
	body := shiftJIS(t, "年月日,基準価額(円),純資産総額（百万円）\n2020-01-01,10000,5000\n")

	_, err := ParsePriceCSV(strings.NewReader(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParsePriceCSV_Empty(t *testing.T) {
	_, err := ParsePriceCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestParseDividendDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2020年03月15日", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2020年3月5日", time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2020/03/15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2020-03-15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		got, err := parseDividendDate(tc.input)
		if err != nil {
			t.Errorf("parseDividendDate(%q): %v", tc.input, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("parseDividendDate(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := parseDividendDate("March 2020"); err == nil {
		t.Error("expected error for unrecognized date")
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(302))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}
