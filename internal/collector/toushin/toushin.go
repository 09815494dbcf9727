// Package toushin implements a fund data source over the Investment Trusts
// Association library site.
package toushin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/newthinker/fundrep/internal/core"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://toushin-lib.fwg.ne.jp"
	DefaultTimeout = 30 * time.Second

	detailPath  = "/FdsWeb/FDST030000"
	csvPath     = "/FdsWeb/FDST030000/csv-file-download"
	rankingPath = "/FdsWeb/FDST999900/ranking"
)

// Endpoint names used in logs and metrics
const (
	EndpointDetail  = "detail"
	EndpointCSV     = "csv"
	EndpointRanking = "ranking"
)

// Recorder receives one observation per upstream request
type Recorder interface {
	RecordUpstream(endpoint, status string, duration float64)
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements collector.FundSource
type Client struct {
	client   *http.Client
	baseURL  string
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger used for upstream request logs
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New creates a new client
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return "toushin"
}

func (c *Client) detailURL(isin string) string {
	return c.baseURL + detailPath + "?" + url.Values{"isinCd": {isin}}.Encode()
}

func (c *Client) csvURL(isin string) string {
	return c.baseURL + csvPath + "?" + url.Values{"isinCd": {isin}}.Encode()
}

func (c *Client) rankingURL() string {
	return c.baseURL + rankingPath
}

// get issues a GET request and returns the body of a 2xx response.
// The caller closes the body.
func (c *Client) get(ctx context.Context, endpoint, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("building request: %w", err))
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(endpoint, "error", elapsed)
		c.logger.Warn("upstream request failed",
			zap.String("endpoint", endpoint),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("fetching %s: %w", endpoint, err))
	}

	c.observe(endpoint, statusClass(resp.StatusCode), elapsed)
	c.logger.Debug("upstream request",
		zap.String("endpoint", endpoint),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cause := fmt.Errorf("fetching %s: unexpected status %d", endpoint, resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound && endpoint != EndpointRanking {
			return nil, core.WrapError(core.ErrDataUnavailable, core.WrapError(core.ErrFundNotFound, cause))
		}
		return nil, core.WrapError(core.ErrDataUnavailable, cause)
	}

	return resp.Body, nil
}

func (c *Client) observe(endpoint, status string, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordUpstream(endpoint, status, d.Seconds())
	}
}

func (c *Client) fetchDocument(ctx context.Context, endpoint, rawURL string) (*goquery.Document, error) {
	body, err := c.get(ctx, endpoint, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("parsing %s HTML: %w", endpoint, err))
	}
	return doc, nil
}

// fetchDetail fetches the fund detail page. A page without a fund name is
// treated as an unknown ISIN.
func (c *Client) fetchDetail(ctx context.Context, isin string) (*goquery.Document, error) {
	doc, err := c.fetchDocument(ctx, EndpointDetail, c.detailURL(isin))
	if err != nil {
		return nil, err
	}
	if text(doc.Find(".fund-name").First()) == "" {
		return nil, core.WrapError(core.ErrDataUnavailable,
			core.WrapError(core.ErrFundNotFound, fmt.Errorf("no fund named on detail page for %s", isin)))
	}
	return doc, nil
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
