package toushin

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/fundrep/internal/core"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// dateLayout is the date format used by the upstream CSV
const dateLayout = "2006年01月02日"

// Canonical field names
const (
	fieldDate           = "date"
	fieldBasicPrice     = "basic_price"
	fieldNetAssetAmount = "net_asset_amount"
	fieldDividend       = "dividend"
	fieldClosingPeriod  = "closing_period"
)

// csvHeaders maps upstream column headers to canonical field names
var csvHeaders = map[string]string{
	"年月日":        fieldDate,
	"基準価額(円)":    fieldBasicPrice,
	"純資産総額（百万円）": fieldNetAssetAmount,
	"分配金":        fieldDividend,
	"決算期":        fieldClosingPeriod,
}

var requiredFields = []string{fieldDate, fieldBasicPrice, fieldNetAssetAmount}

// PriceHistory fetches and parses the per-fund price CSV
func (c *Client) PriceHistory(ctx context.Context, isin string) (core.PriceSeries, error) {
	body, err := c.get(ctx, EndpointCSV, c.csvURL(isin))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	series, err := ParsePriceCSV(body)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("parsing price history for %s: %w", isin, err))
	}
	return series, nil
}

// ParsePriceCSV decodes a Shift-JIS price history CSV. Rows are returned
// sorted by date ascending.
func ParsePriceCSV(r io.Reader) (core.PriceSeries, error) {
	cr := csv.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if field, ok := csvHeaders[h]; ok {
			cols[field] = i
		}
	}
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("missing column %q", f)
		}
	}

	var series core.PriceSeries
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}

		pr, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		series = append(series, pr)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series, nil
}

func parseRecord(rec []string, cols map[string]int) (core.PriceRecord, error) {
	var pr core.PriceRecord

	date, err := time.Parse(dateLayout, field(rec, cols, fieldDate))
	if err != nil {
		return pr, fmt.Errorf("parsing date: %w", err)
	}
	pr.Date = date

	if pr.BasicPrice, err = parseNumber(field(rec, cols, fieldBasicPrice)); err != nil {
		return pr, fmt.Errorf("parsing %s: %w", fieldBasicPrice, err)
	}
	if pr.NetAssetAmount, err = parseNumber(field(rec, cols, fieldNetAssetAmount)); err != nil {
		return pr, fmt.Errorf("parsing %s: %w", fieldNetAssetAmount, err)
	}
	if s := field(rec, cols, fieldDividend); s != "" {
		if pr.Dividend, err = parseNumber(s); err != nil {
			return pr, fmt.Errorf("parsing %s: %w", fieldDividend, err)
		}
	}
	pr.ClosingPeriod = field(rec, cols, fieldClosingPeriod)

	return pr, nil
}

// field returns the trimmed value of a canonical field, or "" when the
// column is absent or the row is short
func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
