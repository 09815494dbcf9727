package toushin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/newthinker/fundrep/internal/core"
)

// Selectors on the fund detail and ranking pages
const (
	selFundName       = ".fund-name"
	selFundCategory   = ".fund-category"
	selBasicPrice     = "#basic-price"
	selNetAssetAmount = "#net-asset-amount"
	selPctChangeRows  = "table.pct-change tbody tr"
	selDividendRows   = "table.dividend tbody tr"
	selRankingRows    = "table.ranking tbody tr"
)

// dividendDateLayouts are tried in order when parsing dividend dates
var dividendDateLayouts = []string{
	dateLayout,
	"2006年1月2日",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02",
}

// Profile returns the fund's name and category
func (c *Client) Profile(ctx context.Context, isin string) (*core.FundProfile, error) {
	doc, err := c.fetchDetail(ctx, isin)
	if err != nil {
		return nil, err
	}

	return &core.FundProfile{
		ISIN:     isin,
		Name:     text(doc.Find(selFundName).First()),
		Category: text(doc.Find(selFundCategory).First()),
	}, nil
}

// NavAum returns the latest basic price and net asset amount
func (c *Client) NavAum(ctx context.Context, isin string) (*core.NavAum, error) {
	doc, err := c.fetchDetail(ctx, isin)
	if err != nil {
		return nil, err
	}

	nav := &core.NavAum{
		BasicPrice:     text(doc.Find(selBasicPrice).First()),
		NetAssetAmount: text(doc.Find(selNetAssetAmount).First()),
	}
	if nav.BasicPrice == "" {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("no basic price on detail page for %s", isin))
	}
	return nav, nil
}

// PeriodReturns returns the percentage change table in page order
func (c *Client) PeriodReturns(ctx context.Context, isin string) ([]core.PeriodReturn, error) {
	doc, err := c.fetchDetail(ctx, isin)
	if err != nil {
		return nil, err
	}

	var returns []core.PeriodReturn
	doc.Find(selPctChangeRows).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return
		}
		returns = append(returns, core.PeriodReturn{
			Period:   text(cells.Eq(0)),
			Fund:     text(cells.Eq(1)),
			Category: text(cells.Eq(2)),
		})
	})
	return returns, nil
}

// Dividends returns the distribution history in page order
func (c *Client) Dividends(ctx context.Context, isin string) ([]core.Dividend, error) {
	doc, err := c.fetchDetail(ctx, isin)
	if err != nil {
		return nil, err
	}

	var (
		dividends []core.Dividend
		parseErr  error
	)
	doc.Find(selDividendRows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		period, err := parseDividendDate(text(cells.Eq(0)))
		if err != nil {
			parseErr = err
			return false
		}
		dividends = append(dividends, core.Dividend{
			Period: period,
			Amount: text(cells.Eq(1)),
		})
		return true
	})
	if parseErr != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("parsing dividends for %s: %w", isin, parseErr))
	}
	return dividends, nil
}

// Ranking returns the cross-fund net flow ranking in page order
func (c *Client) Ranking(ctx context.Context) ([]core.RankingEntry, error) {
	doc, err := c.fetchDocument(ctx, EndpointRanking, c.rankingURL())
	if err != nil {
		return nil, err
	}

	var entries []core.RankingEntry
	doc.Find(selRankingRows).Each(func(_ int, row *goquery.Selection) {
		isin := text(row.Find("td.isin"))
		if isin == "" {
			return
		}
		entries = append(entries, core.RankingEntry{
			ISIN: isin,
			Name: text(row.Find("td.name")),
			Flow: text(row.Find("td.flow")),
		})
	})
	return entries, nil
}

func parseDividendDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dividendDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
