package collector

import (
	"context"

	"github.com/newthinker/fundrep/internal/core"
)

// Fund binds a FundSource to a single ISIN. A report owns one Fund for
// the lifetime of a request.
type Fund struct {
	src  FundSource
	isin string
}

// NewFund creates a per-ISIN adapter over src
func NewFund(src FundSource, isin string) *Fund {
	return &Fund{src: src, isin: isin}
}

// ISIN returns the fund identifier
func (f *Fund) ISIN() string {
	return f.isin
}

// Source returns the name of the underlying source
func (f *Fund) Source() string {
	return f.src.Name()
}

func (f *Fund) Profile(ctx context.Context) (*core.FundProfile, error) {
	return f.src.Profile(ctx, f.isin)
}

func (f *Fund) PriceHistory(ctx context.Context) (core.PriceSeries, error) {
	return f.src.PriceHistory(ctx, f.isin)
}

func (f *Fund) NavAum(ctx context.Context) (*core.NavAum, error) {
	return f.src.NavAum(ctx, f.isin)
}

func (f *Fund) PeriodReturns(ctx context.Context) ([]core.PeriodReturn, error) {
	return f.src.PeriodReturns(ctx, f.isin)
}

func (f *Fund) Dividends(ctx context.Context) ([]core.Dividend, error) {
	return f.src.Dividends(ctx, f.isin)
}

// Ranking is independent of the bound ISIN
func (f *Fund) Ranking(ctx context.Context) ([]core.RankingEntry, error) {
	return f.src.Ranking(ctx)
}
