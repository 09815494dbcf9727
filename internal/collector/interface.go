package collector

import (
	"context"

	"github.com/newthinker/fundrep/internal/core"
)

// FundSource defines the interface for fund data sources.
// Implementations must not cache: every call re-fetches from upstream.
type FundSource interface {
	// Metadata
	Name() string

	// Per-fund data
	Profile(ctx context.Context, isin string) (*core.FundProfile, error)
	PriceHistory(ctx context.Context, isin string) (core.PriceSeries, error)
	NavAum(ctx context.Context, isin string) (*core.NavAum, error)
	PeriodReturns(ctx context.Context, isin string) ([]core.PeriodReturn, error)
	Dividends(ctx context.Context, isin string) ([]core.Dividend, error)

	// Cross-fund data
	Ranking(ctx context.Context) ([]core.RankingEntry, error)
}
