package collector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/collector/mock"
	"github.com/newthinker/fundrep/internal/core"
)

func TestFund_DelegatesWithBoundISIN(t *testing.T) {
	src := mock.New()
	src.SetFund("JP90C0003PR7", mock.Fund{
		Profile: core.FundProfile{Name: "Test Fund", Category: "国内株式"},
		NavAum:  core.NavAum{BasicPrice: "12,345", NetAssetAmount: "1,000百万円"},
	})
	src.SetRanking([]core.RankingEntry{{ISIN: "JP1", Name: "A", Flow: "100"}})

	f := collector.NewFund(src, "JP90C0003PR7")
	ctx := context.Background()

	if f.ISIN() != "JP90C0003PR7" {
		t.Errorf("ISIN = %q", f.ISIN())
	}
	if f.Source() != "mock" {
		t.Errorf("Source = %q", f.Source())
	}

	p, err := f.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "Test Fund" || p.ISIN != "JP90C0003PR7" {
		t.Errorf("unexpected profile %+v", p)
	}

	nav, err := f.NavAum(ctx)
	if err != nil {
		t.Fatalf("NavAum: %v", err)
	}
	if nav.BasicPrice != "12,345" {
		t.Errorf("BasicPrice = %q", nav.BasicPrice)
	}

	rank, err := f.Ranking(ctx)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if len(rank) != 1 {
		t.Errorf("expected 1 ranking entry, got %d", len(rank))
	}
}

func TestFund_NoCaching(t *testing.T) {
	src := mock.New()
	src.SetFund("JP1", mock.Fund{})

	f := collector.NewFund(src, "JP1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.PriceHistory(ctx); err != nil {
			t.Fatalf("PriceHistory: %v", err)
		}
	}
	if got := src.Calls("PriceHistory"); got != 3 {
		t.Errorf("expected 3 upstream calls, got %d", got)
	}
}

func TestFund_UnknownISIN(t *testing.T) {
	f := collector.NewFund(mock.New(), "XX0000000000")

	_, err := f.Dividends(context.Background())
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
	if !errors.Is(err, core.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound, got %v", err)
	}
}

func TestFund_SingleFeedFailure(t *testing.T) {
	src := mock.New()
	src.SetFund("JP1", mock.Fund{})
	src.SetMethodError("Ranking", core.WrapError(core.ErrDataUnavailable, errors.New("ranking down")))

	f := collector.NewFund(src, "JP1")
	ctx := context.Background()

	if _, err := f.Ranking(ctx); !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected ranking failure, got %v", err)
	}
	if _, err := f.Profile(ctx); err != nil {
		t.Errorf("other feeds must keep working: %v", err)
	}

	src.SetMethodError("Ranking", nil)
	if _, err := f.Ranking(ctx); err != nil {
		t.Errorf("cleared failure still returned: %v", err)
	}
}
