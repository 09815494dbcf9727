// Package report turns fund data into display-ready chart and table
// markup and the named bindings a page template consumes.
package report

import (
	"context"
	"fmt"

	"github.com/newthinker/fundrep/internal/collector"
	"github.com/newthinker/fundrep/internal/core"
)

// CSSFile is the stylesheet the report templates link
const CSSFile = "style.css"

// Static footnotes shown under the price chart and return table
var (
	BasePriceNotes = []string{
		"※ データは、当初設定日から作成基準日までを表示しています。",
		"※ 基準価額（分配金再投資）は、分配金（税引前）を再投資したものとして計算しています。",
		"※ 基準価額は、信託報酬控除後です。",
	}
	BasePriceReturnNote = "※ ファンドの騰落率は、分配金（税引前）を再投資したものとして計算しています。"
)

// DistributionSinceEstablished is the cumulative distribution since the
// fund was established
const DistributionSinceEstablished = 40

// Options holds report settings
type Options struct {
	DividendYears []int
}

// DefaultOptions returns the default report options
func DefaultOptions() Options {
	return Options{DividendYears: append([]int(nil), DefaultDividendYears...)}
}

// Report is the presentation model for one fund. It lives for a single
// request and owns its fund adapter. Only identity is fetched at
// construction; every section fetches its data when it is built.
type Report struct {
	fund          *collector.Fund
	variant       Variant
	profile       core.FundProfile
	dividendYears []int
}

// New builds a report for the fund, fetching its name and category
func New(ctx context.Context, fund *collector.Fund, variant Variant, opts Options) (*Report, error) {
	profile, err := fund.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fund %s: %w", fund.ISIN(), err)
	}

	years := opts.DividendYears
	if len(years) == 0 {
		years = DefaultDividendYears
	}

	return &Report{
		fund:          fund,
		variant:       variant,
		profile:       *profile,
		dividendYears: append([]int(nil), years...),
	}, nil
}

func (r *Report) ISIN() string { return r.fund.ISIN() }
func (r *Report) Name() string { return r.profile.Name }
func (r *Report) Category() string { return r.profile.Category }
func (r *Report) Variant() Variant { return r.variant }
func (r *Report) TemplateFile() string { return r.variant.TemplateFile() }

// DividendYears returns the years shown in the dividend table
func (r *Report) DividendYears() []int {
	return append([]int(nil), r.dividendYears...)
}

// PriceChart builds the basic price / net asset chart
func (r *Report) PriceChart(ctx context.Context) (*Chart, error) {
	series, err := r.fund.PriceHistory(ctx)
	if err != nil {
		return nil, err
	}
	return NewPriceChart(series)
}

// NavAumTable builds the current month-end NAV/AUM table. The previous
// month-end column is always blank.
func (r *Report) NavAumTable(ctx context.Context) (*Table, error) {
	nav, err := r.fund.NavAum(ctx)
	if err != nil {
		return nil, err
	}
	return &Table{
		Classes: []string{"nav_aum", "table"},
		Header:  []string{"", "当月末", "前月末"},
		Rows: [][]string{
			{"基準価額", nav.BasicPrice + yenSuffix, ""},
			{"純資産総額", nav.NetAssetAmount, ""},
		},
		Index: true,
	}, nil
}

// PeriodReturnTable builds the period return table. The difference column
// is always blank.
func (r *Report) PeriodReturnTable(ctx context.Context) (*Table, error) {
	returns, err := r.fund.PeriodReturns(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(returns))
	for _, pr := range returns {
		rows = append(rows, []string{pr.Period, pr.Fund, pr.Category, ""})
	}
	return &Table{
		Classes: []string{"pct_change", "table"},
		Header:  []string{"", "ファンド", "カテゴリー", "差"},
		Rows:    rows,
	}, nil
}

// DividendTable builds the dividend grid for the configured years
func (r *Report) DividendTable(ctx context.Context) (*Table, error) {
	dividends, err := r.fund.Dividends(ctx)
	if err != nil {
		return nil, err
	}
	table, err := PivotDividends(dividends, r.dividendYears)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	return table, nil
}

// Ranking returns the cross-fund flow ranking in upstream order
func (r *Report) Ranking(ctx context.Context) ([]core.RankingEntry, error) {
	return r.fund.Ranking(ctx)
}

// Binding names available to report templates
const (
	BindISINCode                     = "isin_code"
	BindFundName                     = "fund_name"
	BindFundCategory                 = "fund_category"
	BindBasePriceNote                = "base_price_note"
	BindBasePriceReturnNote          = "base_price_return_note"
	BindDistributionSinceEstablished = "distribution_since_established"
	BindTemplateFile                 = "template_file"
	BindCSSFile                      = "css_file"
	BindPriceGraph                   = "html_basic_price_graph"
	BindNavAum                       = "html_nav_aum"
	BindPctChangeByPeriod            = "html_pct_change_by_period"
	BindDividend                     = "html_dividend"
	BindRanking                      = "ranking"
)

// Bindings is the named data a page template renders from
type Bindings map[string]any

// Bindings builds every section the variant displays and returns the
// template namespace. The ranking is bound only for variants that show it.
// Any section failure fails the whole report.
func (r *Report) Bindings(ctx context.Context) (Bindings, error) {
	b := Bindings{
		BindISINCode:                     r.ISIN(),
		BindFundName:                     r.Name(),
		BindFundCategory:                 r.Category(),
		BindBasePriceNote:                BasePriceNotes,
		BindBasePriceReturnNote:          BasePriceReturnNote,
		BindDistributionSinceEstablished: DistributionSinceEstablished,
		BindTemplateFile:                 r.TemplateFile(),
		BindCSSFile:                      CSSFile,
	}

	chart, err := r.PriceChart(ctx)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", BindPriceGraph, err)
	}
	if b[BindPriceGraph], err = chart.Markup(); err != nil {
		return nil, err
	}

	tables := []struct {
		name  string
		build func(context.Context) (*Table, error)
	}{
		{BindNavAum, r.NavAumTable},
		{BindPctChangeByPeriod, r.PeriodReturnTable},
		{BindDividend, r.DividendTable},
	}
	for _, t := range tables {
		table, err := t.build(ctx)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", t.name, err)
		}
		markup, err := table.Markup()
		if err != nil {
			return nil, err
		}
		b[t.name] = markup
	}

	if r.variant.ShowsRanking() {
		ranking, err := r.Ranking(ctx)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", BindRanking, err)
		}
		b[BindRanking] = ranking
	}

	return b, nil
}
