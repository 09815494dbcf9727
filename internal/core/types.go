package core

import "time"

// PriceRecord is one row of a fund's price history
type PriceRecord struct {
	Date           time.Time
	BasicPrice     float64
	NetAssetAmount float64 // millions of yen
	Dividend       float64
	ClosingPeriod  string
}

// PriceSeries is a price history ordered by date ascending
type PriceSeries []PriceRecord

// MaxBasicPrice returns the highest basic price in the series.
// The second return value is false for an empty series.
func (s PriceSeries) MaxBasicPrice() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	max := s[0].BasicPrice
	for _, r := range s[1:] {
		if r.BasicPrice > max {
			max = r.BasicPrice
		}
	}
	return max, true
}

// FundProfile holds the identity fields of a fund
type FundProfile struct {
	ISIN     string
	Name     string
	Category string
}

// NavAum is the latest price and net asset amount, as display strings
type NavAum struct {
	BasicPrice     string
	NetAssetAmount string
}

// PeriodReturn is the percentage change over one period for the fund
// and its category
type PeriodReturn struct {
	Period   string
	Fund     string
	Category string
}

// Dividend is a single distribution
type Dividend struct {
	Period time.Time
	Amount string // e.g. "10.00円"
}

// RankingEntry is one row of the cross-fund net flow ranking
type RankingEntry struct {
	ISIN string `json:"isin"`
	Name string `json:"name"`
	Flow string `json:"flow"`
}
