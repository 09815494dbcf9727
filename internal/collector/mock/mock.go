// Package mock provides an in-memory collector.FundSource for testing.
package mock

import (
	"context"
	"sync"

	"github.com/newthinker/fundrep/internal/core"
)

// Fund is the canned data served for one ISIN
type Fund struct {
	Profile       core.FundProfile
	Prices        core.PriceSeries
	NavAum        core.NavAum
	PeriodReturns []core.PeriodReturn
	Dividends     []core.Dividend
}

// Source implements collector.FundSource from in-memory data.
// Unknown ISINs fail with a DataUnavailable error wrapping FundNotFound.
type Source struct {
	mu      sync.Mutex
	name    string
	funds   map[string]*Fund
	ranking []core.RankingEntry
	err     error
	errs    map[string]error
	calls   map[string]int
}

// New creates an empty mock source named "mock"
func New() *Source {
	return NewNamed("mock")
}

// NewNamed creates an empty mock source with the given name
func NewNamed(name string) *Source {
	return &Source{
		name:  name,
		funds: make(map[string]*Fund),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

// SetFund registers canned data for an ISIN
func (s *Source) SetFund(isin string, f Fund) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Profile.ISIN == "" {
		f.Profile.ISIN = isin
	}
	s.funds[isin] = &f
}

// SetRanking sets the ranking feed
func (s *Source) SetRanking(entries []core.RankingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking = entries
}

// SetError makes every call fail with err (nil clears it)
func (s *Source) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetMethodError makes only the named method fail with err (nil clears it)
func (s *Source) SetMethodError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, method)
		return
	}
	s.errs[method] = err
}

// failure returns the error the named method should fail with, if any.
// Callers hold s.mu.
func (s *Source) failure(method string) error {
	if s.err != nil {
		return s.err
	}
	return s.errs[method]
}

// Calls returns how many times the named method was called
func (s *Source) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) lookup(method, isin string) (*Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++

	if err := s.failure(method); err != nil {
		return nil, err
	}
	f, ok := s.funds[isin]
	if !ok {
		return nil, core.WrapError(core.ErrDataUnavailable, core.WrapError(core.ErrFundNotFound, nil))
	}
	return f, nil
}

func (s *Source) Profile(ctx context.Context, isin string) (*core.FundProfile, error) {
	f, err := s.lookup("Profile", isin)
	if err != nil {
		return nil, err
	}
	p := f.Profile
	return &p, nil
}

func (s *Source) PriceHistory(ctx context.Context, isin string) (core.PriceSeries, error) {
	f, err := s.lookup("PriceHistory", isin)
	if err != nil {
		return nil, err
	}
	return append(core.PriceSeries(nil), f.Prices...), nil
}

func (s *Source) NavAum(ctx context.Context, isin string) (*core.NavAum, error) {
	f, err := s.lookup("NavAum", isin)
	if err != nil {
		return nil, err
	}
	n := f.NavAum
	return &n, nil
}

func (s *Source) PeriodReturns(ctx context.Context, isin string) ([]core.PeriodReturn, error) {
	f, err := s.lookup("PeriodReturns", isin)
	if err != nil {
		return nil, err
	}
	return append([]core.PeriodReturn(nil), f.PeriodReturns...), nil
}

func (s *Source) Dividends(ctx context.Context, isin string) ([]core.Dividend, error) {
	f, err := s.lookup("Dividends", isin)
	if err != nil {
		return nil, err
	}
	return append([]core.Dividend(nil), f.Dividends...), nil
}

func (s *Source) Ranking(ctx context.Context) ([]core.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Ranking"]++

	if err := s.failure("Ranking"); err != nil {
		return nil, err
	}
	return append([]core.RankingEntry(nil), s.ranking...), nil
}
