package core

import (
	"testing"
	"time"
)

func TestPriceSeries_MaxBasicPrice(t *testing.T) {
	s := PriceSeries{
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), BasicPrice: 10000},
		{Date: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), BasicPrice: 13250},
		{Date: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), BasicPrice: 12000},
	}

	max, ok := s.MaxBasicPrice()
	if !ok {
		t.Fatal("expected ok for non-empty series")
	}
	if max != 13250 {
		t.Errorf("expected 13250, got %v", max)
	}
}

func TestPriceSeries_MaxBasicPrice_Empty(t *testing.T) {
	var s PriceSeries
	if _, ok := s.MaxBasicPrice(); ok {
		t.Error("expected !ok for empty series")
	}
}
