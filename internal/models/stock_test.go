package models

import "testing"

func TestValidTicker(t *testing.T) {
	cases := map[string]bool{
		"2330":  true,
		"0050":  true,
		"233":   false,
		"23300": false,
		"23a0":  false,
		"":      false,
		" 2330": false,
	}
	for in, want := range cases {
		if got := ValidTicker(in); got != want {
			t.Errorf("ValidTicker(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTradingDayPairKey(t *testing.T) {
	pair := TradingDayPair{Latest: "2026-01-30", Prev: "2026-01-29"}
	if got := pair.Key(); got != "20260130_20260129" {
		t.Errorf("Key() = %q", got)
	}
	if got := pair.LatestYmd(); got != "20260130" {
		t.Errorf("LatestYmd() = %q", got)
	}
	if !pair.Valid() {
		t.Error("expected pair to be valid")
	}

	// Already-compact dates pass through.
	compact := TradingDayPair{Latest: "20260130", Prev: "20260129"}
	if compact.Key() != pair.Key() {
		t.Errorf("compact Key() = %q, want %q", compact.Key(), pair.Key())
	}

	if (TradingDayPair{Latest: "2026-01-30"}).Valid() {
		t.Error("pair with empty prev must be invalid")
	}
}

func TestDayCachePutNeverOverwrites(t *testing.T) {
	cache := DayCache{}
	first := &StockRecord{Ticker: "2330"}
	second := &StockRecord{Ticker: "2330"}

	cache.Put("20260130_20260129", first)
	cache.Put("20260130_20260129", second)

	got, ok := cache.Get("20260130_20260129", "2330")
	if !ok || got != first {
		t.Error("expected the first record to survive a duplicate Put")
	}

	// A different day partition is independent.
	cache.Put("20260202_20260130", second)
	got, ok = cache.Get("20260202_20260130", "2330")
	if !ok || got != second {
		t.Error("expected the new partition to hold its own record")
	}
}

func TestStockRecordDisplayName(t *testing.T) {
	name := "台積電"
	rec := &StockRecord{Ticker: "2330", Name: &name}
	if rec.DisplayName() != "台積電" {
		t.Errorf("DisplayName() = %q", rec.DisplayName())
	}

	blank := "  "
	rec = &StockRecord{Ticker: "2330", Name: &blank}
	if rec.DisplayName() != "2330" {
		t.Errorf("DisplayName() with blank name = %q, want ticker", rec.DisplayName())
	}

	rec = &StockRecord{Ticker: "2330"}
	if rec.DisplayName() != "2330" {
		t.Errorf("DisplayName() with nil name = %q, want ticker", rec.DisplayName())
	}
}
