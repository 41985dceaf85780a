package models

import "encoding/json"

// BaselineSnapshot is the precomputed daily document emitted by the
// batch producer. twdash reads it for the trading-day pair and to merge
// the fixed stocks with user-chosen extras; it never validates or
// rewrites the producer's blocks.
type BaselineSnapshot struct {
	GeneratedAt      string          `json:"generated_at"`
	LatestTradingDay string          `json:"latest_trading_day"`
	PrevTradingDay   string          `json:"prev_trading_day"`
	Stocks           []SnapshotStock `json:"stocks"`
	FubonZGB         json.RawMessage `json:"fubon_zgb,omitempty"`
	FubonZGKD        json.RawMessage `json:"fubon_zgk_d,omitempty"`
}

// SnapshotStock is one precomputed stock entry. Price values are kept
// loose (the producer writes numbers, this core writes formatted
// strings for extras) so both shapes pass through untouched.
type SnapshotStock struct {
	Ticker           string          `json:"ticker"`
	Name             string          `json:"name"`
	Price            json.RawMessage `json:"price"`
	ForeignNetShares json.RawMessage `json:"foreign_net_shares"`
	News             json.RawMessage `json:"news"`
	Futures          json.RawMessage `json:"futures,omitempty"`
}

// DayPair extracts the trading-day pair the snapshot was built for.
func (s *BaselineSnapshot) DayPair() TradingDayPair {
	return TradingDayPair{Latest: s.LatestTradingDay, Prev: s.PrevTradingDay}
}

// FixedTickers returns the tickers of the precomputed stocks. Extras
// duplicating a fixed stock are dropped before resolution.
func (s *BaselineSnapshot) FixedTickers() map[string]bool {
	out := make(map[string]bool, len(s.Stocks))
	for _, st := range s.Stocks {
		out[st.Ticker] = true
	}
	return out
}
