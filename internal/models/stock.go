// Package models defines data structures for twdash
package models

import (
	"regexp"
	"strings"
)

// NewsCategories is the fixed set of category labels used for per-stock
// news queries, in display order.
var NewsCategories = []string{"法說", "營收", "重大訊息", "產能", "美國出口管制"}

// MaxNewsPerCategory caps the number of feed entries kept per category.
const MaxNewsPerCategory = 10

// MaxExtraTickers caps the number of user-chosen extra tickers.
const MaxExtraTickers = 2

var tickerPattern = regexp.MustCompile(`^\d{4}$`)

// ValidTicker reports whether s is a 4-digit exchange security code.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// TradingDayPair identifies the two trading sessions being compared.
// Dates are YYYY-MM-DD strings as supplied by the baseline snapshot.
type TradingDayPair struct {
	Latest string `json:"latest"`
	Prev   string `json:"prev"`
}

var nonDigits = regexp.MustCompile(`\D`)

// Key returns the cache partition key for the pair: both dates reduced
// to digits, joined with an underscore (e.g. "20260130_20260129").
func (p TradingDayPair) Key() string {
	return nonDigits.ReplaceAllString(p.Latest, "") + "_" + nonDigits.ReplaceAllString(p.Prev, "")
}

// LatestYmd returns the latest trading day as a YYYYMMDD string.
func (p TradingDayPair) LatestYmd() string {
	return nonDigits.ReplaceAllString(p.Latest, "")
}

// PrevYmd returns the previous trading day as a YYYYMMDD string.
func (p TradingDayPair) PrevYmd() string {
	return nonDigits.ReplaceAllString(p.Prev, "")
}

// Valid reports whether both dates reduce to 8 digits.
func (p TradingDayPair) Valid() bool {
	return len(p.LatestYmd()) == 8 && len(p.PrevYmd()) == 8
}

// PriceInfo holds display-ready price strings for one session.
// Change and ChangePct are nil whenever either the close or the previous
// close is unavailable upstream.
type PriceInfo struct {
	Close     *string `json:"close"`
	Change    *string `json:"change"`
	ChangePct *string `json:"change_pct"`
}

// ForeignNet holds foreign-investor net lots for the latest (D0) and
// previous (D1) sessions. Nil means the source had no usable row.
type ForeignNet struct {
	D0 *int64 `json:"D0"`
	D1 *int64 `json:"D1"`
}

// NewsItem is a single feed entry.
type NewsItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

// NewsByCategory maps each category label to its entries in feed order.
type NewsByCategory map[string][]NewsItem

// StockRecord is the complete resolved view of one ticker. Immutable
// once constructed; cached under its ticker within a day partition.
type StockRecord struct {
	Ticker         string         `json:"ticker"`
	Name           *string        `json:"name"`
	Price          PriceInfo      `json:"price"`
	ForeignNetLots ForeignNet     `json:"foreign_net_shares"`
	News           NewsByCategory `json:"news"`
}

// DisplayName returns the resolved company name, or the ticker itself
// when the name could not be recovered.
func (r *StockRecord) DisplayName() string {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		return *r.Name
	}
	return r.Ticker
}

// DayCache is the day-partitioned stock record cache: day-pair key →
// ticker → record. Entries for different day-pair keys never collide;
// stale partitions are dead weight, never read.
type DayCache map[string]map[string]*StockRecord

// Get returns the cached record for a ticker under a day-pair key.
func (c DayCache) Get(dayKey, ticker string) (*StockRecord, bool) {
	part, ok := c[dayKey]
	if !ok {
		return nil, false
	}
	rec, ok := part[ticker]
	return rec, ok
}

// Put writes a record under a day-pair key unless one is already
// present. A ticker entry, once written for a day-pair key, is never
// overwritten except by an explicit cache clear.
func (c DayCache) Put(dayKey string, rec *StockRecord) {
	part, ok := c[dayKey]
	if !ok {
		part = make(map[string]*StockRecord)
		c[dayKey] = part
	}
	if _, exists := part[rec.Ticker]; exists {
		return
	}
	part[rec.Ticker] = rec
}
