package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/twdash/internal/fetch"
	"github.com/bobmcallan/twdash/internal/format"
	"github.com/bobmcallan/twdash/internal/interfaces"
	"github.com/bobmcallan/twdash/internal/models"
)

// Ensure Client implements the price and foreign contracts
var (
	_ interfaces.PriceClient   = (*Client)(nil)
	_ interfaces.ForeignClient = (*Client)(nil)
)

// closeColumn is the close-price column in the STOCK_DAY row layout:
// date, shares, amount, open, high, low, close, change, transactions.
const closeColumn = 6

// stockDayResponse represents the TWSE STOCK_DAY payload. Data rows are
// string matrices; numeric cells carry thousands separators and use
// "-"/"--" for unavailable values.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Title  string     `json:"title"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// DailyQuote retrieves the display name and close/delta strings for a
// ticker from the daily price table of the month containing day
// (YYYYMMDD). The delta needs at least two rows (latest + previous);
// with fewer rows only the close (and possibly the name) is populated.
func (c *Client) DailyQuote(ctx context.Context, ticker, day string) (*interfaces.DailyQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/exchangeReport/STOCK_DAY?response=json&date=%s&stockNo=%s", c.baseURL, day, ticker)

	start := time.Now()
	text, err := c.fetcher.FetchText(ctx, reqURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Str("day", day).Msg("STOCK_DAY fetch failed")
		return nil, err
	}

	var payload stockDayResponse
	if err := json.Unmarshal([]byte(fetch.ExtractJSON(text)), &payload); err != nil {
		return nil, &fetch.ParseError{Source: "twse stock_day", Err: err}
	}

	quote := &interfaces.DailyQuote{
		Name:  nameFromTitle(payload.Title, ticker),
		Price: priceFromRows(payload.Data),
	}

	c.logger.Info().
		Str("ticker", ticker).
		Str("day", day).
		Int("rows", len(payload.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("STOCK_DAY fetched")

	return quote, nil
}

// nameFromTitle recovers the display name from the human-readable
// payload title (e.g. "114年01月 2330 台積電 各日成交資訊") with a
// ticker-anchored pattern. Best effort; nil when the title does not
// carry one.
func nameFromTitle(title, ticker string) *string {
	re := regexp.MustCompile(regexp.QuoteMeta(ticker) + `\s+(\S+)`)
	m := re.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	name := m[1]
	return &name
}

// priceFromRows computes the close and delta strings from the daily
// rows, oldest first. Sentinel closes propagate as nil fields.
func priceFromRows(rows [][]string) models.PriceInfo {
	var info models.PriceInfo

	if len(rows) == 0 {
		return info
	}

	last := rows[len(rows)-1]
	if len(last) <= closeColumn {
		return info
	}
	closeVal, closeOK := format.ParseNumber(last[closeColumn])
	if closeOK {
		s := format.FormatClose(closeVal)
		info.Close = &s
	}

	if len(rows) < 2 {
		return info
	}
	prev := rows[len(rows)-2]
	if len(prev) <= closeColumn {
		return info
	}
	prevVal, prevOK := format.ParseNumber(prev[closeColumn])
	if !closeOK || !prevOK {
		return info
	}

	change := closeVal.Sub(prevVal)
	changeStr := format.FormatSigned(change)
	info.Change = &changeStr

	if !prevVal.IsZero() {
		pct := change.Div(prevVal).Mul(decimal.NewFromInt(100))
		pctStr := format.FormatSignedPct(pct)
		info.ChangePct = &pctStr
	}

	return info
}
