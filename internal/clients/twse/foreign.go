package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/twdash/internal/fetch"
	"github.com/bobmcallan/twdash/internal/format"
)

// Header labels used to locate columns in the TWT38U table. The table
// is matched by label, not position, so upstream column reordering does
// not break the lookup.
const (
	fieldSecurityCode = "證券代號"
	fieldNetShares    = "買賣超股數"
)

// twt38uResponse represents the TWSE TWT38U (foreign and other
// investors) payload.
type twt38uResponse struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// hasData reports whether the payload carries usable rows: a status
// flag, when present, must read OK or SUCCESS (case-insensitive).
func (r *twt38uResponse) hasData() bool {
	if r.Stat != "" {
		stat := strings.ToUpper(strings.TrimSpace(r.Stat))
		if stat != "OK" && stat != "SUCCESS" {
			return false
		}
	}
	return len(r.Data) > 0
}

// fieldIndex locates a column by trimmed header label. Returns -1 when
// the label is absent.
func (r *twt38uResponse) fieldIndex(label string) int {
	for i, f := range r.Fields {
		if strings.TrimSpace(f) == label {
			return i
		}
	}
	return -1
}

// ForeignNetShares retrieves the foreign-investor net buy/sell share
// count for a ticker on the given day (YYYYMMDD). A nil count means the
// payload had no usable data for the ticker (bad status flag, missing
// header labels, or no matching row); that is semantic absence, not an
// error. The first matching row wins; tickers are unique per payload.
func (c *Client) ForeignNetShares(ctx context.Context, ticker, day string) (*int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/fund/TWT38U?response=json&date=%s", c.baseURL, day)

	start := time.Now()
	text, err := c.fetcher.FetchText(ctx, reqURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Str("day", day).Msg("TWT38U fetch failed")
		return nil, err
	}

	var payload twt38uResponse
	if err := json.Unmarshal([]byte(fetch.ExtractJSON(text)), &payload); err != nil {
		return nil, &fetch.ParseError{Source: "twse twt38u", Err: err}
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Str("day", day).
		Int("rows", len(payload.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("TWT38U fetched")

	if !payload.hasData() {
		return nil, nil
	}

	idxCode := payload.fieldIndex(fieldSecurityCode)
	idxNet := payload.fieldIndex(fieldNetShares)
	if idxCode < 0 || idxNet < 0 {
		c.logger.Warn().Str("day", day).Msg("TWT38U header labels not found")
		return nil, nil
	}

	for _, row := range payload.Data {
		if len(row) <= idxCode || len(row) <= idxNet {
			continue
		}
		if strings.TrimSpace(row[idxCode]) != ticker {
			continue
		}
		d, ok := format.ParseNumber(row[idxNet])
		if !ok {
			return nil, nil
		}
		shares := d.IntPart()
		return &shares, nil
	}

	return nil, nil
}
