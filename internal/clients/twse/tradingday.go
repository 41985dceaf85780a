package twse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/twdash/internal/fetch"
	"github.com/bobmcallan/twdash/internal/models"
)

// maxLookbackDays bounds the trading-day probe. Taiwan market holidays
// around Lunar New Year can close the exchange for over a week, so the
// window leaves comfortable headroom.
const maxLookbackDays = 15

// LatestTradingDays discovers the two most recent trading days by
// probing the TWT38U table backwards from today in exchange-local time.
// A day counts as a trading day when the table has rows for it. Probe
// failures (network, parse) skip the day rather than aborting, so a
// flaky relay chain cannot mask an otherwise discoverable pair.
func (c *Client) LatestTradingDays(ctx context.Context) (models.TradingDayPair, error) {
	var pair models.TradingDayPair

	day := c.now().In(taipeiLocation)
	for i := 0; i < maxLookbackDays; i++ {
		ymd := day.Format("20060102")
		ok, err := c.hasTradingData(ctx, ymd)
		if err != nil {
			c.logger.Warn().Err(err).Str("day", ymd).Msg("trading day probe failed, skipping")
		} else if ok {
			if pair.Latest == "" {
				pair.Latest = ymd
			} else {
				pair.Prev = ymd
				return pair, nil
			}
		}
		day = day.AddDate(0, 0, -1)
	}

	return models.TradingDayPair{}, fmt.Errorf("no trading day pair found within %d days", maxLookbackDays)
}

// hasTradingData probes a single day's TWT38U table.
func (c *Client) hasTradingData(ctx context.Context, day string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/fund/TWT38U?response=json&date=%s", c.baseURL, day)

	text, err := c.fetcher.FetchText(ctx, reqURL)
	if err != nil {
		return false, err
	}

	var payload twt38uResponse
	if err := json.Unmarshal([]byte(fetch.ExtractJSON(text)), &payload); err != nil {
		return false, &fetch.ParseError{Source: "twse twt38u", Err: err}
	}

	return payload.hasData(), nil
}
