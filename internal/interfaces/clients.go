package interfaces

import (
	"context"

	"github.com/bobmcallan/twdash/internal/models"
)

// DailyQuote is the price/name adapter result for one ticker on one
// trading day. Name is nil when the source title did not yield one;
// the PriceInfo fields follow the availability rules of models.PriceInfo.
type DailyQuote struct {
	Name  *string
	Price models.PriceInfo
}

// PriceClient resolves a ticker's display name and close/delta strings
// from the daily price table for the given trading day (YYYYMMDD).
type PriceClient interface {
	DailyQuote(ctx context.Context, ticker, day string) (*DailyQuote, error)
}

// ForeignClient resolves a ticker's foreign-investor net share count
// from the market-wide trading table for the given day (YYYYMMDD).
// A nil count means the payload held no usable row for the ticker
// (semantic absence, not a transport failure).
type ForeignClient interface {
	ForeignNetShares(ctx context.Context, ticker, day string) (*int64, error)
}

// NewsClient runs a free-text query against the news search feed and
// returns entries in feed order.
type NewsClient interface {
	Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error)
}
