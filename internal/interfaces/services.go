package interfaces

import (
	"context"

	"github.com/bobmcallan/twdash/internal/models"
)

// ExtraStockService resolves user-chosen extra tickers into complete
// stock records for a trading-day pair, backed by a day-partitioned
// cache, and owns the persisted ticker selection.
type ExtraStockService interface {
	ResolveExtraStocks(ctx context.Context, tickers []string, pair models.TradingDayPair) ([]*models.StockRecord, map[string]error)
	LoadTickers(ctx context.Context) []string
	SaveTickers(ctx context.Context, tickers []string) error
	ClearCache(ctx context.Context) error
}
