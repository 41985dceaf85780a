// Package extrastock resolves user-chosen extra tickers into complete
// display-ready stock records, with a day-partitioned cache so each
// ticker is built at most once per trading-day pair.
package extrastock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/format"
	"github.com/bobmcallan/twdash/internal/interfaces"
	"github.com/bobmcallan/twdash/internal/models"
)

// Service orchestrates the price, foreign-trading and news adapters
// behind the day cache.
type Service struct {
	store   interfaces.KeyValueStore
	price   interfaces.PriceClient
	foreign interfaces.ForeignClient
	news    interfaces.NewsClient
	logger  *common.Logger
}

// Ensure Service implements ExtraStockService
var _ interfaces.ExtraStockService = (*Service)(nil)

// NewService creates a new extra-stock service.
func NewService(store interfaces.KeyValueStore, price interfaces.PriceClient, foreign interfaces.ForeignClient, news interfaces.NewsClient, logger *common.Logger) *Service {
	return &Service{
		store:   store,
		price:   price,
		foreign: foreign,
		news:    news,
		logger:  logger,
	}
}

// NormalizeTickers trims, validates and deduplicates a raw ticker
// selection, keeping first occurrences in order and capping the result
// at the extra-ticker limit. Invalid entries are dropped, not errors.
func NormalizeTickers(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, models.MaxExtraTickers)
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if !models.ValidTicker(t) || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == models.MaxExtraTickers {
			break
		}
	}
	return out
}

// ResolveExtraStocks resolves each ticker in the selection into a
// complete stock record for the given trading-day pair. Records already
// cached under the pair's day key are reused without touching upstream;
// misses are built and cached. A ticker whose price or foreign data
// cannot be fetched fails individually and is reported in the returned
// error map; the rest of the batch still resolves. The cache is
// persisted once per batch, only when something new was built.
func (s *Service) ResolveExtraStocks(ctx context.Context, tickers []string, pair models.TradingDayPair) ([]*models.StockRecord, map[string]error) {
	tickers = NormalizeTickers(tickers)
	errs := make(map[string]error)
	if len(tickers) == 0 {
		return nil, errs
	}

	cache := s.loadCache(ctx)
	dayKey := pair.Key()

	records := make([]*models.StockRecord, 0, len(tickers))
	built := 0
	for _, ticker := range tickers {
		if rec, ok := cache.Get(dayKey, ticker); ok {
			s.logger.Debug().Str("ticker", ticker).Str("day_key", dayKey).Msg("stock record cache hit")
			records = append(records, rec)
			continue
		}

		rec, err := s.buildRecord(ctx, ticker, pair)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("stock record build failed")
			errs[ticker] = err
			continue
		}

		cache.Put(dayKey, rec)
		records = append(records, rec)
		built++
	}

	if built > 0 {
		if err := s.saveCache(ctx, cache); err != nil {
			// The cache is rebuildable; losing a write costs refetches,
			// not correctness.
			s.logger.Warn().Err(err).Msg("failed to persist stock cache")
		}
	}

	return records, errs
}

// buildRecord fetches price, foreign net lots and categorized news for
// one ticker. Price and foreign failures abort the record; news
// failures degrade to empty categories.
func (s *Service) buildRecord(ctx context.Context, ticker string, pair models.TradingDayPair) (*models.StockRecord, error) {
	quote, err := s.price.DailyQuote(ctx, ticker, pair.LatestYmd())
	if err != nil {
		return nil, fmt.Errorf("daily quote for %s: %w", ticker, err)
	}

	foreign, err := s.fetchForeignNet(ctx, ticker, pair)
	if err != nil {
		return nil, err
	}

	rec := &models.StockRecord{
		Ticker:         ticker,
		Name:           quote.Name,
		Price:          quote.Price,
		ForeignNetLots: foreign,
	}
	rec.News = s.fetchNews(ctx, rec)
	return rec, nil
}

// fetchForeignNet fetches both sessions' foreign net shares
// concurrently and converts them to lots.
func (s *Service) fetchForeignNet(ctx context.Context, ticker string, pair models.TradingDayPair) (models.ForeignNet, error) {
	var (
		wg         sync.WaitGroup
		d0, d1     *int64
		err0, err1 error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		d0, err0 = s.foreign.ForeignNetShares(ctx, ticker, pair.LatestYmd())
	}()
	go func() {
		defer wg.Done()
		d1, err1 = s.foreign.ForeignNetShares(ctx, ticker, pair.PrevYmd())
	}()
	wg.Wait()

	if err0 != nil {
		return models.ForeignNet{}, fmt.Errorf("foreign net for %s on %s: %w", ticker, pair.LatestYmd(), err0)
	}
	if err1 != nil {
		return models.ForeignNet{}, fmt.Errorf("foreign net for %s on %s: %w", ticker, pair.PrevYmd(), err1)
	}

	var net models.ForeignNet
	if d0 != nil {
		lots := format.SharesToLots(*d0)
		net.D0 = &lots
	}
	if d1 != nil {
		lots := format.SharesToLots(*d1)
		net.D1 = &lots
	}
	return net, nil
}

// fetchNews queries each news category in turn. The query combines the
// ticker, the resolved name and the category label; when no name was
// recovered the query carries the ticker and category alone. A failed
// category logs a warning and contributes an empty slice.
func (s *Service) fetchNews(ctx context.Context, rec *models.StockRecord) models.NewsByCategory {
	parts := []string{rec.Ticker}
	if rec.Name != nil && strings.TrimSpace(*rec.Name) != "" {
		parts = append(parts, strings.TrimSpace(*rec.Name))
	}

	news := make(models.NewsByCategory, len(models.NewsCategories))
	for _, category := range models.NewsCategories {
		query := strings.Join(append(parts, category), " ")
		items, err := s.news.Search(ctx, query, models.MaxNewsPerCategory)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", rec.Ticker).Str("category", category).Msg("news query failed")
			items = nil
		}
		if items == nil {
			items = []models.NewsItem{}
		}
		news[category] = items
	}
	return news
}
