package extrastock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/twdash/internal/models"
)

// Storage keys. The cache holds resolved stock records partitioned by
// day-pair key; the tickers key persists the user's extra-ticker
// selection between runs.
const (
	cacheKey   = "extra_stock_cache"
	tickersKey = "extra_tickers"
)

// loadCache reads the persisted day cache. A missing key yields an
// empty cache; an undecodable value is discarded with a warning rather
// than failing the run, since the cache is rebuildable from upstream.
func (s *Service) loadCache(ctx context.Context) models.DayCache {
	raw, err := s.store.Get(ctx, cacheKey)
	if err != nil {
		return models.DayCache{}
	}

	var cache models.DayCache
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable stock cache")
		return models.DayCache{}
	}
	if cache == nil {
		cache = models.DayCache{}
	}
	return cache
}

// saveCache persists the day cache as a single full-replace write.
func (s *Service) saveCache(ctx context.Context, cache models.DayCache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to marshal stock cache: %w", err)
	}
	if err := s.store.Set(ctx, cacheKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist stock cache: %w", err)
	}
	return nil
}

// ClearCache removes every cached stock record across all day
// partitions. The next resolve rebuilds from upstream.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.Delete(ctx, cacheKey); err != nil {
		return fmt.Errorf("failed to clear stock cache: %w", err)
	}
	s.logger.Info().Msg("stock cache cleared")
	return nil
}

// LoadTickers reads the persisted extra-ticker selection. A missing
// key yields an empty selection.
func (s *Service) LoadTickers(ctx context.Context) []string {
	raw, err := s.store.Get(ctx, tickersKey)
	if err != nil {
		return nil
	}

	var tickers []string
	if err := json.Unmarshal([]byte(raw), &tickers); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable ticker selection")
		return nil
	}
	return tickers
}

// SaveTickers persists the extra-ticker selection. When the selection
// changed from what was stored, cached records for the removed tickers
// no longer match the persisted choice, so the cache is cleared first.
func (s *Service) SaveTickers(ctx context.Context, tickers []string) error {
	previous := s.LoadTickers(ctx)
	if !sameTickers(previous, tickers) {
		if err := s.ClearCache(ctx); err != nil {
			return err
		}
	}

	data, err := json.Marshal(tickers)
	if err != nil {
		return fmt.Errorf("failed to marshal ticker selection: %w", err)
	}
	if err := s.store.Set(ctx, tickersKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist ticker selection: %w", err)
	}
	return nil
}

func sameTickers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}
