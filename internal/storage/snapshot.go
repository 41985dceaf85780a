package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bobmcallan/twdash/internal/models"
)

// LoadSnapshot reads the baseline snapshot document produced by the
// daily batch job. A missing or unreadable snapshot is fatal for the
// caller: without it there is no trading-day pair to work against.
func LoadSnapshot(path string) (*models.BaselineSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap models.BaselineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	if !snap.DayPair().Valid() {
		return nil, fmt.Errorf("snapshot %s has no usable trading-day pair (latest=%q prev=%q)",
			path, snap.LatestTradingDay, snap.PrevTradingDay)
	}

	return &snap, nil
}
