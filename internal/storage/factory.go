package storage

import (
	"fmt"

	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/interfaces"
)

// Open creates the configured KeyValueStore backend.
func Open(cfg common.StorageConfig, logger *common.Logger) (interfaces.KeyValueStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(logger, cfg.Path)
	case "badger":
		return NewBadgerStore(logger, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Backend)
	}
}
