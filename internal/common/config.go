// Package common provides shared utilities for twdash
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for twdash
type Config struct {
	Environment string         `toml:"environment"`
	Snapshot    SnapshotConfig `toml:"snapshot"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Fetch       FetchConfig    `toml:"fetch"`
	Logging     LoggingConfig  `toml:"logging"`
}

// SnapshotConfig locates the precomputed baseline snapshot.
type SnapshotConfig struct {
	Path string `toml:"path"`
}

// StorageConfig selects and locates the key-value backend.
// Backend is "file" (JSON files, atomic writes) or "badger" (BadgerHold).
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// ClientsConfig holds upstream data source configurations
type ClientsConfig struct {
	TWSE TWSEConfig `toml:"twse"`
	News NewsConfig `toml:"news"`
}

// TWSEConfig holds TWSE open data endpoint configuration
type TWSEConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TWSEConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NewsConfig holds the news search feed configuration
type NewsConfig struct {
	BaseURL   string `toml:"base_url"`
	Language  string `toml:"language"`
	Region    string `toml:"region"`
	Edition   string `toml:"edition"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *NewsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FetchConfig holds relay fallback configuration. Each relay is a URL
// template with a {url} placeholder; relays are tried in order after a
// failed direct attempt. An empty list disables the fallback entirely,
// which is the sensible setting for server-side deployments with no
// cross-origin restrictions.
type FetchConfig struct {
	Relays []string `toml:"relays"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Snapshot: SnapshotConfig{
			Path: "data/data.json",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "data/state",
		},
		Clients: ClientsConfig{
			TWSE: TWSEConfig{
				BaseURL:   "https://www.twse.com.tw",
				RateLimit: 3,
				Timeout:   "30s",
			},
			News: NewsConfig{
				BaseURL:   "https://news.google.com",
				Language:  "zh-TW",
				Region:    "TW",
				Edition:   "TW:zh-Hant",
				RateLimit: 3,
				Timeout:   "30s",
			},
		},
		Fetch: FetchConfig{
			Relays: []string{
				"https://api.allorigins.win/raw?url={url}",
				"https://corsproxy.io/?{url}",
				"https://api.codetabs.com/v1/proxy?quest={url}",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TWDASH_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("TWDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TWDASH_SNAPSHOT"); path != "" {
		config.Snapshot.Path = path
	}

	if path := os.Getenv("TWDASH_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if backend := os.Getenv("TWDASH_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if base := os.Getenv("TWDASH_TWSE_BASE_URL"); base != "" {
		config.Clients.TWSE.BaseURL = base
	}

	if base := os.Getenv("TWDASH_NEWS_BASE_URL"); base != "" {
		config.Clients.News.BaseURL = base
	}

	if relays := os.Getenv("TWDASH_RELAYS"); relays != "" {
		if relays == "none" {
			config.Fetch.Relays = nil
		} else {
			config.Fetch.Relays = strings.Split(relays, ",")
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
