// Package storage provides key-value persistence with pluggable backends.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/interfaces"
)

// FileStore is a file-based JSON key-value store. Each key is one file;
// writes go through a temp file and rename so a crash never leaves a
// partially written value behind.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// kvEntry represents a key-value entry stored as JSON.
type kvEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewFileStore creates a FileStore rooted at path, creating it if needed.
func NewFileStore(logger *common.Logger, path string) (*FileStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("FileStore opened")
	return &FileStore{basePath: path, logger: logger}, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (fs *FileStore) filePath(key string) string {
	return filepath.Join(fs.basePath, fs.sanitizeKey(key)+".json")
}

func (fs *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(fs.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("key '%s' not found", key)
		}
		return "", fmt.Errorf("failed to read key '%s': %w", key, err)
	}

	var entry kvEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", fmt.Errorf("failed to parse key '%s': %w", key, err)
	}
	return entry.Value, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	data, err := json.MarshalIndent(kvEntry{Key: key, Value: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key '%s': %w", key, err)
	}
	data = append(data, '\n')

	// Atomic write: temp file in the same directory, then rename
	tmpFile, err := os.CreateTemp(fs.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.filePath(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (fs *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(fs.filePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements KeyValueStore
var _ interfaces.KeyValueStore = (*FileStore)(nil)
