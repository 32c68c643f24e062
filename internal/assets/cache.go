package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache memoizes immutable asset metadata on disk, one file per asset id,
// raw JSON as received from the API. Asset attributes do not change after
// mint, so entries never need refreshing; ttl is an escape hatch for the day
// that assumption breaks (0 keeps the legacy never-expire behavior).
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a cache rooted at dir. The directory is created lazily on
// first write.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(assetID string) (string, bool) {
	if assetID == "" || strings.ContainsAny(assetID, `/\`) || assetID == ".." {
		return "", false
	}
	return filepath.Join(c.dir, assetID+".json"), true
}

// Get returns the cached payload for assetID, if present and fresh.
func (c *Cache) Get(assetID string) ([]byte, bool) {
	p, ok := c.path(assetID)
	if !ok {
		return nil, false
	}
	if c.ttl > 0 {
		info, err := os.Stat(p)
		if err != nil || time.Since(info.ModTime()) > c.ttl {
			return nil, false
		}
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Put stores the payload for assetID. Best-effort: a failed mkdir or write
// only costs a re-fetch next cycle, so errors are logged and swallowed.
// Concurrent writers race at worst to an identical write.
func (c *Cache) Put(assetID string, raw []byte) {
	p, ok := c.path(assetID)
	if !ok {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		slog.Debug("asset_cache_write_failed", slog.String("asset_id", assetID), slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		slog.Debug("asset_cache_write_failed", slog.String("asset_id", assetID), slog.String("error", err.Error()))
	}
}

// Purge removes every cached entry. Manual invalidation for operators.
func (c *Cache) Purge() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
