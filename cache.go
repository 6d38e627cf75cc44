package unwatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ResultCache is a persistent mapping from video ID to completed Result.
// The whole map is loaded at construction and rewritten on every Put, so a
// process restart only ever loses the single in-flight write. Writes are
// serialized under one lock; two concurrent Put calls cannot interleave
// their flushes and corrupt the file.
type ResultCache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]Result
}

// OpenResultCache loads the cache file at path, starting empty when the file
// does not exist yet. A corrupt file is an error rather than silent data loss.
func OpenResultCache(path string) (*ResultCache, error) {
	c := &ResultCache{
		path:    path,
		entries: make(map[string]Result),
	}

	data, err := os.ReadFile(path) // #nosec G304 -- cache path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parse cache file %s: %w", path, err)
	}
	return c, nil
}

// Get returns the cached result for a video ID, if present.
func (c *ResultCache) Get(videoID string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res, ok := c.entries[videoID]
	return res, ok
}

// Put stores a result and flushes the cache to disk before returning.
// The caller must treat a flush failure as the result not being committed.
func (c *ResultCache) Put(videoID string, res Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[videoID] = res
	if err := c.flushLocked(); err != nil {
		delete(c.entries, videoID)
		return fmt.Errorf("%w: %v", ErrCacheFlush, err)
	}
	return nil
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// flushLocked rewrites the cache file atomically (temp file + rename).
// Callers must hold c.mu.
func (c *ResultCache) flushLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil { // #nosec G306 -- cache holds public transcript data
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
