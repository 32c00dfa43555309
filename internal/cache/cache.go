package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/cargo-check-i18n/internal"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
	"codeberg.org/snonux/cargo-check-i18n/internal/translation"
)

// ErrEmptyTranslation is returned when compute succeeds with an empty answer
var ErrEmptyTranslation = errors.New("empty translation")

// ComputeFunc produces the translation for a cache miss
type ComputeFunc func(ctx context.Context) (string, error)

// Cache maps cleaned diagnostic text to its translation
type Cache struct {
	path    string
	persist bool
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	entries map[string]string

	flights singleflight.Group
}

// Option configures a Cache
type Option func(*Cache)

// WithLogger sets the logger for persistence problems
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics records hits and misses
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates an empty cache that is never written to disk
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the cache file at path. A missing or unreadable file yields an
// empty cache; every new entry is written back to path.
func Load(path string, opts ...Option) *Cache {
	c := New(opts...)
	c.path = path
	c.persist = true

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("ignoring unreadable cache file", "path", path, "error", err)
		}
		return c
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Debug("ignoring malformed cache file", "path", path, "error", err)
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	return c
}

// Path returns the backing file, empty for in-memory caches
func (c *Cache) Path() string {
	return c.path
}

// Get retrieves a translation
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

// Len returns the number of cached translations
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns a copy of all cached translations
func (c *Cache) Snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		result[k] = v
	}
	return result
}

// Set stores a translation and persists the cache
func (c *Cache) Set(key, value string) error {
	return c.SetMany(map[string]string{key: value})
}

// SetMany stores several translations and persists the cache once
func (c *Cache) SetMany(entries map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range entries {
		c.entries[k] = translation.Normalize(v)
	}
	return c.saveLocked()
}

// Save writes the whole cache to its file
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// Resolve returns the cached translation for key, calling compute on a miss.
// Concurrent misses for one key share a single compute call. When compute
// fails, the failure text is returned along with the error and nothing is
// stored, so the key is tried again next time.
func (c *Cache) Resolve(ctx context.Context, key string, compute ComputeFunc) (string, error) {
	if value, ok := c.Get(key); ok {
		c.metrics.CacheHit()
		return value, nil
	}

	v, err, _ := c.flights.Do(key, func() (interface{}, error) {
		// A flight for this key may have finished since the lookup above
		if value, ok := c.Get(key); ok {
			c.metrics.CacheHit()
			return value, nil
		}
		c.metrics.CacheMiss()

		text, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		text = translation.Normalize(text)
		if text == "" {
			return nil, ErrEmptyTranslation
		}

		c.mu.Lock()
		c.entries[key] = text
		if err := c.saveLocked(); err != nil {
			c.logger.Warn("failed to persist translation cache", "path", c.path, "error", err)
		}
		c.mu.Unlock()

		c.logger.Debug("cached translation", "key", internal.ShortHash(key))
		return text, nil
	})
	if err != nil {
		return translation.FailureText, err
	}
	return v.(string), nil
}

// saveLocked writes the cache atomically; c.mu must be held
func (c *Cache) saveLocked() error {
	if !c.persist {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
