package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasbundle/bundler"
	"github.com/erraggy/oasbundle/internal/options"
	"github.com/erraggy/oasbundle/parser"
)

// specInput represents the three ways a root document can be provided to a
// tool. Exactly one of File, URL, or Content must be set.
type specInput struct {
	File         string `json:"file,omitempty"          jsonschema:"Path to the root document on disk"`
	URL          string `json:"url,omitempty"           jsonschema:"URL to fetch the root document from"`
	Content      string `json:"content,omitempty"       jsonschema:"Inline root document content (JSON or YAML)"`
	BaseLocation string `json:"base_location,omitempty" jsonschema:"File path or URL that relative references in inline content resolve against"`
}

// cacheEntry holds a cached result with LRU ordering and TTL expiry.
type cacheEntry struct {
	value     any
	insertAt  time.Time
	expiresAt time.Time
}

// resultCacheStore provides a session-scoped cache for bundle and inventory
// results. Entries have per-input-type TTLs and a background sweeper removes
// expired entries.
type resultCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var resultCache = &resultCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached value or nil. Expired entries are lazily removed.
func (c *resultCacheStore) get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.value
	}
	return nil
}

// putWithTTL stores a value with a specific TTL, evicting the least recently
// used entry if at capacity.
func (c *resultCacheStore) putWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{value: value, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *resultCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes
// expired entries. Only the first call spawns a sweeper; it stops when ctx
// is cancelled.
func (c *resultCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *resultCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *resultCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cached returns the value stored under key, or builds and stores it.
// Errors are never cached. An empty key disables caching.
func cached[T any](key string, ttl time.Duration, build func() (T, error)) (T, error) {
	if key != "" {
		if v, ok := resultCache.get(key).(T); ok {
			return v, nil
		}
	}
	v, err := build()
	if err != nil {
		return v, err
	}
	if key != "" {
		resultCache.putWithTTL(key, v, ttl)
	}
	return v, nil
}

// validate checks that exactly one source is set and that inline content
// fits the configured limit.
func (s specInput) validate() error {
	if err := options.ValidateSingleInputSource(
		"exactly one of file, url, or content must be provided (got 0)",
		fmt.Sprintf("exactly one of file, url, or content must be provided (got %d)",
			options.CountSet(s.File != "", s.URL != "", s.Content != "")),
		s.File != "", s.URL != "", s.Content != "",
	); err != nil {
		return err
	}
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASBUNDLE_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}
	return nil
}

// cacheKey identifies the input for the result cache. File inputs are keyed
// by absolute path and modification time, content inputs by a SHA-256 hash
// and their base location, URL inputs by the URL. It returns "" when caching
// is disabled or the input cannot be keyed.
func (s specInput) cacheKey() string {
	if !cfg.CacheEnabled {
		return ""
	}
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s:%s", hex.EncodeToString(h[:]), s.BaseLocation)
	case s.URL != "":
		return "url:" + s.URL
	default:
		return ""
	}
}

// ttl returns how long results of this input stay cached.
func (s specInput) ttl() time.Duration {
	switch {
	case s.File != "":
		return cfg.CacheFileTTL
	case s.URL != "":
		return cfg.CacheURLTTL
	default:
		return cfg.CacheContentTTL
	}
}

// options returns the bundler options selecting this input.
func (s specInput) options() []bundler.Option {
	switch {
	case s.File != "":
		return []bundler.Option{bundler.WithFilePath(s.File)}
	case s.URL != "":
		return []bundler.Option{bundler.WithFilePath(s.URL)}
	default:
		opts := []bundler.Option{bundler.WithBytes([]byte(s.Content))}
		if s.BaseLocation != "" {
			opts = append(opts, bundler.WithBaseLocation(s.BaseLocation))
		}
		return opts
	}
}

// bundle bundles the input, reusing a cached result when possible.
func (s specInput) bundle(ctx context.Context, failFast bool) (*bundler.Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	key := s.cacheKey()
	if key != "" {
		key = "bundle:" + key
	}
	return cached(key, s.ttl(), func() (*bundler.Result, error) {
		opts := append(s.options(), resolveOptions()...)
		opts = append(opts, bundler.WithContext(ctx), bundler.WithFailFast(failFast))
		return bundler.BundleWithOptions(opts...)
	})
}

// inventory builds the reference inventory of the input, reusing a cached
// result when possible.
func (s specInput) inventory(ctx context.Context) (*bundler.InventoryResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	key := s.cacheKey()
	if key != "" {
		key = "refs:" + key
	}
	return cached(key, s.ttl(), func() (*bundler.InventoryResult, error) {
		opts := append(s.options(), resolveOptions()...)
		opts = append(opts, bundler.WithContext(ctx))
		return bundler.InventoryWithOptions(opts...)
	})
}

// resolveOptions returns the options every tool shares: the HTTP policy,
// the read confinement and the logger.
func resolveOptions() []bundler.Option {
	opts := []bundler.Option{
		bundler.WithResolveHTTPRefs(cfg.ResolveHTTPRefs),
		bundler.WithConcurrency(cfg.Concurrency),
		bundler.WithLogger(parser.NewSlogAdapter(slog.Default())),
	}
	if cfg.BaseDir != "" {
		opts = append(opts, bundler.WithBaseDir(cfg.BaseDir))
	}
	// SSRF-safe client unless private addresses are explicitly allowed.
	if !cfg.AllowPrivateIPs {
		opts = append(opts, bundler.WithHTTPClient(newSafeHTTPClient()))
	}
	return opts
}
