package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

// ErrCacheWrite wraps failures of the backing store on insertion.
var ErrCacheWrite = errors.New("cache write failed")

// CacheConfig holds the cache thresholds. Lengths count characters (runes).
type CacheConfig struct {
	Capacity  int `yaml:"capacity" env:"CACHE_CAPACITY" validate:"min=1"`
	MinLength int `yaml:"min_length" env:"CACHE_MIN_LENGTH" validate:"min=0"`
	KeyLength int `yaml:"key_length" env:"CACHE_KEY_LENGTH" validate:"min=1"`
}

// DefaultCacheConfig returns a capacity of 200 entries, a 40 character minimum
// and a 400 character key prefix.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Capacity: 200, MinLength: 40, KeyLength: 400}
}

// TextSummarizer is what the cache delegates to on a miss. ok=false marks a
// degraded result that must not be cached.
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (summary string, ok bool)
}

// Store holds cache entries. Implementations need not be goroutine safe; the
// Cache serializes access.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Len() int
	Clear()
}

type memoryStore struct {
	m map[string]string
}

// NewMemoryStore returns an in-process map store.
func NewMemoryStore() Store {
	return &memoryStore{m: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *memoryStore) Set(key, value string) error {
	s.m[key] = value
	return nil
}

func (s *memoryStore) Len() int { return len(s.m) }

func (s *memoryStore) Clear() { clear(s.m) }

// Cache maps a prefix of the article text to a computed summary.
//
// Keys are the first KeyLength characters of the text, so two texts that only
// differ after the prefix share an entry. When the cache holds more than
// Capacity entries the next insertion wipes it entirely before storing.
// Concurrent misses on one key are coalesced into a single provider call.
type Cache struct {
	cfg        CacheConfig
	summarizer TextSummarizer
	store      Store
	logger     *slog.Logger

	mu    sync.Mutex
	group singleflight.Group

	hits          atomic.Int64
	misses        atomic.Int64
	evictions     atomic.Int64
	writeFailures atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore replaces the default memory store.
func WithStore(s Store) CacheOption {
	return func(c *Cache) { c.store = s }
}

// WithCacheLogger sets the logger used for evictions and write failures.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates an empty cache in front of s. Non-positive config fields
// take the defaults.
func NewCache(s TextSummarizer, cfg CacheConfig, opts ...CacheOption) *Cache {
	def := DefaultCacheConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.KeyLength <= 0 {
		cfg.KeyLength = def.KeyLength
	}
	c := &Cache{
		cfg:        cfg,
		summarizer: s,
		store:      NewMemoryStore(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the cache key of text: its first n characters.
func Key(text string, n int) string {
	if len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

type flightResult struct {
	summary string
	ok      bool
}

// Get returns the summary of text. Empty text and text shorter than MinLength
// are returned unchanged without touching the cache. A hit never calls the
// provider; a miss summarizes the full text and stores the result under the
// prefix key unless the result is degraded. Once ctx is done a miss returns
// text without starting a provider call.
func (c *Cache) Get(ctx context.Context, text string) string {
	if text == "" {
		return text
	}
	if utf8.RuneCountInString(text) < c.cfg.MinLength {
		return text
	}

	key := Key(text, c.cfg.KeyLength)
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)

	// Flights outlive their caller; a done caller never starts one.
	if ctx.Err() != nil {
		return text
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A flight for this key may have completed between lookup and DoChan.
		if v, ok := c.lookup(key); ok {
			return flightResult{summary: v, ok: true}, nil
		}
		// Detached so one caller going away does not degrade the others.
		summary, ok := c.summarizer.Summarize(context.WithoutCancel(ctx), text)
		if ok {
			c.insert(key, summary)
		}
		return flightResult{summary: summary, ok: ok}, nil
	})

	select {
	case res := <-ch:
		r := res.Val.(flightResult)
		if !r.ok && res.Shared {
			// A degraded result carries the leader's text, not ours.
			return text
		}
		return r.summary
	case <-ctx.Done():
		return text
	}
}

func (c *Cache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(key)
}

func (c *Cache) insert(key, summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.store.Len(); n > c.cfg.Capacity {
		c.store.Clear()
		c.evictions.Add(1)
		c.logger.Info("summary cache over capacity, cleared", "entries", n, "capacity", c.cfg.Capacity)
	}

	if err := c.store.Set(key, summary); err != nil {
		c.writeFailures.Add(1)
		c.logger.Warn("summary not cached", "error", fmt.Errorf("%w: %w", ErrCacheWrite, err))
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// CacheStats reports cache counters.
type CacheStats struct {
	Entries       int   `json:"entries"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Evictions     int64 `json:"evictions"`
	WriteFailures int64 `json:"writeFailures"`
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:       c.Len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		WriteFailures: c.writeFailures.Load(),
	}
}
