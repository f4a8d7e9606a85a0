package brand

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// DefaultTTL is how long a fetched style is served before the source is asked again.
const DefaultTTL = 60 * time.Second

type cacheEntry struct {
	style     Style
	fetchedAt time.Time
}

// Cache serves the brand style from memory and refetches lazily once the TTL expires.
// Entries are replaced wholesale; concurrent expiry may fetch more than once.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
	entry  atomic.Pointer[cacheEntry]
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *logging.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache wraps source. A nil source always yields DefaultStyle.
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source: source,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current style. It never fails: on a source error the last cached
// style is served, and without one the defaults are.
func (c *Cache) Get(ctx context.Context) Style {
	if c == nil {
		return DefaultStyle()
	}
	now := c.now()
	if entry := c.entry.Load(); entry != nil && now.Sub(entry.fetchedAt) < c.ttl {
		return entry.style
	}
	return c.load(ctx, now)
}

// Refresh drops the cached style and fetches again.
func (c *Cache) Refresh(ctx context.Context) Style {
	if c == nil {
		return DefaultStyle()
	}
	c.entry.Store(nil)
	return c.load(ctx, c.now())
}

func (c *Cache) load(ctx context.Context, now time.Time) Style {
	if c.source == nil {
		return c.store(DefaultStyle(), now)
	}
	style, err := c.source.Fetch(ctx)
	switch {
	case err == nil && style != nil:
		return c.store(style.WithDefaults(), now)
	case err == nil || errors.Is(err, ErrStyleNotFound):
		c.logger.Warn("brand style not found, using defaults")
		return c.store(DefaultStyle(), now)
	}

	if entry := c.entry.Load(); entry != nil {
		c.logger.Warn("brand style fetch failed, serving cached copy", "error", err)
		return entry.style
	}
	c.logger.Warn("brand style fetch failed, using defaults", "error", err)
	return c.store(DefaultStyle(), now)
}

func (c *Cache) store(style Style, now time.Time) Style {
	c.entry.Store(&cacheEntry{style: style, fetchedAt: now})
	return style
}
