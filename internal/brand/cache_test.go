package brand

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

type scriptedSource struct {
	mu     sync.Mutex
	styles []*Style
	errs   []error
	calls  int
}

func (s *scriptedSource) Fetch(context.Context) (*Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	var style *Style
	var err error
	if idx < len(s.styles) {
		style = s.styles[idx]
	}
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	return style, err
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCache(src Source, clock *fakeClock) *Cache {
	return NewCache(src, WithClock(clock.Now), WithLogger(logging.Discard()))
}

func TestCacheServesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	src := &scriptedSource{styles: []*Style{{BrandName: "First"}, {BrandName: "Second"}}}
	cache := newTestCache(src, clock)

	assert.Equal(t, "First", cache.Get(context.Background()).BrandName)
	clock.now = clock.now.Add(59 * time.Second)
	assert.Equal(t, "First", cache.Get(context.Background()).BrandName)
	assert.Equal(t, 1, src.calls)

	clock.now = clock.now.Add(2 * time.Second)
	assert.Equal(t, "Second", cache.Get(context.Background()).BrandName)
	assert.Equal(t, 2, src.calls)
}

func TestCacheMergesDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &scriptedSource{styles: []*Style{{BrandName: "Blossoms", CallToActions: []string{" ", "¡Agenda ya!"}}}}
	style := newTestCache(src, clock).Get(context.Background())

	def := DefaultStyle()
	assert.Equal(t, "Blossoms", style.BrandName)
	assert.Equal(t, []string{"¡Agenda ya!"}, style.CallToActions)
	assert.Equal(t, def.AllowedEmojis, style.AllowedEmojis)
	assert.Equal(t, def.MaxChars, style.MaxChars)
	assert.Equal(t, def.Locale, style.Locale)
}

func TestCacheFallsBackToCachedCopyOnError(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &scriptedSource{
		styles: []*Style{{BrandName: "Cached"}},
		errs:   []error{nil, errors.New("connection refused")},
	}
	cache := newTestCache(src, clock)
	require.Equal(t, "Cached", cache.Get(context.Background()).BrandName)

	clock.now = clock.now.Add(2 * time.Minute)
	assert.Equal(t, "Cached", cache.Get(context.Background()).BrandName)
	assert.Equal(t, 2, src.calls)
}

func TestCacheUsesDefaultsWithoutCachedCopy(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &scriptedSource{errs: []error{errors.New("timeout")}}
	style := newTestCache(src, clock).Get(context.Background())
	assert.Equal(t, DefaultStyle(), style)
}

func TestCacheNotFoundUsesDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &scriptedSource{errs: []error{ErrStyleNotFound}}
	cache := newTestCache(src, clock)
	assert.Equal(t, DefaultStyle(), cache.Get(context.Background()))
	// defaults are cached for the TTL like a real document
	cache.Get(context.Background())
	assert.Equal(t, 1, src.calls)
}

func TestCacheRefreshForcesFetch(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &scriptedSource{styles: []*Style{{BrandName: "A"}, {BrandName: "B"}}}
	cache := newTestCache(src, clock)
	cache.Get(context.Background())
	assert.Equal(t, "B", cache.Refresh(context.Background()).BrandName)
}

func TestNilSourceAndNilCache(t *testing.T) {
	assert.Equal(t, DefaultStyle(), NewCache(nil).Get(context.Background()))
	var cache *Cache
	assert.Equal(t, DefaultStyle(), cache.Get(context.Background()))
}

func TestCacheConcurrentGet(t *testing.T) {
	src := &scriptedSource{styles: []*Style{{BrandName: "A"}}}
	cache := NewCache(src, WithTTL(time.Hour), WithLogger(logging.Discard()))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Get(context.Background())
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, src.calls, 1)
}
