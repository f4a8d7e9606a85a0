package whatsapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDedupeTTL covers Meta's retry window.
const DefaultDedupeTTL = 24 * time.Hour

// Deduper remembers which WhatsApp message ids were already accepted.
type Deduper interface {
	// FirstDelivery records messageID and reports whether it was new.
	FirstDelivery(ctx context.Context, messageID string) (bool, error)
}

// RedisDeduper claims message ids with SET NX.
type RedisDeduper struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	tracer trace.Tracer
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if client == nil {
		panic("whatsapp: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &RedisDeduper{
		redis:  client,
		ttl:    ttl,
		prefix: "whatsapp:msg:",
		tracer: otel.Tracer("salonbot.internal.channels.whatsapp"),
	}
}

func (d *RedisDeduper) FirstDelivery(ctx context.Context, messageID string) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "whatsapp.dedupe")
	defer span.End()

	ok, err := d.redis.SetNX(ctx, d.prefix+messageID, time.Now().UTC().Unix(), d.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("whatsapp: dedupe %s: %w", messageID, err)
	}
	return ok, nil
}

// MemoryDeduper keeps ids in process memory.
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &MemoryDeduper{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDeduper) FirstDelivery(_ context.Context, messageID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.seen {
		if now.After(expires) {
			delete(d.seen, id)
		}
	}
	if _, ok := d.seen[messageID]; ok {
		return false, nil
	}
	d.seen[messageID] = now.Add(d.ttl)
	return true, nil
}
