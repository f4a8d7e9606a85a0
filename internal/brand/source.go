package brand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrStyleNotFound is returned by a Source that has no style document stored.
var ErrStyleNotFound = errors.New("brand: style not found")

// DefaultRedisKey is where the style document lives unless configured otherwise.
const DefaultRedisKey = "config:brand_style"

// Source loads the current brand style from wherever operators edit it.
type Source interface {
	Fetch(ctx context.Context) (*Style, error)
}

// StaticSource always returns the same style. Useful for local runs without Redis.
type StaticSource struct {
	Style Style
}

func (s StaticSource) Fetch(context.Context) (*Style, error) {
	style := s.Style
	return &style, nil
}

// RedisSource reads a JSON style document from a single Redis key.
type RedisSource struct {
	redis  *redis.Client
	key    string
	tracer trace.Tracer
}

func NewRedisSource(client *redis.Client, key string, tracer trace.Tracer) *RedisSource {
	if client == nil {
		panic("brand: redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	if tracer == nil {
		tracer = otel.Tracer("salonbot.internal.brand")
	}
	return &RedisSource{redis: client, key: key, tracer: tracer}
}

func (s *RedisSource) Fetch(ctx context.Context) (*Style, error) {
	ctx, span := s.tracer.Start(ctx, "brand.fetch_style")
	defer span.End()

	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStyleNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("brand: failed to load style: %w", err)
	}
	var style Style
	if err := json.Unmarshal(data, &style); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("brand: failed to decode style: %w", err)
	}
	return &style, nil
}

// Save stores a style document. Operators and tests use it to seed the key.
func (s *RedisSource) Save(ctx context.Context, style Style) error {
	ctx, span := s.tracer.Start(ctx, "brand.save_style")
	defer span.End()

	data, err := json.Marshal(style)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("brand: failed to marshal style: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("brand: failed to persist style: %w", err)
	}
	return nil
}
