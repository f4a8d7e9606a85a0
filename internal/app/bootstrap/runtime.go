package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-bot/internal/chatlog"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildChatLogger selects the chat log backend named by CHATLOG_BACKEND. The
// returned cleanup is never nil.
func BuildChatLogger(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (chatlog.Logger, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.ChatLogBackend {
	case "", "log":
		return chatlog.NewLogStore(logger), noop, nil
	case "none":
		return chatlog.Nop{}, noop, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("bootstrap: postgres chat log requires DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		logger.Info("chat log backend ready", "backend", "postgres")
		return chatlog.NewPostgresStore(pool), pool.Close, nil
	case "dynamodb":
		if awsCfg == nil {
			return nil, noop, fmt.Errorf("bootstrap: dynamodb chat log requires aws config")
		}
		logger.Info("chat log backend ready", "backend", "dynamodb", "table", cfg.ChatLogTable)
		return chatlog.NewDynamoStore(dynamodb.NewFromConfig(*awsCfg), cfg.ChatLogTable), noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown chat log backend %q", cfg.ChatLogBackend)
	}
}
