package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	"github.com/wolfman30/salon-bot/internal/chatlog"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), true)
	require.NotNil(t, client)
	_ = client.Close()

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), true))
}

func TestBuildChatLogger(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	l, cleanup, err := BuildChatLogger(ctx, &appconfig.Config{ChatLogBackend: "log"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &chatlog.LogStore{}, l)
	cleanup()

	l, _, err = BuildChatLogger(ctx, &appconfig.Config{ChatLogBackend: "none"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, chatlog.Nop{}, l)

	l, _, err = BuildChatLogger(ctx, &appconfig.Config{ChatLogBackend: "dynamodb", ChatLogTable: "chats"}, &aws.Config{Region: "us-east-1"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &chatlog.DynamoStore{}, l)
}

func TestBuildChatLoggerErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*appconfig.Config{
		"nil config":      nil,
		"postgres no url": {ChatLogBackend: "postgres"},
		"dynamodb no aws": {ChatLogBackend: "dynamodb"},
		"unknown backend": {ChatLogBackend: "sqlite"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, cleanup, err := BuildChatLogger(ctx, cfg, nil, logging.Discard())
			assert.Error(t, err)
			assert.NotNil(t, cleanup)
		})
	}
}

func TestBuildWhatsAppAdapter(t *testing.T) {
	adapter, reason := BuildWhatsAppAdapter(&appconfig.Config{}, logging.Discard())
	assert.Nil(t, adapter)
	assert.NotEmpty(t, reason)

	adapter, reason = BuildWhatsAppAdapter(&appconfig.Config{WhatsAppToken: "t", WhatsAppPhoneNumberID: "123"}, logging.Discard())
	assert.NotNil(t, adapter)
	assert.Empty(t, reason)
}

func TestBuildDeduper(t *testing.T) {
	assert.IsType(t, &whatsapp.MemoryDeduper{}, BuildDeduper(nil))

	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	client := BuildRedisClient(context.Background(), cfg, logging.Discard(), false)
	defer client.Close()
	assert.IsType(t, &whatsapp.RedisDeduper{}, BuildDeduper(client))
}
