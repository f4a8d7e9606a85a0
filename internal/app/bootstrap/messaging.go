package bootstrap

import (
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// BuildWhatsAppAdapter returns the Cloud API deliverer, or nil with a reason when
// credentials are missing.
func BuildWhatsAppAdapter(cfg *appconfig.Config, logger *logging.Logger) (*whatsapp.Adapter, string) {
	if cfg == nil {
		return nil, "missing config"
	}
	if strings.TrimSpace(cfg.WhatsAppToken) == "" || strings.TrimSpace(cfg.WhatsAppPhoneNumberID) == "" {
		return nil, "WHATSAPP_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set"
	}
	client := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID)
	if base := strings.TrimSpace(cfg.WhatsAppGraphBaseURL); base != "" {
		client.SetGraphAPIBase(base)
	}
	return whatsapp.NewAdapter(client, logger), ""
}

// BuildDeduper prefers Redis so every replica shares one view of seen message IDs.
func BuildDeduper(redisClient *redis.Client) whatsapp.Deduper {
	if redisClient == nil {
		return whatsapp.NewMemoryDeduper(0)
	}
	return whatsapp.NewRedisDeduper(redisClient, 0)
}
