// Package main stores the brand style document in Redis so running bots pick it up
// on their next cache refresh.
//
// Usage:
//
//	REDIS_ADDR=localhost:6379 go run ./scripts/seed-brand-style [style.json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wolfman30/salon-bot/internal/app/bootstrap"
	"github.com/wolfman30/salon-bot/internal/brand"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New("warn")

	style := brand.DefaultStyle()
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Printf("❌ Error reading file: %v\n", err)
			os.Exit(1)
		}
		var custom brand.Style
		if err := json.Unmarshal(data, &custom); err != nil {
			fmt.Printf("❌ Error parsing JSON: %v\n", err)
			os.Exit(1)
		}
		style = custom.WithDefaults()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		fmt.Println("❌ Redis not reachable; set REDIS_ADDR")
		os.Exit(1)
	}
	defer client.Close()

	if err := brand.NewRedisSource(client, cfg.BrandStyleKey, nil).Save(ctx, style); err != nil {
		fmt.Printf("❌ Error saving style: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("🌸 Brand style saved to %s (tone %q, %d CTAs, %d emojis)\n", cfg.BrandStyleKey, style.Tone, len(style.CallToActions), len(style.AllowedEmojis))
}
