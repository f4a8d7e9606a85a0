package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-bot/internal/brand"
	"github.com/wolfman30/salon-bot/internal/catalog"
	"github.com/wolfman30/salon-bot/internal/chatlog"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/internal/llm"
	"github.com/wolfman30/salon-bot/internal/observability/metrics"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// PipelineDeps are the already-built collaborators of the reply pipeline. Every
// field is optional.
type PipelineDeps struct {
	AWS       *aws.Config
	Redis     *redis.Client
	ChatLog   chatlog.Logger
	Deliverer conversation.Deliverer
	Notifier  conversation.OperatorNotifier
	Metrics   *metrics.PipelineMetrics
	Logger    *logging.Logger
}

// Pipeline is a ready Dispatcher plus the resources it owns.
type Pipeline struct {
	Dispatcher *conversation.Dispatcher
	LLM        *llm.Client
	Brand      *brand.Cache
}

// Close releases the model connections.
func (p *Pipeline) Close() error {
	if p == nil || p.LLM == nil {
		return nil
	}
	return p.LLM.Close()
}

// BuildPipeline wires the model transport, brand style, catalog and reply policy
// into a Dispatcher.
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, deps PipelineDeps) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	menu := catalog.Default()
	if err := menu.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: service catalog: %w", err)
	}

	var observer llm.LatencyObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	client, err := llm.New(ctx, llmConfig(cfg), llm.Deps{AWS: deps.AWS, Logger: logger, Observer: observer})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: llm transport: %w", err)
	}

	var source brand.Source = brand.StaticSource{Style: brand.DefaultStyle()}
	if deps.Redis != nil {
		source = brand.NewRedisSource(deps.Redis, cfg.BrandStyleKey, nil)
	}
	styles := brand.NewCache(source, brand.WithTTL(cfg.BrandStyleTTL), brand.WithLogger(logger))

	location, err := time.LoadLocation(cfg.StudioTimezone)
	if err != nil {
		logger.Warn("unknown studio timezone, using UTC", "timezone", cfg.StudioTimezone, "error", err)
		location = time.UTC
	}

	studio := conversation.Studio{Name: cfg.StudioName, MapURL: cfg.StudioMapURL}
	dispatcherCfg := conversation.DispatcherConfig{
		UseVariants:             cfg.UseVariants,
		UseCannedGreetings:      cfg.UseCannedGreetings,
		StrictServiceValidation: cfg.StrictServiceValidation,
		VariantPick:             cfg.VariantPick,
		RawExtractionPrompt:     client.Tuned(),
		Studio:                  studio,
		Location:                location,
	}

	opts := []conversation.DispatcherOption{
		conversation.WithLogger(logger),
		conversation.WithEventLogger(conversation.NewEventLogger(logger)),
	}
	if cfg.UseVariants {
		opts = append(opts, conversation.WithSynthesizer(conversation.NewSynthesizer(client, styles, menu, studio, logger)))
	}
	if deps.ChatLog != nil {
		opts = append(opts, conversation.WithChatLogger(deps.ChatLog))
	}
	if deps.Deliverer != nil {
		opts = append(opts, conversation.WithDeliverer(deps.Deliverer))
	}
	if deps.Notifier != nil {
		opts = append(opts, conversation.WithNotifier(deps.Notifier))
	}
	if deps.Metrics != nil {
		opts = append(opts, conversation.WithObserver(deps.Metrics))
	}

	logger.Info("reply pipeline ready",
		"provider", client.Provider(),
		"tuned", client.Tuned(),
		"variants", cfg.UseVariants,
		"variant_pick", cfg.VariantPick,
		"timezone", location.String(),
	)
	return &Pipeline{
		Dispatcher: conversation.NewDispatcher(client, menu, dispatcherCfg, opts...),
		LLM:        client,
		Brand:      styles,
	}, nil
}

func llmConfig(cfg *appconfig.Config) llm.Config {
	return llm.Config{
		Provider:         cfg.LLMProvider,
		FallbackProvider: cfg.LLMFallbackProvider,
		Timeout:          cfg.LLMTimeout,
		Temperature:      float32(cfg.LLMTemperature),
		MaxTokens:        int32(cfg.LLMMaxTokens),
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiModel:      cfg.GeminiBaseModel,
		TunedModelName:   cfg.TunedModelName,
		VertexLocation:   cfg.VertexLocation,
		BedrockModelID:   cfg.BedrockModelID,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIModel:      cfg.OpenAIModel,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		BreakerEnabled:   cfg.LLMBreakerEnabled,
		BreakerFailures:  uint32(max(cfg.LLMBreakerFailures, 0)),
		BreakerCooldown:  cfg.LLMBreakerCooldown,
	}
}
