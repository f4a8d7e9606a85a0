package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-bot/cmd/mainconfig"
	"github.com/wolfman30/salon-bot/internal/api/router"
	"github.com/wolfman30/salon-bot/internal/app/bootstrap"
	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-bot/internal/http/middleware"
	"github.com/wolfman30/salon-bot/internal/observability/metrics"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-bot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsHandler, pipelineMetrics, gatherer := setupMetrics()

	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	chatLog, closeChatLog, err := bootstrap.BuildChatLogger(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to set up chat log", "error", err)
		os.Exit(1)
	}
	defer closeChatLog()

	var deliverer conversation.Deliverer
	if adapter, reason := bootstrap.BuildWhatsAppAdapter(cfg, logger); adapter != nil {
		deliverer = adapter
	} else {
		logger.Warn("whatsapp delivery disabled", "reason", reason)
	}

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.PipelineDeps{
		AWS:       awsCfg,
		Redis:     redisClient,
		ChatLog:   chatLog,
		Deliverer: deliverer,
		Notifier:  bootstrap.BuildOperatorNotifier(cfg, deliverer, awsCfg, logger),
		Metrics:   pipelineMetrics,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to build reply pipeline", "error", err)
		os.Exit(1)
	}
	defer func() { _ = pipeline.Close() }()

	sink, stopSink, err := setupSink(ctx, cfg, awsCfg, pipeline.Dispatcher, logger)
	if err != nil {
		logger.Error("failed to set up message queue", "error", err)
		os.Exit(1)
	}

	webhook := whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, sink, bootstrap.BuildDeduper(redisClient), logger)
	webhook.SetObserver(pipelineMetrics)

	routerCfg := &router.Config{
		Logger:          logger,
		WhatsAppWebhook: webhook,
		MetricsHandler:  metricsHandler,
	}
	if !cfg.IsProduction() {
		routerCfg.DevHandler = handlers.NewDevHandler(pipeline.Dispatcher, gatherer, logger)
		routerCfg.DevAuthSecret = cfg.DevAuthSecret
		routerCfg.DevRateLimiter = httpmiddleware.NewRateLimiter(cfg.DevRateLimitRPS, cfg.DevRateLimitBurst)
		routerCfg.CORSAllowedOrigins = cfg.CORSAllowedOrigins
		logger.Info("development endpoints enabled", "auth", cfg.DevAuthSecret != "")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	cancel()
	stopSink(shutdownCtx)
	logger.Info("server stopped")
}

// setupMetrics registers the pipeline metrics and the Go runtime collectors on a
// private registry.
func setupMetrics() (http.Handler, *metrics.PipelineMetrics, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPipelineMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m, reg
}

type replier interface {
	Handle(ctx context.Context, phone, text string) (string, error)
	HandleMedia(ctx context.Context, phone, mediaType string) (string, error)
}

// setupSink decides where webhook jobs go:
//   - SQS, for the conversation-worker binary, when the memory queue is off
//   - an in-process MemoryQueue drained by an inline worker
//   - straight to the pipeline when WORKER_COUNT is 0
//
// The returned stop function waits for in-flight replies.
func setupSink(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, handler replier, logger *logging.Logger) (conversation.JobSink, func(context.Context), error) {
	if !cfg.UseMemoryQueue {
		if awsCfg == nil || cfg.ConversationQueueURL == "" {
			return nil, nil, errors.New("sqs queue requires aws config and CONVERSATION_QUEUE_URL")
		}
		queue := conversation.NewSQSQueue(sqs.NewFromConfig(*awsCfg), cfg.ConversationQueueURL)
		logger.Info("webhook jobs go to sqs", "queue_url", cfg.ConversationQueueURL)
		return conversation.NewPublisher(queue, logger), func(context.Context) {}, nil
	}

	if cfg.WorkerCount <= 0 {
		direct := conversation.NewDirectSink(conversation.NewWorker(handler, nil, logger))
		logger.Info("webhook jobs handled inline")
		return direct, func(stopCtx context.Context) { waitFor(stopCtx, direct.Wait, logger) }, nil
	}

	queue := conversation.NewMemoryQueue(256)
	worker := conversation.NewWorker(handler, queue, logger, conversation.WithWorkerCount(cfg.WorkerCount))
	worker.Start(ctx)
	logger.Info("webhook jobs go to the in-memory queue", "workers", cfg.WorkerCount)
	return conversation.NewPublisher(queue, logger), func(stopCtx context.Context) { waitFor(stopCtx, worker.Wait, logger) }, nil
}

func waitFor(ctx context.Context, wait func(), logger *logging.Logger) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Error("timed out waiting for in-flight replies", "error", ctx.Err())
	}
}
