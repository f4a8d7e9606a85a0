package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-bot/cmd/mainconfig"
	"github.com/wolfman30/salon-bot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/internal/observability/metrics"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.ConversationQueueURL == "" {
		logger.Error("CONVERSATION_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(reg)
	go serveMetrics(cfg.Port, reg, logger)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	chatLog, closeChatLog, err := bootstrap.BuildChatLogger(ctx, cfg, &awsConfig, logger)
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
		AWS:       &awsConfig,
		Redis:     redisClient,
		ChatLog:   chatLog,
		Deliverer: deliverer,
		Notifier:  bootstrap.BuildOperatorNotifier(cfg, deliverer, &awsConfig, logger),
		Metrics:   pipelineMetrics,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to build reply pipeline", "error", err)
		os.Exit(1)
	}
	defer func() { _ = pipeline.Close() }()

	queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsConfig), cfg.ConversationQueueURL)
	worker := conversation.NewWorker(
		pipeline.Dispatcher,
		queue,
		logger,
		conversation.WithWorkerCount(max(cfg.WorkerCount, 1)),
		conversation.WithJobTimeout(cfg.LLMTimeout*4),
	)

	worker.Start(ctx)
	logger.Info("conversation worker started", "workers", max(cfg.WorkerCount, 1))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down conversation worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("conversation worker stopped")
	case <-doneCtx.Done():
		logger.Error("conversation worker shutdown timed out", "error", doneCtx.Err())
	}
}

func serveMetrics(port string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics server stopped", "error", err)
	}
}
