package main

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/salon-bot/cmd/mainconfig"
	"github.com/wolfman30/salon-bot/internal/app/bootstrap"
	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

const webhookPath = "/webhooks/whatsapp"

// webhook is the part of whatsapp.WebhookHandler the function needs.
type webhook interface {
	Challenge(mode, token, challenge string) (string, bool)
	Decode(body []byte, signature string) (whatsapp.WebhookEvent, error)
	Dispatch(ctx context.Context, event whatsapp.WebhookEvent) int
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if strings.TrimSpace(cfg.ConversationQueueURL) == "" {
		logger.Error("CONVERSATION_QUEUE_URL is required")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ConversationQueueURL)
	publisher := conversation.NewPublisher(queue, logger)

	redisClient := bootstrap.BuildRedisClient(context.Background(), cfg, logger, true)
	wh := whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, publisher, bootstrap.BuildDeduper(redisClient), logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, wh, logger, evt)
	})
}

func handle(ctx context.Context, wh webhook, logger *logging.Logger, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	path = strings.TrimRight(path, "/")

	if path == "/health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if path != webhookPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	switch method {
	case http.MethodGet:
		q := evt.QueryStringParameters
		challenge, ok := wh.Challenge(q["hub.mode"], q["hub.verify_token"], q["hub.challenge"])
		if !ok {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusForbidden, Body: "Forbidden"}, nil
		}
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: challenge}, nil
	case http.MethodPost:
	default:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	event, err := wh.Decode(body, headerValue(evt.Headers, whatsapp.SignatureHeader))
	if errors.Is(err, whatsapp.ErrInvalidSignature) {
		logger.Warn("rejected unsigned webhook")
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusUnauthorized}, nil
	}
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid json"}, nil
	}

	accepted := wh.Dispatch(ctx, event)
	logger.Debug("webhook dispatched", "accepted", accepted)
	return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK}, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
