package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

const payload = `{"entry":[{"changes":[{"field":"messages","value":{"messages":[{"from":"5213312345678","id":"wamid.1","type":"text","text":{"body":"hola"}}]}}]}]}`

type memorySink struct {
	mu   sync.Mutex
	jobs []conversation.InboundJob
}

func (s *memorySink) Enqueue(_ context.Context, job conversation.InboundJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func newHandler(secret string) (*whatsapp.WebhookHandler, *memorySink) {
	sink := &memorySink{}
	return whatsapp.NewWebhookHandler("verify-me", secret, sink, whatsapp.NewMemoryDeduper(0), logging.Discard()), sink
}

func request(method, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: method, Path: path},
		},
	}
}

func TestHandleHealth(t *testing.T) {
	wh, _ := newHandler("")
	resp, err := handle(context.Background(), wh, logging.Discard(), request(http.MethodGet, "/health"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body)
}

func TestHandleUnknownPathAndMethod(t *testing.T) {
	wh, _ := newHandler("")

	resp, err := handle(context.Background(), wh, logging.Discard(), request(http.MethodPost, "/webhooks/unknown"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = handle(context.Background(), wh, logging.Discard(), request(http.MethodPut, "/webhooks/whatsapp"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleVerification(t *testing.T) {
	wh, _ := newHandler("")
	evt := request(http.MethodGet, "/webhooks/whatsapp/")
	evt.QueryStringParameters = map[string]string{"hub.mode": "subscribe", "hub.verify_token": "verify-me", "hub.challenge": "777"}

	resp, err := handle(context.Background(), wh, logging.Discard(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "777", resp.Body)

	evt.QueryStringParameters["hub.verify_token"] = "nope"
	resp, err = handle(context.Background(), wh, logging.Discard(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandleInboundSigned(t *testing.T) {
	wh, sink := newHandler("app-secret")
	evt := request(http.MethodPost, "/webhooks/whatsapp")
	evt.Body = base64.StdEncoding.EncodeToString([]byte(payload))
	evt.IsBase64Encoded = true
	evt.Headers = map[string]string{"x-hub-signature-256": whatsapp.Sign("app-secret", []byte(payload))}

	resp, err := handle(context.Background(), wh, logging.Discard(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, "hola", sink.jobs[0].Text)
}

func TestHandleInboundRejectsBadInput(t *testing.T) {
	wh, sink := newHandler("app-secret")

	evt := request(http.MethodPost, "/webhooks/whatsapp")
	evt.Body = payload
	evt.Headers = map[string]string{"X-Hub-Signature-256": "sha256=00"}
	resp, err := handle(context.Background(), wh, logging.Discard(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	evt.Body = "%%%"
	evt.IsBase64Encoded = true
	resp, err = handle(context.Background(), wh, logging.Discard(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, sink.jobs)
}
