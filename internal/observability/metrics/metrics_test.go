package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveExtraction("parsed")
	m.ObserveExtraction("parsed")
	m.ObserveExtraction("no_json")
	m.ObserveVariants("model")
	m.ObserveReply("book_appointment")
	m.ObserveChatLogFailure("inbound")
	m.ObserveDelivery(nil)
	m.ObserveDelivery(errors.New("down"))
	m.ObserveNotification(nil)
	m.ObserveLLM("gemini", 1500*time.Millisecond, nil)
	m.ObserveWebhookMessage("text", "accepted")
	m.ObserveWebhookLatency(0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.extractions.WithLabelValues("parsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("gemini", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookMessages.WithLabelValues("text", "accepted")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.llmLatency))
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveExtraction("parsed")
	m.ObserveVariants("model")
	m.ObserveReply("greeting")
	m.ObserveChatLogFailure("outbound")
	m.ObserveDelivery(nil)
	m.ObserveNotification(nil)
	m.ObserveLLM("bedrock", time.Second, nil)
	m.ObserveWebhookMessage("media", "duplicate")
	m.ObserveWebhookLatency(0.1)
}

func TestSummarize(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveReply("faq_price")
	m.ObserveReply("faq_price")
	m.ObserveReply("greeting")
	m.ObserveExtraction("transport_error")
	m.ObserveVariants("fallback")
	m.ObserveLLM("gemini", time.Second, nil)
	m.ObserveLLM("gemini", 3*time.Second, errors.New("timeout"))
	m.ObserveDelivery(nil)

	s, err := Summarize(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Replies["faq_price"])
	assert.Equal(t, 1.0, s.Replies["greeting"])
	assert.Equal(t, 1.0, s.Extractions["transport_error"])
	assert.Equal(t, 1.0, s.VariantSets["fallback"])
	assert.Equal(t, 2.0, s.LLMRequests)
	assert.Equal(t, 1.0, s.LLMErrors)
	assert.InDelta(t, 2.0, s.LLMMeanSecs, 1e-9)
	assert.Equal(t, 1.0, s.Deliveries)
	assert.Equal(t, 0.0, s.DeliveryErrs)
}

func TestSummarizeEmptyRegistry(t *testing.T) {
	s, err := Summarize(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, s.Replies)
	assert.Zero(t, s.LLMMeanSecs)
}
