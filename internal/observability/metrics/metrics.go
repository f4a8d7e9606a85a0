package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/internal/llm"
)

const namespace = "salonbot"

var (
	_ conversation.PipelineObserver = (*PipelineMetrics)(nil)
	_ llm.LatencyObserver           = (*PipelineMetrics)(nil)
)

// PipelineMetrics exposes counters and histograms for the reply pipeline, the model
// transport and the WhatsApp webhook.
type PipelineMetrics struct {
	extractions     *prometheus.CounterVec
	variants        *prometheus.CounterVec
	replies         *prometheus.CounterVec
	chatLogFailures *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	webhookMessages *prometheus.CounterVec
	webhookLatency  prometheus.Histogram
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Intent extractions by outcome (parsed, no_json, invalid_json, transport_error)",
		}, []string{"outcome"}),
		variants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "variant_sets_total",
			Help:      "Variant sets by where their texts came from",
		}, []string{"source"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "replies_total",
			Help:      "Replies computed by intent",
		}, []string{"intent"}),
		chatLogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "chat_log_failures_total",
			Help:      "Chat log writes that failed",
		}, []string{"direction"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "deliveries_total",
			Help:      "Reply deliveries by status",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "operator_notifications_total",
			Help:      "Operator notifications by status",
		}, []string{"status"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Model prompts by provider and status",
		}, []string{"provider", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "Model prompt latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 8, 13, 20},
		}, []string{"provider"}),
		webhookMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whatsapp",
			Name:      "inbound_messages_total",
			Help:      "Inbound WhatsApp messages by kind and status",
		}, []string{"kind", "status"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of WhatsApp webhook handling",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.extractions, m.variants, m.replies, m.chatLogFailures, m.deliveries,
		m.notifications, m.llmRequests, m.llmLatency, m.webhookMessages, m.webhookLatency,
	)
	return m
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *PipelineMetrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) ObserveVariants(source string) {
	if m == nil {
		return
	}
	m.variants.WithLabelValues(source).Inc()
}

func (m *PipelineMetrics) ObserveReply(intent string) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(intent).Inc()
}

func (m *PipelineMetrics) ObserveChatLogFailure(direction string) {
	if m == nil {
		return
	}
	m.chatLogFailures.WithLabelValues(direction).Inc()
}

func (m *PipelineMetrics) ObserveDelivery(err error) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(statusLabel(err)).Inc()
}

func (m *PipelineMetrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(statusLabel(err)).Inc()
}

func (m *PipelineMetrics) ObserveLLM(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(provider, statusLabel(err)).Inc()
	m.llmLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) ObserveWebhookMessage(kind, status string) {
	if m == nil {
		return
	}
	m.webhookMessages.WithLabelValues(kind, status).Inc()
}

func (m *PipelineMetrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.Observe(seconds)
}
