package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

const (
	maxWebhookBody = 1 << 20

	// SignatureHeader carries the HMAC of the raw body.
	SignatureHeader = "X-Hub-Signature-256"
)

// ErrInvalidSignature means the body was not signed with the app secret.
var ErrInvalidSignature = errors.New("whatsapp: invalid webhook signature")

var unsupportedTypes = map[string]bool{
	"audio":    true,
	"image":    true,
	"sticker":  true,
	"video":    true,
	"document": true,
}

// WebhookObserver records what happened to each inbound message.
type WebhookObserver interface {
	ObserveWebhookMessage(kind, status string)
	ObserveWebhookLatency(seconds float64)
}

// WebhookHandler handles WhatsApp webhook verification and inbound messages.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	sink        conversation.JobSink
	deduper     Deduper
	observer    WebhookObserver
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler that forwards messages to sink. An
// empty appSecret disables signature checks; deduper may be nil.
func NewWebhookHandler(verifyToken, appSecret string, sink conversation.JobSink, deduper Deduper, logger *logging.Logger) *WebhookHandler {
	if sink == nil {
		panic("whatsapp: job sink cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(appSecret) == "" {
		logger.Warn("whatsapp: app secret not configured, webhook signatures will not be checked")
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   strings.TrimSpace(appSecret),
		sink:        sink,
		deduper:     deduper,
		logger:      logger,
	}
}

// SetObserver attaches metrics to the handler.
func (h *WebhookHandler) SetObserver(observer WebhookObserver) {
	h.observer = observer
}

func (h *WebhookHandler) observe(kind, status string) {
	if h.observer != nil {
		h.observer.ObserveWebhookMessage(kind, status)
	}
}

// HandleVerification answers Meta's GET subscription challenge.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, ok := h.Challenge(q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"))
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, challenge)
}

// Challenge returns the value to echo for a subscription request, or false when
// the mode or token is wrong.
func (h *WebhookHandler) Challenge(mode, token, challenge string) (string, bool) {
	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		return "", false
	}
	return challenge, true
}

// Decode checks the signature (when a secret is configured) and parses body.
func (h *WebhookHandler) Decode(body []byte, signature string) (WebhookEvent, error) {
	var event WebhookEvent
	if h.appSecret != "" && !VerifySignature(h.appSecret, body, signature) {
		return event, ErrInvalidSignature
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("whatsapp: decode webhook: %w", err)
	}
	return event, nil
}

// HandleInbound handles POST webhook events.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.observer != nil {
		defer func() { h.observer.ObserveWebhookLatency(time.Since(start).Seconds()) }()
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	event, err := h.Decode(body, r.Header.Get(SignatureHeader))
	if errors.Is(err, ErrInvalidSignature) {
		h.logger.Warn("whatsapp: invalid webhook signature")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Meta retries anything that is not a fast 200.
	w.WriteHeader(http.StatusOK)

	h.Dispatch(r.Context(), event)
}

// Dispatch forwards every new message in event to the sink and returns how many
// were accepted.
func (h *WebhookHandler) Dispatch(ctx context.Context, event WebhookEvent) int {
	accepted := 0
	for _, msg := range ParseWebhookEvent(event) {
		job := ToJob(msg)
		if !h.firstDelivery(ctx, msg.MessageID) {
			h.logger.Debug("whatsapp: duplicate delivery dropped", "message_id", msg.MessageID)
			h.observe(string(job.Kind), "duplicate")
			continue
		}
		if err := h.sink.Enqueue(ctx, job); err != nil {
			h.logger.Error("whatsapp: failed to enqueue inbound message", "error", err, "message_id", msg.MessageID)
			h.observe(string(job.Kind), "enqueue_error")
			continue
		}
		h.observe(string(job.Kind), "accepted")
		accepted++
	}
	return accepted
}

func (h *WebhookHandler) firstDelivery(ctx context.Context, messageID string) bool {
	if h.deduper == nil || messageID == "" {
		return true
	}
	first, err := h.deduper.FirstDelivery(ctx, messageID)
	if err != nil {
		h.logger.Warn("whatsapp: dedupe check failed, processing anyway", "error", err, "message_id", messageID)
		return true
	}
	return first
}

// ParseWebhookEvent extracts the customer messages from a webhook event. Delivery
// statuses and message types the bot neither reads nor escalates are skipped.
func ParseWebhookEvent(event WebhookEvent) []ParsedInboundMessage {
	var messages []ParsedInboundMessage
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, m := range change.Value.Messages {
				parsed, ok := parseMessage(m)
				if !ok {
					continue
				}
				parsed.ProfileName = names[m.From]
				messages = append(messages, parsed)
			}
		}
	}
	return messages
}

func parseMessage(m Message) (ParsedInboundMessage, bool) {
	parsed := ParsedInboundMessage{
		From:      m.From,
		MessageID: m.ID,
		Type:      m.Type,
		Timestamp: parseUnix(m.Timestamp),
	}
	if strings.TrimSpace(m.From) == "" {
		return parsed, false
	}

	switch {
	case m.Type == "text" && m.Text != nil:
		parsed.Text = m.Text.Body
	case m.Type == "interactive" && m.Interactive != nil:
		switch {
		case m.Interactive.ButtonReply != nil:
			parsed.Text = m.Interactive.ButtonReply.Title
		case m.Interactive.ListReply != nil:
			parsed.Text = m.Interactive.ListReply.Title
		}
	case m.Type == "button" && m.Button != nil:
		parsed.Text = m.Button.Text
	case unsupportedTypes[m.Type]:
		parsed.Unsupported = true
		return parsed, true
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return parsed, false
	}
	return parsed, true
}

func parseUnix(ts string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// ToJob converts a parsed message into a conversation job.
func ToJob(msg ParsedInboundMessage) conversation.InboundJob {
	job := conversation.InboundJob{
		Phone:      msg.From,
		MessageID:  msg.MessageID,
		ReceivedAt: msg.Timestamp,
	}
	if msg.Unsupported {
		job.Kind = conversation.JobKindMedia
		job.MediaType = msg.Type
		return job
	}
	job.Kind = conversation.JobKindText
	job.Text = msg.Text
	return job
}

// VerifySignature checks an X-Hub-Signature-256 header ("sha256=<hex>").
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}
	const prefix = "sha256="
	if !strings.HasPrefix(signature, prefix) || len(signature) == len(prefix) {
		return false
	}
	got, err := hex.DecodeString(signature[len(prefix):])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// Sign returns the X-Hub-Signature-256 value for body. Used by tests and the local
// simulator.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
