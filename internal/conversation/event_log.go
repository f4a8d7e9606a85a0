package conversation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// PipelineEvent is one structured line in the reply pipeline's trail.
type PipelineEvent struct {
	Time  string         `json:"time"`
	Event string         `json:"event"`
	Phone string         `json:"phone"`
	Data  map[string]any `json:"data,omitempty"`
}

// EventLogger emits one JSON line per pipeline step so a conversation can be traced
// with a single grep:
//
//	grep '"event":"intent_extracted"' /var/log/app.log
//	grep '"phone":"5213312345678"' /var/log/app.log
type EventLogger struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewEventLogger(logger *logging.Logger) *EventLogger {
	return &EventLogger{logger: logger, now: time.Now}
}

// Log emits a structured pipeline event.
func (e *EventLogger) Log(_ context.Context, event, phone string, data map[string]any) {
	if e == nil || e.logger == nil {
		return
	}
	evt := PipelineEvent{
		Time:  e.now().UTC().Format(time.RFC3339Nano),
		Event: event,
		Phone: phone,
		Data:  data,
	}
	b, _ := json.Marshal(evt)
	e.logger.Info(string(b))
}

func (e *EventLogger) MessageReceived(ctx context.Context, phone, message string) {
	msg := []rune(message)
	if len(msg) > 200 {
		msg = append(msg[:200], []rune("...")...)
	}
	e.Log(ctx, "message_received", phone, map[string]any{"message": string(msg)})
}

func (e *EventLogger) IntentExtracted(ctx context.Context, phone string, result ExtractionResult, outcome extractOutcome) {
	e.Log(ctx, "intent_extracted", phone, map[string]any{
		"intent":   string(result.Intent),
		"outcome":  string(outcome),
		"servicio": result.Slots.Servicio,
		"fecha":    result.Slots.Fecha,
		"hora":     result.Slots.Hora,
	})
}

func (e *EventLogger) VariantsGenerated(ctx context.Context, phone string, intent Intent, source string, picked int) {
	e.Log(ctx, "variants_generated", phone, map[string]any{
		"intent": string(intent),
		"source": source,
		"picked": picked,
	})
}

func (e *EventLogger) ReplySent(ctx context.Context, phone string, intent Intent, action string, bodyLen int, delivered bool) {
	e.Log(ctx, "reply_sent", phone, map[string]any{
		"intent":    string(intent),
		"action":    action,
		"body_len":  bodyLen,
		"delivered": delivered,
	})
}

func (e *EventLogger) ErrorOccurred(ctx context.Context, phone, step string, err error) {
	e.Log(ctx, "error", phone, map[string]any{
		"step":  step,
		"error": err.Error(),
	})
}
