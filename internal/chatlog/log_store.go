package chatlog

import (
	"context"
	"time"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// LogStore writes records to the application log. Used when no database is
// configured.
type LogStore struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewLogStore(logger *logging.Logger) *LogStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogStore{logger: logger, now: time.Now}
}

func (s *LogStore) Append(_ context.Context, rec Record) error {
	rec = normalize(rec, s.now)
	args := []any{
		"id", rec.ID,
		"phone", rec.Phone,
		"sender", string(rec.Sender),
		"direction", string(rec.Direction),
		"text", rec.Text,
		"created_at", rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if rec.Intent != "" {
		args = append(args, "intent", rec.Intent)
	}
	if rec.Action != "" {
		args = append(args, "action", rec.Action)
	}
	if rec.Slots != nil {
		args = append(args, "slots", *rec.Slots)
	}
	s.logger.Info("chat message", args...)
	return nil
}

// Nop discards records.
type Nop struct{}

func (Nop) Append(context.Context, Record) error { return nil }
