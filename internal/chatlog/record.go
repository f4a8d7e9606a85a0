// Package chatlog persists the per-phone message trail: one record per inbound
// message and one per bot reply, plus a last-updated marker per chat.
package chatlog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Direction is relative to the studio.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Slots mirrors the booking details attached to a message.
type Slots struct {
	Servicio string `json:"servicio,omitempty" dynamodbav:"servicio,omitempty"`
	Fecha    string `json:"fecha,omitempty" dynamodbav:"fecha,omitempty"`
	Hora     string `json:"hora,omitempty" dynamodbav:"hora,omitempty"`
}

// IsZero reports whether no slot is set.
func (s *Slots) IsZero() bool {
	return s == nil || (s.Servicio == "" && s.Fecha == "" && s.Hora == "")
}

// Record is one logged message.
type Record struct {
	ID        string
	Phone     string
	Text      string
	Sender    Sender
	Direction Direction
	Intent    string
	Slots     *Slots
	Action    string
	CreatedAt time.Time
}

// Logger appends records. Implementations never read them back.
type Logger interface {
	Append(ctx context.Context, rec Record) error
}

// normalize fills the ID and timestamp and drops empty slots.
func normalize(rec Record, now func() time.Time) Record {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Slots.IsZero() {
		rec.Slots = nil
	}
	return rec
}
