package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// JobKind distinguishes readable text from media the bot hands to a human.
type JobKind string

const (
	JobKindText  JobKind = "text"
	JobKindMedia JobKind = "media"
)

// InboundJob is one customer message waiting for a reply.
type InboundJob struct {
	ID         string    `json:"id"`
	Kind       JobKind   `json:"kind"`
	Phone      string    `json:"phone"`
	Text       string    `json:"text,omitempty"`
	MediaType  string    `json:"media_type,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// JobSink accepts inbound jobs. The webhook writes to one without caring whether
// the reply is computed inline or by a queue consumer.
type JobSink interface {
	Enqueue(ctx context.Context, job InboundJob) error
}

func (j InboundJob) validate() error {
	if strings.TrimSpace(j.Phone) == "" {
		return ErrMissingPhone
	}
	switch j.Kind {
	case JobKindText, JobKindMedia:
		return nil
	default:
		return fmt.Errorf("conversation: unknown job kind %q", j.Kind)
	}
}

func encodeJob(job InboundJob) (InboundJob, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = time.Now().UTC()
	}
	if err := job.validate(); err != nil {
		return InboundJob{}, "", err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return InboundJob{}, "", fmt.Errorf("conversation: failed to encode job: %w", err)
	}
	return job, string(body), nil
}

func decodeJob(body string) (InboundJob, error) {
	var job InboundJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return InboundJob{}, fmt.Errorf("conversation: failed to decode job: %w", err)
	}
	return job, nil
}
