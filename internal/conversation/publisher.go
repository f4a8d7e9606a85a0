package conversation

import (
	"context"
	"fmt"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// Publisher enqueues inbound jobs for asynchronous processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// Enqueue publishes job, assigning an ID and receive time when missing.
func (p *Publisher) Enqueue(ctx context.Context, job InboundJob) error {
	if ctx == nil {
		ctx = context.Background()
	}

	job, body, err := encodeJob(job)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("conversation: failed to enqueue job: %w", err)
	}

	p.logger.Debug("inbound job enqueued", "job_id", job.ID, "kind", string(job.Kind), "phone", job.Phone)
	return nil
}
