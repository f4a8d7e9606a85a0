package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

type messageHandler interface {
	Handle(ctx context.Context, phone, text string) (string, error)
	HandleMedia(ctx context.Context, phone, mediaType string) (string, error)
}

// Worker consumes inbound jobs from the queue and runs each through the dispatcher.
type Worker struct {
	handler messageHandler
	queue   queueClient
	logger  *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	jobTimeout       time.Duration
}

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	defaultJobTimeout    = 60 * time.Second
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithJobTimeout bounds the time spent on a single job.
func WithJobTimeout(timeout time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if timeout > 0 {
			cfg.jobTimeout = timeout
		}
	}
}

// NewWorker constructs a queue consumer. queue may be nil when the worker is only
// used through Process.
func NewWorker(handler messageHandler, queue queueClient, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if handler == nil {
		panic("conversation: message handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		jobTimeout:       defaultJobTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		handler: handler,
		queue:   queue,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	if w.queue == nil {
		panic("conversation: worker started without a queue")
	}
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("conversation worker started", "worker_id", workerID)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("conversation worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive inbound jobs", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	defer w.deleteMessage(context.Background(), msg.ReceiptHandle)

	job, err := decodeJob(msg.Body)
	if err != nil {
		w.logger.Error("dropping malformed inbound job", "error", err, "msg_id", msg.ID)
		return
	}
	if err := w.Process(ctx, job); err != nil {
		w.logger.Error("inbound job failed", "error", err, "job_id", job.ID, "kind", string(job.Kind))
	}
}

// Process runs one job to completion. The reply pipeline never fails on model or
// delivery problems, so an error here means the job itself was unusable.
func (w *Worker) Process(ctx context.Context, job InboundJob) error {
	if err := job.validate(); err != nil {
		return err
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.jobTimeout)
	defer cancel()

	started := time.Now()
	var err error
	switch job.Kind {
	case JobKindText:
		_, err = w.handler.Handle(jobCtx, job.Phone, job.Text)
	case JobKindMedia:
		_, err = w.handler.HandleMedia(jobCtx, job.Phone, job.MediaType)
	}
	if err != nil {
		return fmt.Errorf("conversation: process job %s: %w", job.ID, err)
	}
	w.logger.Info("inbound job processed",
		"job_id", job.ID,
		"kind", string(job.Kind),
		"message_id", job.MessageID,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete inbound job", "error", err)
	}
}

// DirectSink processes each job in its own goroutine instead of queueing it, so the
// webhook can acknowledge immediately.
type DirectSink struct {
	worker *Worker
	logger *logging.Logger
	wg     sync.WaitGroup
}

func NewDirectSink(worker *Worker) *DirectSink {
	if worker == nil {
		panic("conversation: worker cannot be nil")
	}
	return &DirectSink{worker: worker, logger: worker.logger}
}

// Enqueue validates job and starts processing it. The request context is detached
// so the reply survives the webhook response.
func (s *DirectSink) Enqueue(ctx context.Context, job InboundJob) error {
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = time.Now().UTC()
	}
	if err := job.validate(); err != nil {
		return err
	}
	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Process(detached, job); err != nil {
			s.logger.Error("inline job failed", "error", err, "job_id", job.ID)
		}
	}()
	return nil
}

// Wait blocks until every started job has finished.
func (s *DirectSink) Wait() {
	s.wg.Wait()
}
