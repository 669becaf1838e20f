package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// JobQueue is the part of Queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	Retry(ctx context.Context, job *Job) error
}

// Sender delivers one confirmation.
type Sender interface {
	SendConfirmation(ctx context.Context, p ConfirmationPayload) error
}

// Worker drains the confirmation queue.
type Worker struct {
	queue   JobQueue
	sender  Sender
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

// NewWorker creates a confirmation worker.
func NewWorker(q JobQueue, sender Sender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{queue: q, sender: sender, logger: logger, poll: 5 * time.Second, backoff: RetryBackoff}
}

// Process executes one job.
func (w *Worker) Process(ctx context.Context, job *Job) error {
	if job.Type != JobTypeConfirmation {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var p ConfirmationPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := w.sender.SendConfirmation(ctx, p); err != nil {
		return err
	}
	w.logger.Info("confirmation sent",
		zap.String("job_id", job.ID),
		zap.String("registration_id", p.RegistrationID),
	)
	return nil
}

// Run dequeues and processes jobs until ctx is done. Failed jobs are retried
// through the queue.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			w.logger.Info("confirmation worker stopping")
			return
		}

		job, err := w.queue.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Warn("dequeue error", zap.Error(err))
			w.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := w.Process(ctx, job); err != nil {
			w.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := w.queue.Retry(ctx, job); reErr != nil {
				w.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			w.sleep(ctx)
		}
	}
}

func (w *Worker) sleep(ctx context.Context) {
	t := time.NewTimer(w.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
