// Package notify delivers registration confirmations out of band: the API
// enqueues jobs on Redis and a worker turns them into emails.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

const (
	// QueueConfirmations is the Redis list holding confirmation jobs.
	QueueConfirmations = "jobs:registration-confirmations"
	// QueueDLQ receives jobs that failed MaxRetries times.
	QueueDLQ = "jobs:dead-letter"
	// MaxRetries is the number of attempts before a job is dead-lettered.
	MaxRetries = 3
	// RetryBackoff is the pause after a failed job or dequeue.
	RetryBackoff = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const JobTypeConfirmation JobType = "registration_confirmation"

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// ConfirmationPayload is everything the mailer needs; the worker never reads
// the entity store.
type ConfirmationPayload struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	TicketTypeID   string `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type_name"`
	PriceCents     int64  `json:"price_cents"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Quantity       int    `json:"quantity"`
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("redis client connected", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// Queue enqueues and dequeues confirmation jobs via Redis.
type Queue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
	now    func() time.Time
}

// NewQueue creates a Redis-backed job queue on QueueConfirmations.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, key: QueueConfirmations, logger: logger, now: time.Now}
}

// RegistrationsCreated enqueues one job per Confirmed registration. Pending
// and Canceled registrations get no email.
func (q *Queue) RegistrationsCreated(ctx context.Context, created []model.Confirmation) error {
	jobs, err := confirmationJobs(created, q.now().UTC())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}
	values := make([]any, 0, len(jobs))
	for _, job := range jobs {
		raw, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		values = append(values, raw)
	}
	if err := q.client.RPush(ctx, q.key, values...).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued confirmation jobs", zap.Int("jobs", len(jobs)))
	return nil
}

// Dequeue blocks up to timeout for a job. It returns a nil job when the
// timeout elapses or the payload is unreadable.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. Once attempt reaches
// MaxRetries the job goes to QueueDLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

func confirmationJobs(created []model.Confirmation, now time.Time) ([]Job, error) {
	var jobs []Job
	for _, c := range created {
		if c.Registration.Status != model.StatusConfirmed {
			continue
		}
		body, err := json.Marshal(ConfirmationPayload{
			RegistrationID: c.Registration.ID,
			EventID:        c.Registration.EventID,
			TicketTypeID:   c.TicketType.ID,
			TicketTypeName: c.TicketType.Name,
			PriceCents:     c.TicketType.PriceCents,
			FullName:       c.Registration.FullName,
			Email:          c.Registration.Email,
			Quantity:       c.Registration.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		jobs = append(jobs, Job{
			ID:        uuid.NewString(),
			Type:      JobTypeConfirmation,
			Payload:   body,
			CreatedAt: now,
		})
	}
	return jobs, nil
}
