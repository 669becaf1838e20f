package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

var (
	vip = model.TicketType{ID: "tt-1", EventID: "ev-1", Name: "VIP", PriceCents: 19900, Quota: 2}
	now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
)

func confirmation(id string, status model.RegistrationStatus) model.Confirmation {
	return model.Confirmation{
		Registration: model.Registration{
			ID:           id,
			TicketTypeID: vip.ID,
			EventID:      vip.EventID,
			FullName:     "Ada Lovelace",
			Email:        "ada@example.com",
			Quantity:     2,
			Status:       status,
		},
		TicketType: vip,
	}
}

func TestConfirmationJobs_OnlyConfirmed(t *testing.T) {
	t.Parallel()

	jobs, err := confirmationJobs([]model.Confirmation{
		confirmation("r-1", model.StatusConfirmed),
		confirmation("r-2", model.StatusPending),
		confirmation("r-3", model.StatusCanceled),
	}, now)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, JobTypeConfirmation, job.Type)
	assert.Equal(t, now, job.CreatedAt)
	assert.Zero(t, job.Attempt)
	assert.NotEmpty(t, job.ID)

	var p ConfirmationPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, ConfirmationPayload{
		RegistrationID: "r-1",
		EventID:        "ev-1",
		TicketTypeID:   "tt-1",
		TicketTypeName: "VIP",
		PriceCents:     19900,
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		Quantity:       2,
	}, p)
}

func TestConfirmationMessage(t *testing.T) {
	t.Parallel()
	p := ConfirmationPayload{
		RegistrationID: "r-1",
		TicketTypeName: "VIP",
		PriceCents:     19900,
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		Quantity:       2,
	}

	assert.Equal(t, "Your VIP registration is confirmed", confirmationSubject(p))

	body := confirmationBody(p)
	assert.Contains(t, body, "Hi Ada Lovelace,")
	assert.Contains(t, body, "2 x VIP")
	assert.Contains(t, body, "Unit price: 199.00")
	assert.Contains(t, body, "Total: 398.00")
	assert.Contains(t, body, "r-1")

	msg, err := buildConfirmation("Event Ticketing", "noreply@example.com", p)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ada@example.com")
	assert.Contains(t, buf.String(), "noreply@example.com")
	assert.Contains(t, buf.String(), "Your VIP registration is confirmed")
}

func TestBuildConfirmation_BadAddress(t *testing.T) {
	t.Parallel()

	_, err := buildConfirmation("Event Ticketing", "noreply@example.com", ConfirmationPayload{Email: "not an address"})
	assert.Error(t, err)
}

func TestNewMailer_RequiresHost(t *testing.T) {
	t.Parallel()

	_, err := NewMailer(mailConfig(""))
	assert.Error(t, err)

	m, err := NewMailer(mailConfig("smtp.example.com"))
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func mailConfig(host string) config.MailConfig {
	return config.MailConfig{
		Host:        host,
		Port:        587,
		FromAddress: "noreply@example.com",
		FromName:    "Event Ticketing",
	}
}

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*Job
	retried []*Job
	drained chan struct{}
}

func (q *fakeQueue) Dequeue(ctx context.Context, _ time.Duration) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		select {
		case <-q.drained:
		default:
			close(q.drained)
		}
		return nil, ctx.Err()
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []ConfirmationPayload
	fail bool
}

func (s *fakeSender) SendConfirmation(_ context.Context, p ConfirmationPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, p)
	return nil
}

func TestWorker_Process(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jobs, err := confirmationJobs([]model.Confirmation{confirmation("r-1", model.StatusConfirmed)}, now)
	require.NoError(t, err)

	t.Run("sends the payload", func(t *testing.T) {
		sender := &fakeSender{}
		w := NewWorker(&fakeQueue{}, sender, zap.NewNop())

		require.NoError(t, w.Process(ctx, &jobs[0]))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "r-1", sender.sent[0].RegistrationID)
	})

	t.Run("unknown job type", func(t *testing.T) {
		w := NewWorker(&fakeQueue{}, &fakeSender{}, nil)

		err := w.Process(ctx, &Job{ID: "j", Type: "recording_upload"})
		assert.ErrorContains(t, err, "unknown job type")
	})

	t.Run("bad payload", func(t *testing.T) {
		w := NewWorker(&fakeQueue{}, &fakeSender{}, nil)

		err := w.Process(ctx, &Job{ID: "j", Type: JobTypeConfirmation, Payload: json.RawMessage(`"x"`)})
		assert.ErrorContains(t, err, "unmarshal payload")
	})
}

func TestWorker_RunRetriesFailures(t *testing.T) {
	t.Parallel()
	jobs, err := confirmationJobs([]model.Confirmation{
		confirmation("r-1", model.StatusConfirmed),
		confirmation("r-2", model.StatusConfirmed),
	}, now)
	require.NoError(t, err)

	q := &fakeQueue{jobs: []*Job{&jobs[0], &jobs[1]}, drained: make(chan struct{})}
	w := NewWorker(q, &fakeSender{fail: true}, nil)
	w.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-q.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain the queue")
	}
	cancel()
	<-done

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.retried, 2)
	assert.Equal(t, 1, q.retried[0].Attempt)
}
