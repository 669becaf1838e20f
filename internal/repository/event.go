package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// EventRepository handles persistence for events and their ticket types.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const insertTicketType = `
INSERT INTO ticket_types (id, event_id, name, price_cents, quota, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// CreateEvent inserts the event and all of its ticket types atomically.
// Identities are assigned by the caller.
func (r *EventRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		q := db(ctx, r.pool)
		_, err := q.Exec(ctx, `
INSERT INTO events (id, name, description, start_date, end_date, location, max_capacity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			event.ID, event.Name, event.Description, event.StartDate, event.EndDate,
			event.Location, event.MaxCapacity, event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		args := make([][]any, 0, len(event.TicketTypes))
		for _, tt := range event.TicketTypes {
			args = append(args, []any{tt.ID, event.ID, tt.Name, tt.PriceCents, tt.Quota, tt.CreatedAt})
		}
		if err := execBatch(ctx, q, insertTicketType, args); err != nil {
			return fmt.Errorf("insert ticket types: %w", err)
		}
		return nil
	})
}

// CreateTicketType adds a ticket type to an existing event.
func (r *EventRepository) CreateTicketType(ctx context.Context, tt *model.TicketType) error {
	_, err := db(ctx, r.pool).Exec(ctx, insertTicketType,
		tt.ID, tt.EventID, tt.Name, tt.PriceCents, tt.Quota, tt.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return model.NotFound("event")
		}
		return fmt.Errorf("insert ticket type: %w", err)
	}
	return nil
}

// ListEvents returns all events with their ticket types, ordered by start
// date ascending.
func (r *EventRepository) ListEvents(ctx context.Context) ([]model.Event, error) {
	q := db(ctx, r.pool)
	rows, err := q.Query(ctx, `
SELECT id, name, description, start_date, end_date, location, max_capacity, created_at
FROM events
ORDER BY start_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	index := make(map[string]int)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.MaxCapacity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.TicketTypes = []model.TicketType{}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if len(events) == 0 {
		return events, nil
	}

	tts, err := r.queryTicketTypes(ctx, `
SELECT id, event_id, name, price_cents, quota, created_at
FROM ticket_types
ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	for _, tt := range tts {
		if i, ok := index[tt.EventID]; ok {
			events[i].TicketTypes = append(events[i].TicketTypes, tt)
		}
	}
	return events, nil
}

// GetEvent returns a single event with its ticket types, or a not-found error.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := db(ctx, r.pool).QueryRow(ctx, `
SELECT id, name, description, start_date, end_date, location, max_capacity, created_at
FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.MaxCapacity, &e.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "event", "get event")
	}

	e.TicketTypes, err = r.queryTicketTypes(ctx, `
SELECT id, event_id, name, price_cents, quota, created_at
FROM ticket_types
WHERE event_id = $1
ORDER BY created_at ASC, name ASC`, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) queryTicketTypes(ctx context.Context, sql string, args ...any) ([]model.TicketType, error) {
	rows, err := db(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	tts := []model.TicketType{}
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.Quota, &tt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		tts = append(tts, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket types: %w", err)
	}
	return tts, nil
}
