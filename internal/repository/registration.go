package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// RegistrationRepository handles persistence for registrations and the
// ticket-type reads that guard them.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// WithTx runs fn in a single transaction; repository calls made with the
// context passed to fn participate in it.
func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetTicketType reads a ticket type without locking it.
func (r *RegistrationRepository) GetTicketType(ctx context.Context, id string) (*model.TicketType, error) {
	return r.getTicketType(ctx, `
SELECT id, event_id, name, price_cents, quota, created_at
FROM ticket_types WHERE id = $1`, id)
}

// GetTicketTypeForUpdate reads a ticket type and takes a row-level lock on it
// until the surrounding transaction ends.
//
// Every registration for a ticket type goes through this lock, so two
// concurrent attempts cannot both read the same confirmed sum and both
// commit: the second blocks here until the first commits or rolls back, and
// its following SUM (a fresh READ COMMITTED snapshot) sees the first one's
// rows.
func (r *RegistrationRepository) GetTicketTypeForUpdate(ctx context.Context, id string) (*model.TicketType, error) {
	if txFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock ticket type: %w", ErrNoTransaction)
	}
	return r.getTicketType(ctx, `
SELECT id, event_id, name, price_cents, quota, created_at
FROM ticket_types WHERE id = $1
FOR UPDATE`, id)
}

func (r *RegistrationRepository) getTicketType(ctx context.Context, sql, id string) (*model.TicketType, error) {
	var tt model.TicketType
	err := db(ctx, r.pool).QueryRow(ctx, sql, id).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.Quota, &tt.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "ticket type", "get ticket type")
	}
	return &tt, nil
}

// SumConfirmedQuantity returns the total quantity of Confirmed registrations
// for a ticket type, 0 when there are none.
func (r *RegistrationRepository) SumConfirmedQuantity(ctx context.Context, ticketTypeID string) (int, error) {
	var total int
	err := db(ctx, r.pool).QueryRow(ctx, `
SELECT COALESCE(SUM(quantity), 0)
FROM registrations
WHERE ticket_type_id = $1 AND status = $2`,
		ticketTypeID, model.StatusConfirmed,
	).Scan(&total)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, model.NotFound("ticket type")
		}
		return 0, fmt.Errorf("sum confirmed quantity: %w", err)
	}
	return total, nil
}

// CreateRegistrations inserts all registrations in one round trip. Outside a
// transaction the batch is still applied all-or-nothing.
func (r *RegistrationRepository) CreateRegistrations(ctx context.Context, regs []*model.Registration) error {
	const stmt = `
INSERT INTO registrations (id, ticket_type_id, event_id, full_name, email, quantity, registered_at, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	args := make([][]any, 0, len(regs))
	for _, reg := range regs {
		args = append(args, []any{
			reg.ID, reg.TicketTypeID, reg.EventID, reg.FullName, reg.Email,
			reg.Quantity, reg.RegisteredAt, reg.Status,
		})
	}
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		if err := execBatch(ctx, db(ctx, r.pool), stmt, args); err != nil {
			return fmt.Errorf("insert registrations: %w", err)
		}
		return nil
	})
}

// EventExists reports whether an event with the given id exists.
func (r *RegistrationRepository) EventExists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

// ListRegistrationsByEvent returns all registrations for an event, oldest first.
func (r *RegistrationRepository) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
SELECT id, ticket_type_id, event_id, full_name, email, quantity, registered_at, status
FROM registrations
WHERE event_id = $1
ORDER BY registered_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.TicketTypeID, &reg.EventID, &reg.FullName, &reg.Email,
			&reg.Quantity, &reg.RegisteredAt, &reg.Status); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}
