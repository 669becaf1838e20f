package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// MemoryStore is an in-process entity store with the same contract as the
// Postgres repositories. Transactions are serialized by a single mutex, which
// gives them the isolation the row lock provides in Postgres.
type MemoryStore struct {
	mu            sync.Mutex
	events        []model.Event
	ticketTypes   []model.TicketType
	registrations []model.Registration
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

type memTxKey struct{}

func (m *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memTxKey{}).(*MemoryStore)
	return owner == m
}

// lock takes the store mutex unless ctx already runs inside one of this
// store's transactions.
func (m *MemoryStore) lock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// WithTx runs fn holding the store exclusively. Writes made by fn are
// discarded if it returns an error.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events := append([]model.Event(nil), m.events...)
	ticketTypes := append([]model.TicketType(nil), m.ticketTypes...)
	registrations := append([]model.Registration(nil), m.registrations...)

	if err := fn(context.WithValue(ctx, memTxKey{}, m)); err != nil {
		m.events, m.ticketTypes, m.registrations = events, ticketTypes, registrations
		return err
	}
	return nil
}

// CreateEvent stores the event and its ticket types.
func (m *MemoryStore) CreateEvent(ctx context.Context, event *model.Event) error {
	defer m.lock(ctx)()

	stored := *event
	stored.TicketTypes = nil
	m.events = append(m.events, stored)
	for _, tt := range event.TicketTypes {
		tt.EventID = event.ID
		m.ticketTypes = append(m.ticketTypes, tt)
	}
	return nil
}

// CreateTicketType adds a ticket type to an existing event.
func (m *MemoryStore) CreateTicketType(ctx context.Context, tt *model.TicketType) error {
	defer m.lock(ctx)()

	if m.findEvent(tt.EventID) < 0 {
		return model.NotFound("event")
	}
	m.ticketTypes = append(m.ticketTypes, *tt)
	return nil
}

// ListEvents returns all events ordered by start date, ticket types populated.
func (m *MemoryStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	defer m.lock(ctx)()

	events := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		e.TicketTypes = m.ticketTypesOf(e.ID)
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
	return events, nil
}

// GetEvent returns one event with its ticket types.
func (m *MemoryStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	defer m.lock(ctx)()

	i := m.findEvent(id)
	if i < 0 {
		return nil, model.NotFound("event")
	}
	e := m.events[i]
	e.TicketTypes = m.ticketTypesOf(id)
	return &e, nil
}

// EventExists reports whether an event with the given id exists.
func (m *MemoryStore) EventExists(ctx context.Context, id string) (bool, error) {
	defer m.lock(ctx)()
	return m.findEvent(id) >= 0, nil
}

// GetTicketType reads a ticket type.
func (m *MemoryStore) GetTicketType(ctx context.Context, id string) (*model.TicketType, error) {
	defer m.lock(ctx)()

	for _, tt := range m.ticketTypes {
		if tt.ID == id {
			return &tt, nil
		}
	}
	return nil, model.NotFound("ticket type")
}

// GetTicketTypeForUpdate reads a ticket type inside a transaction. The
// transaction already holds the whole store, so no extra lock is needed.
func (m *MemoryStore) GetTicketTypeForUpdate(ctx context.Context, id string) (*model.TicketType, error) {
	if !m.inTx(ctx) {
		return nil, ErrNoTransaction
	}
	return m.GetTicketType(ctx, id)
}

// SumConfirmedQuantity totals Confirmed quantities for a ticket type.
func (m *MemoryStore) SumConfirmedQuantity(ctx context.Context, ticketTypeID string) (int, error) {
	defer m.lock(ctx)()

	total := 0
	for _, reg := range m.registrations {
		if reg.TicketTypeID == ticketTypeID && reg.Status == model.StatusConfirmed {
			total += reg.Quantity
		}
	}
	return total, nil
}

// CreateRegistrations appends all registrations, or none if any references a
// missing ticket type or event.
func (m *MemoryStore) CreateRegistrations(ctx context.Context, regs []*model.Registration) error {
	defer m.lock(ctx)()

	for _, reg := range regs {
		found := false
		for _, tt := range m.ticketTypes {
			if tt.ID == reg.TicketTypeID && tt.EventID == reg.EventID {
				found = true
				break
			}
		}
		if !found {
			return model.NotFound("ticket type")
		}
	}
	for _, reg := range regs {
		m.registrations = append(m.registrations, *reg)
	}
	return nil
}

// ListRegistrationsByEvent returns an event's registrations, oldest first.
func (m *MemoryStore) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	defer m.lock(ctx)()

	regs := []model.Registration{}
	for _, reg := range m.registrations {
		if reg.EventID == eventID {
			regs = append(regs, reg)
		}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		return regs[i].RegisteredAt.Before(regs[j].RegisteredAt)
	})
	return regs, nil
}

func (m *MemoryStore) findEvent(id string) int {
	for i, e := range m.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) ticketTypesOf(eventID string) []model.TicketType {
	tts := []model.TicketType{}
	for _, tt := range m.ticketTypes {
		if tt.EventID == eventID {
			tts = append(tts, tt)
		}
	}
	return tts
}
