package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seedMemory(t *testing.T, m *MemoryStore) (model.Event, model.TicketType) {
	t.Helper()
	event := model.Event{
		ID:        "ev-1",
		Name:      "Conf2025",
		StartDate: base.Add(24 * time.Hour),
		TicketTypes: []model.TicketType{
			{ID: "tt-1", Name: "VIP", Quota: 2},
		},
	}
	require.NoError(t, m.CreateEvent(context.Background(), &event))
	return event, model.TicketType{ID: "tt-1", EventID: "ev-1", Name: "VIP", Quota: 2}
}

func TestMemoryStore_Events(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	seedMemory(t, m)

	early := model.Event{ID: "ev-0", Name: "Early", StartDate: base}
	require.NoError(t, m.CreateEvent(ctx, &early))

	events, err := m.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-0", events[0].ID)
	assert.NotNil(t, events[0].TicketTypes)
	require.Len(t, events[1].TicketTypes, 1)
	assert.Equal(t, "ev-1", events[1].TicketTypes[0].EventID)

	require.NoError(t, m.CreateTicketType(ctx, &model.TicketType{ID: "tt-2", EventID: "ev-0", Name: "GA", Quota: 5}))
	got, err := m.GetEvent(ctx, "ev-0")
	require.NoError(t, err)
	assert.Len(t, got.TicketTypes, 1)

	err = m.CreateTicketType(ctx, &model.TicketType{ID: "tt-3", EventID: "missing", Name: "GA", Quota: 5})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = m.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	ok, err := m.EventExists(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_ForUpdateNeedsTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	_, tt := seedMemory(t, m)

	_, err := m.GetTicketTypeForUpdate(ctx, tt.ID)
	assert.ErrorIs(t, err, ErrNoTransaction)

	err = m.WithTx(ctx, func(ctx context.Context) error {
		got, err := m.GetTicketTypeForUpdate(ctx, tt.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, tt, *got)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_RollbackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	_, tt := seedMemory(t, m)
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(ctx context.Context) error {
		reg := &model.Registration{ID: "r-1", TicketTypeID: tt.ID, EventID: tt.EventID, Quantity: 2, Status: model.StatusConfirmed}
		if err := m.CreateRegistrations(ctx, []*model.Registration{reg}); err != nil {
			return err
		}
		sold, err := m.SumConfirmedQuantity(ctx, tt.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, sold)
		return boom
	})
	require.ErrorIs(t, err, boom)

	sold, err := m.SumConfirmedQuantity(ctx, tt.ID)
	require.NoError(t, err)
	assert.Zero(t, sold)
}

func TestMemoryStore_CreateRegistrationsAllOrNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	_, tt := seedMemory(t, m)

	err := m.CreateRegistrations(ctx, []*model.Registration{
		{ID: "r-1", TicketTypeID: tt.ID, EventID: tt.EventID, Quantity: 1, Status: model.StatusConfirmed},
		{ID: "r-2", TicketTypeID: tt.ID, EventID: "other-event", Quantity: 1, Status: model.StatusConfirmed},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	regs, err := m.ListRegistrationsByEvent(ctx, tt.EventID)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestMemoryStore_SumAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	_, tt := seedMemory(t, m)

	err := m.CreateRegistrations(ctx, []*model.Registration{
		{ID: "r-2", TicketTypeID: tt.ID, EventID: tt.EventID, Quantity: 1, Status: model.StatusConfirmed, RegisteredAt: base.Add(time.Minute)},
		{ID: "r-1", TicketTypeID: tt.ID, EventID: tt.EventID, Quantity: 3, Status: model.StatusPending, RegisteredAt: base},
		{ID: "r-3", TicketTypeID: tt.ID, EventID: tt.EventID, Quantity: 1, Status: model.StatusCanceled, RegisteredAt: base.Add(2 * time.Minute)},
	})
	require.NoError(t, err)

	sold, err := m.SumConfirmedQuantity(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sold)

	regs, err := m.ListRegistrationsByEvent(ctx, tt.EventID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, []string{"r-1", "r-2", "r-3"}, []string{regs[0].ID, regs[1].ID, regs[2].ID})
}
