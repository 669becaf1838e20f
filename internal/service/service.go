// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the entity store.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// Defaults applied when an event is created without dates.
const (
	defaultStartOffset   = 7 * 24 * time.Hour
	defaultEventDuration = 4 * time.Hour
)

// EventStore persists events and ticket types.
type EventStore interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	CreateTicketType(ctx context.Context, tt *model.TicketType) error
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

// Option configures the services in this package.
type Option func(*options)

type options struct {
	clock    clock.Clock
	logger   *zap.Logger
	notifier Notifier
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.System, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotifier sets where confirmed registrations are announced.
// Only RegistrationService uses it.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// EventService is the event catalog: read/write access to events and their
// ticket types.
type EventService struct {
	store  EventStore
	clock  clock.Clock
	logger *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(store EventStore, opts ...Option) *EventService {
	o := buildOptions(opts)
	return &EventService{store: store, clock: o.clock, logger: o.logger}
}

// CreateEvent validates the request and persists the event together with any
// nested ticket types.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	for i := range req.TicketTypes {
		req.TicketTypes[i].Name = strings.TrimSpace(req.TicketTypes[i].Name)
	}
	if err := validateStruct(req, ""); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	start := req.StartDate
	if start.IsZero() {
		start = now.Add(defaultStartOffset)
	}
	end := req.EndDate
	if end.IsZero() {
		end = start.Add(defaultEventDuration)
	}

	event := &model.Event{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		TicketTypes: make([]model.TicketType, 0, len(req.TicketTypes)),
		CreatedAt:   now,
	}
	for _, in := range req.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, newTicketType(event.ID, in, now))
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.Int("ticket_types", len(event.TicketTypes)),
	)
	return event, nil
}

// AddTicketType creates a ticket type under an existing event.
func (s *EventService) AddTicketType(ctx context.Context, eventID string, req model.CreateTicketTypeRequest) (*model.TicketType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req, ""); err != nil {
		return nil, err
	}
	if uuid.Validate(eventID) != nil {
		return nil, model.NotFound("event")
	}

	tt := newTicketType(eventID, req, s.clock.Now())
	if err := s.store.CreateTicketType(ctx, &tt); err != nil {
		return nil, fmt.Errorf("add ticket type: %w", err)
	}
	return &tt, nil
}

// ListEvents returns all events with ticket types, earliest start first.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// GetEvent returns a single event with its ticket types.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if uuid.Validate(id) != nil {
		return nil, model.NotFound("event")
	}
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func newTicketType(eventID string, in model.CreateTicketTypeRequest, now time.Time) model.TicketType {
	return model.TicketType{
		ID:         uuid.NewString(),
		EventID:    eventID,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		Quota:      in.Quota,
		CreatedAt:  now,
	}
}
