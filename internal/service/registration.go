package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// RegistrationStore is the persistence contract the registration logic needs.
// GetTicketTypeForUpdate must block other transactions that lock the same
// ticket type until the caller's transaction ends.
type RegistrationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketType(ctx context.Context, id string) (*model.TicketType, error)
	GetTicketTypeForUpdate(ctx context.Context, id string) (*model.TicketType, error)
	SumConfirmedQuantity(ctx context.Context, ticketTypeID string) (int, error)
	CreateRegistrations(ctx context.Context, regs []*model.Registration) error
	EventExists(ctx context.Context, eventID string) (bool, error)
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
}

// Notifier is told about registrations after they are committed.
type Notifier interface {
	RegistrationsCreated(ctx context.Context, created []model.Confirmation) error
}

// RegistrationService registers attendees while keeping the Confirmed sum of
// every ticket type within its quota.
type RegistrationService struct {
	store    RegistrationStore
	clock    clock.Clock
	logger   *zap.Logger
	notifier Notifier
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(store RegistrationStore, opts ...Option) *RegistrationService {
	o := buildOptions(opts)
	return &RegistrationService{store: store, clock: o.clock, logger: o.logger, notifier: o.notifier}
}

// CountConfirmedQuantity is the authoritative "tickets sold" figure: the sum
// of quantities over Confirmed registrations for the ticket type.
func (s *RegistrationService) CountConfirmedQuantity(ctx context.Context, ticketTypeID string) (int, error) {
	if uuid.Validate(ticketTypeID) != nil {
		return 0, nil
	}
	sold, err := s.store.SumConfirmedQuantity(ctx, ticketTypeID)
	if err != nil {
		return 0, fmt.Errorf("count confirmed quantity: %w", err)
	}
	return sold, nil
}

// Availability reports quota, sold and remaining units for a ticket type.
func (s *RegistrationService) Availability(ctx context.Context, ticketTypeID string) (*model.TicketAvailability, error) {
	if uuid.Validate(ticketTypeID) != nil {
		return nil, model.NotFound("ticket type")
	}
	tt, err := s.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	sold, err := s.store.SumConfirmedQuantity(ctx, ticketTypeID)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	return &model.TicketAvailability{
		TicketTypeID: tt.ID,
		Name:         tt.Name,
		Quota:        tt.Quota,
		Sold:         sold,
		Remaining:    max(tt.Quota-sold, 0),
	}, nil
}

// RegisterSingle creates one registration after checking the ticket type's
// remaining quota.
//
// A ticket type whose Confirmed sum has reached its quota rejects every
// request with SoldOut, whatever the quantity. Otherwise a quantity that would
// push the sum past the quota is rejected with QuotaExceeded. The event is
// always taken from the ticket type. The check and the insert share one
// transaction holding the ticket type's row lock.
func (s *RegistrationService) RegisterSingle(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	reg, err := s.newRegistration(req, "")
	if err != nil {
		return nil, err
	}

	var tt *model.TicketType
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.store.GetTicketTypeForUpdate(ctx, reg.TicketTypeID)
		if err != nil {
			return err
		}
		sold, err := s.store.SumConfirmedQuantity(ctx, locked.ID)
		if err != nil {
			return err
		}
		if sold >= locked.Quota {
			return model.SoldOutError(locked.Name)
		}
		if reg.Quantity > locked.Quota-sold {
			return model.QuotaExceededError(locked.Name)
		}

		tt = locked
		reg.EventID = locked.EventID
		return s.store.CreateRegistrations(ctx, []*model.Registration{reg})
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("ticket_type_id", reg.TicketTypeID),
		zap.Int("quantity", reg.Quantity),
	)
	s.notify(context.WithoutCancel(ctx), []model.Confirmation{{Registration: *reg, TicketType: *tt}})
	return reg, nil
}

// RegisterBatch creates all registrations or none.
//
// Every referenced ticket type is locked (in id order, so concurrent batches
// cannot deadlock) before any check runs. Each entry is then checked against
// the persisted Confirmed sum plus the Confirmed quantities of the entries
// before it in the same batch, so two entries cannot jointly overshoot a quota.
func (s *RegistrationService) RegisterBatch(ctx context.Context, reqs []model.RegisterRequest) ([]model.Registration, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no registrations provided", model.ErrInvalidArgument)
	}

	regs := make([]*model.Registration, 0, len(reqs))
	invalid := map[string]string{}
	for i, req := range reqs {
		reg, err := s.newRegistration(req, fmt.Sprintf("registrations[%d]", i))
		if err != nil {
			if err := mergeValidation(invalid, err); err != nil {
				return nil, err
			}
			continue
		}
		regs = append(regs, reg)
	}
	if len(invalid) > 0 {
		return nil, &model.ValidationError{Fields: invalid}
	}

	types := make(map[string]*model.TicketType)
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		sold := make(map[string]int)
		for _, id := range distinctTicketTypes(regs) {
			tt, err := s.store.GetTicketTypeForUpdate(ctx, id)
			if errors.Is(err, model.ErrNotFound) {
				return model.NotFound("ticket type " + id)
			}
			if err != nil {
				return err
			}
			n, err := s.store.SumConfirmedQuantity(ctx, id)
			if err != nil {
				return err
			}
			types[id] = tt
			sold[id] = n
		}

		for _, reg := range regs {
			tt := types[reg.TicketTypeID]
			if reg.Quantity > tt.Quota-sold[tt.ID] {
				return model.QuotaExceededError(tt.Name)
			}
			if reg.Status == model.StatusConfirmed {
				sold[tt.ID] += reg.Quantity
			}
			reg.EventID = tt.EventID
		}
		return s.store.CreateRegistrations(ctx, regs)
	})
	if err != nil {
		return nil, fmt.Errorf("register batch: %w", err)
	}

	created := make([]model.Registration, 0, len(regs))
	confirmations := make([]model.Confirmation, 0, len(regs))
	for _, reg := range regs {
		created = append(created, *reg)
		confirmations = append(confirmations, model.Confirmation{Registration: *reg, TicketType: *types[reg.TicketTypeID]})
	}
	s.logger.Info("registration batch created", zap.Int("registrations", len(created)))
	s.notify(context.WithoutCancel(ctx), confirmations)
	return created, nil
}

// ListRegistrations returns all registrations for an event.
func (s *RegistrationService) ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	if uuid.Validate(eventID) != nil {
		return nil, model.NotFound("event")
	}
	exists, err := s.store.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if !exists {
		return nil, model.NotFound("event")
	}
	regs, err := s.store.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// newRegistration normalizes and validates one request. Nothing here touches
// the store.
func (s *RegistrationService) newRegistration(req model.RegisterRequest, prefix string) (*model.Registration, error) {
	req.TicketTypeID = strings.TrimSpace(req.TicketTypeID)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req, prefix); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusConfirmed
	}
	return &model.Registration{
		ID:           uuid.NewString(),
		TicketTypeID: strings.ToLower(req.TicketTypeID),
		FullName:     req.FullName,
		Email:        req.Email,
		Quantity:     req.Quantity,
		RegisteredAt: s.clock.Now(),
		Status:       status,
	}, nil
}

// notify hands committed registrations to the notifier. The registrations are
// already durable, so failures are only logged.
func (s *RegistrationService) notify(ctx context.Context, created []model.Confirmation) {
	if s.notifier == nil || len(created) == 0 {
		return
	}
	if err := s.notifier.RegistrationsCreated(ctx, created); err != nil {
		s.logger.Warn("registration notification failed",
			zap.Int("registrations", len(created)),
			zap.Error(err),
		)
	}
}

func distinctTicketTypes(regs []*model.Registration) []string {
	seen := make(map[string]struct{}, len(regs))
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		if _, ok := seen[reg.TicketTypeID]; ok {
			continue
		}
		seen[reg.TicketTypeID] = struct{}{}
		ids = append(ids, reg.TicketTypeID)
	}
	sort.Strings(ids)
	return ids
}
