// Package model defines the core domain types for the event ticketing system.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "Pending"
	StatusConfirmed RegistrationStatus = "Confirmed"
	StatusCanceled  RegistrationStatus = "Canceled"
)

// Event represents an event created by an organizer. It owns its ticket types.
type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	Location    string       `json:"location,omitempty"`
	MaxCapacity int          `json:"max_capacity"`
	TicketTypes []TicketType `json:"ticket_types"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TicketType is a priced, quota-bounded category of admission under one event.
type TicketType struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Quota      int       `json:"quota"`
	CreatedAt  time.Time `json:"created_at"`
}

// Price renders PriceCents as a two-decimal amount, e.g. "49.90".
func (t TicketType) Price() string {
	return FormatCents(t.PriceCents)
}

// MarshalJSON adds the rendered price next to price_cents.
func (t TicketType) MarshalJSON() ([]byte, error) {
	type ticketType TicketType
	return json.Marshal(struct {
		ticketType
		Price string `json:"price"`
	}{ticketType(t), t.Price()})
}

// FormatCents renders an amount in cents with two decimal places.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Registration is one attendee claiming some quantity of a ticket type.
// EventID is always derived from the ticket type.
type Registration struct {
	ID           string             `json:"id"`
	TicketTypeID string             `json:"ticket_type_id"`
	EventID      string             `json:"event_id"`
	FullName     string             `json:"full_name"`
	Email        string             `json:"email"`
	Quantity     int                `json:"quantity"`
	RegisteredAt time.Time          `json:"registered_at"`
	Status       RegistrationStatus `json:"status"`
}

// Confirmation pairs a committed registration with its ticket type, for
// downstream notifications.
type Confirmation struct {
	Registration Registration
	TicketType   TicketType
}

// TicketAvailability summarises how much of a ticket type's quota is left.
type TicketAvailability struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quota        int    `json:"quota"`
	Sold         int    `json:"sold"`
	Remaining    int    `json:"remaining"`
}

// SoldOut reports whether no units remain.
func (a TicketAvailability) SoldOut() bool {
	return a.Remaining <= 0
}

// CreateEventRequest is the payload for creating a new event, optionally
// with its ticket types.
type CreateEventRequest struct {
	Name        string                    `json:"name" validate:"required,max=100"`
	Description string                    `json:"description" validate:"max=500"`
	StartDate   time.Time                 `json:"start_date"`
	EndDate     time.Time                 `json:"end_date"`
	Location    string                    `json:"location" validate:"max=100"`
	MaxCapacity int                       `json:"max_capacity" validate:"gte=0"`
	TicketTypes []CreateTicketTypeRequest `json:"ticket_types" validate:"dive"`
}

// CreateTicketTypeRequest is the payload for adding a ticket type.
type CreateTicketTypeRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Quota      int    `json:"quota" validate:"min=1,max=2147483647"`
}

// RegisterRequest is the payload for registering for a ticket type.
// There is deliberately no event id: it is derived from the ticket type.
type RegisterRequest struct {
	TicketTypeID string             `json:"ticket_type_id" validate:"required,uuid"`
	FullName     string             `json:"full_name" validate:"required,max=100"`
	Email        string             `json:"email" validate:"required,email,max=100"`
	Quantity     int                `json:"quantity" validate:"min=1,max=2147483647"`
	Status       RegistrationStatus `json:"status" validate:"omitempty,oneof=Pending Confirmed Canceled"`
}

// RegisterBatchRequest is the payload for registering several entries at once.
type RegisterBatchRequest struct {
	Registrations []RegisterRequest `json:"registrations"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
