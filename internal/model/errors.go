package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced event or ticket type does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSoldOut is returned when a ticket type has no units left at all.
	ErrSoldOut = errors.New("sold out")

	// ErrQuotaExceeded is returned when a requested quantity does not fit in
	// the remaining quota.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidArgument is returned for malformed calls such as an empty batch.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is returned when request fields break their constraints.
	ErrValidation = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with the kind of record that was missing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// TicketTypeError is a business-rule rejection naming the ticket type.
type TicketTypeError struct {
	Err        error
	TicketType string
}

// SoldOutError builds the rejection for a ticket type with no units left.
func SoldOutError(ticketType string) error {
	return &TicketTypeError{Err: ErrSoldOut, TicketType: ticketType}
}

// QuotaExceededError builds the rejection for a quantity that does not fit.
func QuotaExceededError(ticketType string) error {
	return &TicketTypeError{Err: ErrQuotaExceeded, TicketType: ticketType}
}

func (e *TicketTypeError) Error() string {
	if errors.Is(e.Err, ErrSoldOut) {
		return fmt.Sprintf("the ticket %q is sold out", e.TicketType)
	}
	return fmt.Sprintf("quota exceeded for ticket type %q", e.TicketType)
}

func (e *TicketTypeError) Unwrap() error {
	return e.Err
}

// ValidationError lists field-level constraint violations, keyed by the
// JSON field path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
