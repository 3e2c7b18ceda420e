package booking

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrInvalidGuests   = fault.Validation("booking: guests count must be positive")
	ErrGuestsExceedCap = fault.Validation("booking: guests exceed the property limit")
	ErrInvalidState    = fault.Conflict("booking: invalid status transition")
	ErrBookingMissing  = fault.NotFound("booking: not found")
	ErrCheckInInPast   = fault.Validation("booking: check-in date is in the past")
)

type BookingID string
type CustomerID string

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking is a confirmed stay. The date range is immutable once created;
// edits require cancelling and recreating.
type Booking struct {
	ID         BookingID
	PropertyID property.PropertyID
	CustomerID CustomerID
	Range      daterange.DateRange
	Guests     int
	Charges    rates.ChargeBreakdown
	// VoucherCode records the redeemed code, if any.
	VoucherCode string
	// RateFallback marks bookings priced off the proposed rate because no
	// contracted final rate existed yet. Never silently folded into the
	// contracted-rate case.
	RateFallback bool
	Status       Status
	Payment      PaymentStatus
	BookedAt     time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

// ConflictError reports the confirmed bookings blocking a requested range.
type ConflictError struct {
	PropertyID     property.PropertyID
	ConflictingIDs []BookingID
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.ConflictingIDs))
	for i, id := range e.ConflictingIDs {
		ids[i] = string(id)
	}
	return "booking: dates conflict with booking " + strings.Join(ids, ", ")
}

// Kind classifies the conflict for the HTTP layer.
func (e *ConflictError) Kind() fault.Kind { return fault.KindConflict }

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// ConfirmedByProperty returns every booking currently blocking dates.
	ConfirmedByProperty(ctx context.Context, id property.PropertyID) ([]*Booking, error)
	// SaveNew inserts a confirmed booking, re-validating the no-overlap
	// constraint in the same critical section as the write. Concurrent
	// overlapping inserts for one property must not both succeed; the
	// loser receives a *ConflictError.
	SaveNew(ctx context.Context, b *Booking) error
	Save(ctx context.Context, b *Booking) error
	// Remove exists only to compensate a booking write whose voucher
	// redemption was lost to a concurrent redeemer.
	Remove(ctx context.Context, id BookingID) error
	ListByCustomer(ctx context.Context, id CustomerID) ([]*Booking, error)
}

type CreateParams struct {
	ID           BookingID
	PropertyID   property.PropertyID
	CustomerID   CustomerID
	Range        daterange.DateRange
	Guests       int
	MaxGuests    int
	Charges      rates.ChargeBreakdown
	VoucherCode  string
	RateFallback bool
	Now          time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.CustomerID)) == "" {
		return nil, fault.Validation("booking: customer id required")
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.MaxGuests > 0 && params.Guests > params.MaxGuests {
		return nil, ErrGuestsExceedCap
	}
	now := params.Now.UTC()
	b := &Booking{
		ID:           params.ID,
		PropertyID:   params.PropertyID,
		CustomerID:   params.CustomerID,
		Range:        params.Range,
		Guests:       params.Guests,
		Charges:      params.Charges,
		VoucherCode:  params.VoucherCode,
		RateFallback: params.RateFallback,
		Status:       StatusConfirmed,
		Payment:      PaymentPaid,
		BookedAt:     now,
		UpdatedAt:    now,
	}
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Total: b.Charges.Total, At: now})
	return b, nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, PropertyID: b.PropertyID, At: b.UpdatedAt})
	return nil
}

// ValidateCheckIn rejects stays starting before today.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}
