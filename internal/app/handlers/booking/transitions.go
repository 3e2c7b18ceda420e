package booking

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/clock"
)

const (
	cancelBookingKey   = "booking.cancel"
	completeBookingKey = "booking.complete"
)

// CancelBookingCommand releases a confirmed stay's dates. The range on
// the record never changes; rebooking different dates means a fresh
// booking.
type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type TransitionResult struct {
	Booking dto.BookingSummary `json:"booking"`
}

type TransitionHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *TransitionHandler) HandleCancel(ctx context.Context, cmd CancelBookingCommand) (*TransitionResult, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Cancel(cmd.Reason, now)
	})
}

func (h *TransitionHandler) HandleComplete(ctx context.Context, cmd CompleteBookingCommand) (*TransitionResult, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Complete(now)
	})
}

func (h *TransitionHandler) transition(ctx context.Context, id string, apply func(*domainbooking.Booking, time.Time) error) (*TransitionResult, error) {
	unit, execCtx, cleanup, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bk, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(id))
	if err != nil {
		return nil, err
	}
	if err := apply(bk, h.now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
	}
	return &TransitionResult{Booking: dto.MapBookingSummary(bk)}, nil
}

func (h *TransitionHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

// CancelAdapter and CompleteAdapter expose the two transitions as
// separately registrable command handlers.
type CancelAdapter struct{ *TransitionHandler }

func (a CancelAdapter) Handle(ctx context.Context, cmd CancelBookingCommand) (*TransitionResult, error) {
	return a.HandleCancel(ctx, cmd)
}

type CompleteAdapter struct{ *TransitionHandler }

func (a CompleteAdapter) Handle(ctx context.Context, cmd CompleteBookingCommand) (*TransitionResult, error) {
	return a.HandleComplete(ctx, cmd)
}

var _ commands.Handler[CancelBookingCommand, *TransitionResult] = CancelAdapter{}
var _ commands.Handler[CompleteBookingCommand, *TransitionResult] = CompleteAdapter{}
