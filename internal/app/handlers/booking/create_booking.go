package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
	domainvoucher "staybook/internal/domain/voucher"

	"staybook/internal/app/commands"
	handlersupport "staybook/internal/app/handlers/support"
)

const createBookingKey = "booking.create"

// CreateBookingCommand is one guest booking attempt. The handler runs
// the whole reservation sequence all-or-nothing: shape validation,
// availability re-check, charge computation, optional voucher
// redemption, booking write.
type CreateBookingCommand struct {
	CommandID       string
	PropertyID      string
	CustomerID      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	VoucherCode     string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return fault.Validation("booking: property id is required")
	}
	if strings.TrimSpace(c.CustomerID) == "" {
		return fault.Validation("booking: customer id is required")
	}
	if c.Guests < 1 {
		return domainbooking.ErrInvalidGuests
	}
	return nil
}

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	Booking dto.BookingSummary `json:"booking"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RatesPort
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, execCtx, cleanup, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	now := h.now()

	// Step 1: request shape.
	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}
	if cmd.Guests < 1 {
		return nil, domainbooking.ErrInvalidGuests
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if prop.Status != domainproperty.StatusApproved || !prop.ContractApproved {
		return nil, domainproperty.ErrNotBookable
	}
	if cmd.Guests > prop.MaxGuests {
		return nil, domainbooking.ErrGuestsExceedCap
	}
	if dr.Nights() < prop.MinNights {
		return nil, fault.Validation("booking: stay shorter than the minimum nights")
	}

	// Step 2: availability against the current confirmed set. The
	// storage layer re-validates inside SaveNew; this pass exists for
	// precise conflict diagnostics.
	confirmed, err := unit.Bookings().ConfirmedByProperty(execCtx, prop.ID)
	if err != nil {
		return nil, err
	}
	if ids := domainbooking.Conflicts(dr, confirmed); len(ids) > 0 {
		return nil, &domainbooking.ConflictError{PropertyID: prop.ID, ConflictingIDs: ids}
	}

	// Steps 3-4: nightly rate and charge breakdown. A property without a
	// contracted final rate books at the proposed rate, flagged as such.
	nightly, fallback := prop.NightlyRate()
	charges, err := h.Rates.BookingTotal(nightly, dr.Nights())
	if err != nil {
		return nil, err
	}

	// Step 5: voucher, validated against the undiscounted subtotal.
	var redeemed *domainvoucher.Voucher
	if cmd.VoucherCode != "" {
		validator := &domainvoucher.Validator{Repo: unit.Vouchers(), Now: h.now}
		result, err := validator.Validate(execCtx, cmd.VoucherCode, prop.ID, charges.Subtotal)
		if err != nil {
			return nil, err
		}
		if !result.OK {
			return nil, fault.Conflict("booking: voucher not applicable: " + string(result.Reason))
		}
		charges, err = charges.ApplyDiscount(result.Discount)
		if err != nil {
			return nil, err
		}
		redeemed = result.Voucher
	}

	// Step 6: persist. SaveNew serializes the overlap re-check with the
	// write, so two racing requests for the same nights cannot both land.
	bookingID := cmd.CommandID
	if bookingID == "" {
		bookingID = uuid.NewString()
	}
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:           domainbooking.BookingID(bookingID),
		PropertyID:   prop.ID,
		CustomerID:   domainbooking.CustomerID(cmd.CustomerID),
		Range:        dr,
		Guests:       cmd.Guests,
		MaxGuests:    prop.MaxGuests,
		Charges:      charges,
		VoucherCode:  voucherCode(redeemed),
		RateFallback: fallback,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().SaveNew(execCtx, bk); err != nil {
		return nil, err
	}

	if redeemed != nil {
		usage := domainvoucher.Usage{
			ID:         domainvoucher.UsageID(uuid.NewString()),
			VoucherID:  redeemed.ID,
			BookingID:  string(bk.ID),
			CustomerID: cmd.CustomerID,
			Amount:     charges.Discount,
			At:         now,
		}
		if err := unit.Vouchers().Redeem(execCtx, redeemed.ID, usage); err != nil {
			// A concurrent redeemer won the last use between validation
			// and here. Compensate the booking write and abort with no
			// visible effects.
			_ = unit.Bookings().Remove(execCtx, bk.ID)
			return nil, err
		}
		bk.Record(domainvoucher.VoucherRedeemed{VoucherID: redeemed.ID, BookingID: string(bk.ID), Amount: usage.Amount, At: now})
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

	return &CreateBookingResult{Booking: dto.MapBookingSummary(bk)}, nil
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func voucherCode(v *domainvoucher.Voucher) string {
	if v == nil {
		return ""
	}
	return v.Code
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
var _ middleware.ValidatableCommand = (*CreateBookingCommand)(nil)
