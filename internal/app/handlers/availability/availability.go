package availability

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

const (
	checkAvailabilityKey = "availability.check"
	bookedDatesKey       = "availability.booked_dates"
)

// CheckAvailabilityQuery probes whether a date range is free. The answer
// is advisory for UI flows; the booking write re-checks under its own
// serialization.
type CheckAvailabilityQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Availability{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propID := domainproperty.PropertyID(q.PropertyID)
	if _, err := unit.Properties().ByID(execCtx, propID); err != nil {
		return dto.Availability{}, err
	}
	confirmed, err := unit.Bookings().ConfirmedByProperty(execCtx, propID)
	if err != nil {
		return dto.Availability{}, err
	}
	conflicts := domainbooking.Conflicts(dr, confirmed)
	ids := make([]string, 0, len(conflicts))
	for _, id := range conflicts {
		ids = append(ids, string(id))
	}
	return dto.Availability{
		PropertyID:  q.PropertyID,
		CheckIn:     dr.CheckIn.Format(daterange.DayFormat),
		CheckOut:    dr.CheckOut.Format(daterange.DayFormat),
		Available:   len(ids) == 0,
		ConflictIDs: ids,
	}, nil
}

// GetBookedDatesQuery lists every occupied calendar day of a property.
type GetBookedDatesQuery struct {
	PropertyID string
}

func (q GetBookedDatesQuery) Key() string { return bookedDatesKey }

type GetBookedDatesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookedDatesHandler) Handle(ctx context.Context, q GetBookedDatesQuery) (dto.Calendar, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propID := domainproperty.PropertyID(q.PropertyID)
	if _, err := unit.Properties().ByID(execCtx, propID); err != nil {
		return dto.Calendar{}, err
	}
	confirmed, err := unit.Bookings().ConfirmedByProperty(execCtx, propID)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.Calendar{
		PropertyID: q.PropertyID,
		BookedDays: domainbooking.BookedDays(confirmed),
	}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
var _ queries.Handler[GetBookedDatesQuery, dto.Calendar] = (*GetBookedDatesHandler)(nil)
