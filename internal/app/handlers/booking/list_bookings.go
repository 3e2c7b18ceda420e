package booking

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/fault"
)

const listCustomerBookingsKey = "booking.list_by_customer"

type ListCustomerBookingsQuery struct {
	CustomerID string
}

func (q ListCustomerBookingsQuery) Key() string { return listCustomerBookingsKey }

type ListCustomerBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListCustomerBookingsHandler) Handle(ctx context.Context, q ListCustomerBookingsQuery) (dto.BookingCollection, error) {
	customerID := strings.TrimSpace(q.CustomerID)
	if customerID == "" {
		return dto.BookingCollection{}, fault.Validation("booking: customer id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByCustomer(execCtx, domainbooking.CustomerID(customerID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, bk := range bookings {
		items = append(items, dto.MapBookingSummary(bk))
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListCustomerBookingsQuery, dto.BookingCollection] = (*ListCustomerBookingsHandler)(nil)
