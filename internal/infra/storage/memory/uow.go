package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainvoucher "staybook/internal/domain/voucher"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertyRepo domainproperty.Repository
	BookingRepo  domainbooking.Repository
	VoucherRepo  domainvoucher.Repository
	UsageRepo    domainvoucher.UsageRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. Writes are not
// isolated; atomicity for the overlap and redemption checks lives in
// the repositories themselves.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertyRepo == nil || f.BookingRepo == nil || f.VoucherRepo == nil || f.UsageRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties: f.PropertyRepo,
		bookings:   f.BookingRepo,
		vouchers:   f.VoucherRepo,
		usages:     f.UsageRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties domainproperty.Repository
	bookings   domainbooking.Repository
	vouchers   domainvoucher.Repository
	usages     domainvoucher.UsageRepository
}

func (u *Unit) Properties() domainproperty.Repository {
	return u.properties
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Vouchers() domainvoucher.Repository {
	return u.vouchers
}

func (u *Unit) VoucherUsages() domainvoucher.UsageRepository {
	return u.usages
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
