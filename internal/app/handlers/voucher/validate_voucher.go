package voucher

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
	domainvoucher "staybook/internal/domain/voucher"
)

const validateVoucherKey = "voucher.validate"

// ValidateVoucherQuery asks whether a code applies to a property for a
// candidate subtotal. A "no" is a tagged result, not an error.
type ValidateVoucherQuery struct {
	Code       string
	PropertyID string
	Subtotal   int64
	Currency   string
}

func (q ValidateVoucherQuery) Key() string { return validateVoucherKey }

type ValidateVoucherHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
}

func (h *ValidateVoucherHandler) Handle(ctx context.Context, q ValidateVoucherQuery) (dto.VoucherValidation, error) {
	if q.Subtotal <= 0 {
		return dto.VoucherValidation{}, fault.Validation("voucher: subtotal must be positive")
	}
	subtotal, err := money.New(q.Subtotal, q.Currency)
	if err != nil {
		return dto.VoucherValidation{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.VoucherValidation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	validator := &domainvoucher.Validator{Repo: unit.Vouchers(), Now: h.now}
	result, err := validator.Validate(execCtx, q.Code, domainproperty.PropertyID(q.PropertyID), subtotal)
	if err != nil {
		return dto.VoucherValidation{}, err
	}
	return dto.MapVoucherValidation(result), nil
}

func (h *ValidateVoucherHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[ValidateVoucherQuery, dto.VoucherValidation] = (*ValidateVoucherHandler)(nil)
