package voucher

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
)

// Reason explains a failed validation for user-facing messaging.
type Reason string

const (
	ReasonNotFound     Reason = "not_found"
	ReasonInactive     Reason = "inactive"
	ReasonExpired      Reason = "expired"
	ReasonLimitReached Reason = "limit_reached"
)

// ValidationResult is a tagged outcome, not an error: an inapplicable
// voucher is an expected result the caller re-prompts on.
type ValidationResult struct {
	OK       bool
	Reason   Reason
	Voucher  *Voucher
	Discount money.Money
}

// Validator resolves codes and decides redeemability against a clock.
type Validator struct {
	Repo Repository
	Now  func() time.Time
}

// Validate looks up the code (case-insensitive, scoped to the property)
// and runs the redeemability checks in order, short-circuiting at the
// first failure: exists -> active -> unexpired -> under limit. On
// success the discount for the given subtotal is included.
func (val *Validator) Validate(ctx context.Context, code string, propertyID property.PropertyID, subtotal money.Money) (ValidationResult, error) {
	v, err := val.Repo.ByCode(ctx, CanonicalCode(code))
	if err != nil {
		if errors.Is(err, ErrVoucherMissing) {
			return ValidationResult{Reason: ReasonNotFound}, nil
		}
		return ValidationResult{}, err
	}
	if v.PropertyID != propertyID {
		// A voucher is scoped to exactly one property; a code issued for
		// a different property reads as unknown here.
		return ValidationResult{Reason: ReasonNotFound}, nil
	}
	switch v.State(val.Now()) {
	case StateDeactivated:
		return ValidationResult{Reason: ReasonInactive, Voucher: v}, nil
	case StateExpired:
		return ValidationResult{Reason: ReasonExpired, Voucher: v}, nil
	case StateLimitReached:
		return ValidationResult{Reason: ReasonLimitReached, Voucher: v}, nil
	}
	discount, err := v.Discount(subtotal)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{OK: true, Voucher: v, Discount: discount}, nil
}
