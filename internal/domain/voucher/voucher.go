package voucher

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
)

var (
	ErrVoucherMissing  = fault.NotFound("voucher: not found")
	ErrDuplicateCode   = fault.Conflict("voucher: code already exists")
	ErrLimitReached    = fault.Conflict("voucher: usage limit reached")
	ErrCodeRequired    = fault.Validation("voucher: code is required")
	ErrExpiryInPast    = fault.Validation("voucher: expiration must be in the future")
	ErrUsageLimitRange = fault.Validation("voucher: usage limit must be at least 1")
)

type VoucherID string
type UsageID string

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// RedemptionState is the per-voucher state machine. Every state except
// StateActive is terminal for redemption; none of them delete the
// voucher or its usage history.
type RedemptionState string

const (
	StateActive       RedemptionState = "active"
	StateDeactivated  RedemptionState = "deactivated"
	StateExpired      RedemptionState = "expired"
	StateLimitReached RedemptionState = "limit_reached"
)

// Voucher is an owner-issued discount code scoped to a single property.
// Codes are unique across the whole platform, case-insensitively.
type Voucher struct {
	ID         VoucherID
	Code       string
	Owner      property.OwnerID
	PropertyID property.PropertyID
	Type       DiscountType
	// Percent holds the discount percentage for percentage vouchers.
	Percent int
	// Amount holds the discount for fixed vouchers.
	Amount     money.Money
	Expiration time.Time
	UsageLimit int
	UsedCount  int
	IsActive   bool
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

// Usage is the append-only audit record of one redemption. Never mutated
// or deleted once the booking it discounted has committed.
type Usage struct {
	ID         UsageID
	VoucherID  VoucherID
	BookingID  string
	CustomerID string
	Amount     money.Money
	At         time.Time
}

type Repository interface {
	ByID(ctx context.Context, id VoucherID) (*Voucher, error)
	// ByCode resolves a canonicalized code platform-wide.
	ByCode(ctx context.Context, code string) (*Voucher, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, v *Voucher) error
	// Redeem performs the compare-and-increment: usedCount is bumped and
	// the usage appended in one atomic step relative to concurrent
	// redemptions of the same voucher. Returns ErrLimitReached when the
	// counter is already at the limit.
	Redeem(ctx context.Context, id VoucherID, usage Usage) error
	// Release undoes a redemption whose booking write failed. The usage
	// record is removed because its booking never existed.
	Release(ctx context.Context, id VoucherID, usageID UsageID) error
}

type UsageRepository interface {
	ListByVoucher(ctx context.Context, id VoucherID) ([]Usage, error)
}

// Bounds is the creation-time policy for discount sizes.
type Bounds struct {
	MinPercent int
	MaxPercent int
	MinFixed   money.Money
	MaxFixed   money.Money
}

// DefaultBounds allows 1-100% and fixed discounts from 1 to 10000.
func DefaultBounds(currency string) Bounds {
	return Bounds{
		MinPercent: 1,
		MaxPercent: 100,
		MinFixed:   money.Must(1, currency),
		MaxFixed:   money.Must(10000, currency),
	}
}

type CreateParams struct {
	ID         VoucherID
	Code       string
	Owner      property.OwnerID
	PropertyID property.PropertyID
	Type       DiscountType
	Percent    int
	Amount     money.Money
	Expiration time.Time
	UsageLimit int
	Now        time.Time
}

func NewVoucher(params CreateParams, bounds Bounds) (*Voucher, error) {
	code := CanonicalCode(params.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, fault.Validation("voucher: property id is required")
	}
	switch params.Type {
	case DiscountPercentage:
		if params.Percent < bounds.MinPercent || params.Percent > bounds.MaxPercent {
			return nil, fault.Validation("voucher: percentage outside the allowed range")
		}
	case DiscountFixed:
		if params.Amount.Amount < bounds.MinFixed.Amount || params.Amount.Amount > bounds.MaxFixed.Amount {
			return nil, fault.Validation("voucher: fixed amount outside the allowed range")
		}
	default:
		return nil, fault.Validation("voucher: unknown discount type")
	}
	now := params.Now.UTC()
	if !params.Expiration.After(now) {
		return nil, ErrExpiryInPast
	}
	if params.UsageLimit < 1 {
		return nil, ErrUsageLimitRange
	}
	v := &Voucher{
		ID:         params.ID,
		Code:       code,
		Owner:      params.Owner,
		PropertyID: params.PropertyID,
		Type:       params.Type,
		Percent:    params.Percent,
		Amount:     params.Amount,
		Expiration: params.Expiration.UTC(),
		UsageLimit: params.UsageLimit,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	v.Record(VoucherCreated{VoucherID: v.ID, PropertyID: v.PropertyID, Code: v.Code, At: now})
	return v, nil
}

// CanonicalCode normalizes a code for its case-insensitive uniqueness check.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// State reports the redemption state at the given instant.
func (v *Voucher) State(now time.Time) RedemptionState {
	switch {
	case !v.IsActive:
		return StateDeactivated
	case now.After(v.Expiration):
		return StateExpired
	case v.UsedCount >= v.UsageLimit:
		return StateLimitReached
	default:
		return StateActive
	}
}

// Deactivate is the explicit owner kill switch. History is kept.
func (v *Voucher) Deactivate(now time.Time) {
	v.IsActive = false
	v.UpdatedAt = now.UTC()
}

// Discount computes the amount taken off a booking total for the given
// undiscounted subtotal. Fixed discounts are capped at the subtotal so a
// total can never go negative.
func (v *Voucher) Discount(subtotal money.Money) (money.Money, error) {
	switch v.Type {
	case DiscountPercentage:
		return subtotal.Percent(v.Percent), nil
	case DiscountFixed:
		capped, err := v.Amount.Min(subtotal)
		if err != nil {
			return money.Money{}, err
		}
		return capped, nil
	default:
		return money.Money{}, fault.Validation("voucher: unknown discount type")
	}
}
