package voucher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

var testNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func percentVoucher(t *testing.T, percent int) *Voucher {
	t.Helper()
	v, err := NewVoucher(CreateParams{
		ID:         "vch-1",
		Code:       "summer20",
		Owner:      "own-1",
		PropertyID: "prop-1",
		Type:       DiscountPercentage,
		Percent:    percent,
		Expiration: testNow.AddDate(0, 1, 0),
		UsageLimit: 3,
		Now:        testNow,
	}, DefaultBounds("USD"))
	require.NoError(t, err)
	return v
}

func fixedVoucher(t *testing.T, amount int64) *Voucher {
	t.Helper()
	v, err := NewVoucher(CreateParams{
		ID:         "vch-2",
		Code:       "flat50",
		Owner:      "own-1",
		PropertyID: "prop-1",
		Type:       DiscountFixed,
		Amount:     money.Must(amount, "USD"),
		Expiration: testNow.AddDate(0, 1, 0),
		UsageLimit: 1,
		Now:        testNow,
	}, DefaultBounds("USD"))
	require.NoError(t, err)
	return v
}

func TestNewVoucher(t *testing.T) {
	t.Run("canonicalizes the code", func(t *testing.T) {
		v := percentVoucher(t, 20)
		assert.Equal(t, "SUMMER20", v.Code)
		assert.True(t, v.IsActive)
		assert.Equal(t, 0, v.UsedCount)
	})

	t.Run("rejects blank code", func(t *testing.T) {
		_, err := NewVoucher(CreateParams{
			Code:       "   ",
			PropertyID: "prop-1",
			Type:       DiscountPercentage,
			Percent:    10,
			Expiration: testNow.AddDate(0, 1, 0),
			UsageLimit: 1,
			Now:        testNow,
		}, DefaultBounds("USD"))
		assert.ErrorIs(t, err, ErrCodeRequired)
	})

	t.Run("enforces percent bounds", func(t *testing.T) {
		bounds := Bounds{MinPercent: 5, MaxPercent: 50, MinFixed: money.Must(1, "USD"), MaxFixed: money.Must(100, "USD")}
		params := CreateParams{
			Code: "X", PropertyID: "prop-1", Type: DiscountPercentage,
			Percent: 4, Expiration: testNow.AddDate(0, 1, 0), UsageLimit: 1, Now: testNow,
		}
		_, err := NewVoucher(params, bounds)
		assert.Error(t, err)
		params.Percent = 51
		_, err = NewVoucher(params, bounds)
		assert.Error(t, err)
		params.Percent = 50
		_, err = NewVoucher(params, bounds)
		assert.NoError(t, err)
	})

	t.Run("enforces fixed bounds", func(t *testing.T) {
		bounds := DefaultBounds("USD")
		params := CreateParams{
			Code: "X", PropertyID: "prop-1", Type: DiscountFixed,
			Amount: money.Must(10001, "USD"), Expiration: testNow.AddDate(0, 1, 0), UsageLimit: 1, Now: testNow,
		}
		_, err := NewVoucher(params, bounds)
		assert.Error(t, err)
	})

	t.Run("expiration must be strictly future", func(t *testing.T) {
		params := CreateParams{
			Code: "X", PropertyID: "prop-1", Type: DiscountPercentage,
			Percent: 10, Expiration: testNow, UsageLimit: 1, Now: testNow,
		}
		_, err := NewVoucher(params, DefaultBounds("USD"))
		assert.ErrorIs(t, err, ErrExpiryInPast)
	})

	t.Run("usage limit at least one", func(t *testing.T) {
		params := CreateParams{
			Code: "X", PropertyID: "prop-1", Type: DiscountPercentage,
			Percent: 10, Expiration: testNow.AddDate(0, 1, 0), UsageLimit: 0, Now: testNow,
		}
		_, err := NewVoucher(params, DefaultBounds("USD"))
		assert.ErrorIs(t, err, ErrUsageLimitRange)
	})
}

func TestState(t *testing.T) {
	t.Run("deactivated wins over expired", func(t *testing.T) {
		v := percentVoucher(t, 20)
		v.Deactivate(testNow)
		assert.Equal(t, StateDeactivated, v.State(v.Expiration.AddDate(0, 0, 1)))
	})

	t.Run("expired wins over limit reached", func(t *testing.T) {
		v := percentVoucher(t, 20)
		v.UsedCount = v.UsageLimit
		assert.Equal(t, StateExpired, v.State(v.Expiration.AddDate(0, 0, 1)))
	})

	t.Run("limit reached", func(t *testing.T) {
		v := percentVoucher(t, 20)
		v.UsedCount = v.UsageLimit
		assert.Equal(t, StateLimitReached, v.State(testNow))
	})

	t.Run("active otherwise", func(t *testing.T) {
		v := percentVoucher(t, 20)
		assert.Equal(t, StateActive, v.State(testNow))
	})
}

func TestDiscount(t *testing.T) {
	t.Run("percentage of the subtotal", func(t *testing.T) {
		v := percentVoucher(t, 20)
		d, err := v.Discount(money.Must(345, "USD"))
		require.NoError(t, err)
		assert.Equal(t, int64(69), d.Amount)
	})

	t.Run("fixed capped at the subtotal", func(t *testing.T) {
		v := fixedVoucher(t, 500)
		d, err := v.Discount(money.Must(345, "USD"))
		require.NoError(t, err)
		assert.Equal(t, int64(345), d.Amount)

		d, err = v.Discount(money.Must(1000, "USD"))
		require.NoError(t, err)
		assert.Equal(t, int64(500), d.Amount)
	})
}

type stubVoucherRepo struct {
	Repository
	voucher *Voucher
	err     error
}

func (s stubVoucherRepo) ByCode(ctx context.Context, code string) (*Voucher, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.voucher, nil
}

func TestValidator(t *testing.T) {
	now := func() time.Time { return testNow }
	subtotal := money.Must(345, "USD")

	t.Run("unknown code", func(t *testing.T) {
		val := &Validator{Repo: stubVoucherRepo{err: ErrVoucherMissing}, Now: now}
		res, err := val.Validate(context.Background(), "NOPE", "prop-1", subtotal)
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, ReasonNotFound, res.Reason)
	})

	t.Run("code scoped to another property reads as unknown", func(t *testing.T) {
		val := &Validator{Repo: stubVoucherRepo{voucher: percentVoucher(t, 20)}, Now: now}
		res, err := val.Validate(context.Background(), "SUMMER20", "prop-other", subtotal)
		require.NoError(t, err)
		assert.Equal(t, ReasonNotFound, res.Reason)
	})

	t.Run("deactivated", func(t *testing.T) {
		v := percentVoucher(t, 20)
		v.Deactivate(testNow)
		val := &Validator{Repo: stubVoucherRepo{voucher: v}, Now: now}
		res, err := val.Validate(context.Background(), "SUMMER20", "prop-1", subtotal)
		require.NoError(t, err)
		assert.Equal(t, ReasonInactive, res.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		v := percentVoucher(t, 20)
		val := &Validator{Repo: stubVoucherRepo{voucher: v}, Now: func() time.Time { return v.Expiration.AddDate(0, 0, 1) }}
		res, err := val.Validate(context.Background(), "SUMMER20", "prop-1", subtotal)
		require.NoError(t, err)
		assert.Equal(t, ReasonExpired, res.Reason)
	})

	t.Run("limit reached", func(t *testing.T) {
		v := percentVoucher(t, 20)
		v.UsedCount = v.UsageLimit
		val := &Validator{Repo: stubVoucherRepo{voucher: v}, Now: now}
		res, err := val.Validate(context.Background(), "SUMMER20", "prop-1", subtotal)
		require.NoError(t, err)
		assert.Equal(t, ReasonLimitReached, res.Reason)
	})

	t.Run("valid voucher carries its discount", func(t *testing.T) {
		val := &Validator{Repo: stubVoucherRepo{voucher: percentVoucher(t, 20)}, Now: now}
		res, err := val.Validate(context.Background(), "summer20", "prop-1", subtotal)
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, int64(69), res.Discount.Amount)
	})
}
