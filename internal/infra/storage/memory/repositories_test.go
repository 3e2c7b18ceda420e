package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainvoucher "staybook/internal/domain/voucher"
)

var testNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func booking(t *testing.T, id, in, out string) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		Range:      dr,
		Guests:     2,
		Now:        testNow,
	})
	require.NoError(t, err)
	return b
}

func voucher(t *testing.T, id, code string, limit int) *domainvoucher.Voucher {
	t.Helper()
	v, err := domainvoucher.NewVoucher(domainvoucher.CreateParams{
		ID:         domainvoucher.VoucherID(id),
		Code:       code,
		Owner:      "own-1",
		PropertyID: "prop-1",
		Type:       domainvoucher.DiscountPercentage,
		Percent:    10,
		Expiration: testNow.AddDate(0, 1, 0),
		UsageLimit: limit,
		Now:        testNow,
	}, domainvoucher.DefaultBounds("USD"))
	require.NoError(t, err)
	return v
}

func TestPropertyRepository(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	_, err := repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainproperty.ErrPropertyMissing)

	p, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID: "prop-1", Owner: "own-1", Title: "Loft",
		ProposedRate: money.Must(100, "USD"), MaxGuests: 4, Now: testNow,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	got, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)

	// Mutating the returned copy must not leak into the store.
	got.Title = "changed"
	again, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "Loft", again.Title)
}

func TestBookingRepositorySaveNew(t *testing.T) {
	ctx := context.Background()

	t.Run("overlap rejected", func(t *testing.T) {
		repo := NewBookingRepository()
		require.NoError(t, repo.SaveNew(ctx, booking(t, "bk-1", "2026-09-10", "2026-09-15")))
		err := repo.SaveNew(ctx, booking(t, "bk-2", "2026-09-12", "2026-09-16"))
		var conflict *domainbooking.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []domainbooking.BookingID{"bk-1"}, conflict.ConflictingIDs)
	})

	t.Run("back to back accepted", func(t *testing.T) {
		repo := NewBookingRepository()
		require.NoError(t, repo.SaveNew(ctx, booking(t, "bk-1", "2026-09-10", "2026-09-15")))
		require.NoError(t, repo.SaveNew(ctx, booking(t, "bk-2", "2026-09-15", "2026-09-18")))
	})

	t.Run("cancelled booking frees the dates", func(t *testing.T) {
		repo := NewBookingRepository()
		first := booking(t, "bk-1", "2026-09-10", "2026-09-15")
		require.NoError(t, repo.SaveNew(ctx, first))
		require.NoError(t, first.Cancel("", testNow))
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.SaveNew(ctx, booking(t, "bk-2", "2026-09-10", "2026-09-15")))
	})

	t.Run("concurrent overlapping inserts produce exactly one winner", func(t *testing.T) {
		repo := NewBookingRepository()
		const attempts = 32
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b := booking(t, fmt.Sprintf("bk-%d", i), "2026-09-10", "2026-09-15")
				errs[i] = repo.SaveNew(ctx, b)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			var conflict *domainbooking.ConflictError
			assert.ErrorAs(t, err, &conflict)
		}
		assert.Equal(t, 1, winners)

		confirmed, err := repo.ConfirmedByProperty(ctx, "prop-1")
		require.NoError(t, err)
		assert.Len(t, confirmed, 1)
	})
}

func TestBookingRepositoryRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	require.NoError(t, repo.SaveNew(ctx, booking(t, "bk-1", "2026-09-10", "2026-09-12")))
	require.NoError(t, repo.Remove(ctx, "bk-1"))
	_, err := repo.ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrBookingMissing)
	assert.ErrorIs(t, repo.Remove(ctx, "bk-1"), domainbooking.ErrBookingMissing)
}

func TestVoucherRepositoryRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("limit enforced", func(t *testing.T) {
		repo := NewVoucherRepository()
		require.NoError(t, repo.Save(ctx, voucher(t, "vch-1", "CODE1", 1)))

		usage := domainvoucher.Usage{ID: "use-1", VoucherID: "vch-1", BookingID: "bk-1", At: testNow}
		require.NoError(t, repo.Redeem(ctx, "vch-1", usage))
		err := repo.Redeem(ctx, "vch-1", domainvoucher.Usage{ID: "use-2", VoucherID: "vch-1", At: testNow})
		assert.ErrorIs(t, err, domainvoucher.ErrLimitReached)

		got, err := repo.ByID(ctx, "vch-1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.UsedCount)
	})

	t.Run("concurrent redemptions of the last slot serialize", func(t *testing.T) {
		repo := NewVoucherRepository()
		require.NoError(t, repo.Save(ctx, voucher(t, "vch-2", "CODE2", 1)))

		const racers = 16
		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				usage := domainvoucher.Usage{
					ID:        domainvoucher.UsageID(fmt.Sprintf("use-%d", i)),
					VoucherID: "vch-2",
					At:        testNow,
				}
				errs[i] = repo.Redeem(ctx, "vch-2", usage)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, domainvoucher.ErrLimitReached)
			}
		}
		assert.Equal(t, 1, winners)

		got, err := repo.ByID(ctx, "vch-2")
		require.NoError(t, err)
		assert.Equal(t, 1, got.UsedCount)

		usages, err := repo.ListByVoucher(ctx, "vch-2")
		require.NoError(t, err)
		assert.Len(t, usages, 1)
	})

	t.Run("release restores the slot and drops the usage", func(t *testing.T) {
		repo := NewVoucherRepository()
		require.NoError(t, repo.Save(ctx, voucher(t, "vch-3", "CODE3", 1)))
		usage := domainvoucher.Usage{ID: "use-1", VoucherID: "vch-3", At: testNow}
		require.NoError(t, repo.Redeem(ctx, "vch-3", usage))
		require.NoError(t, repo.Release(ctx, "vch-3", "use-1"))

		got, err := repo.ByID(ctx, "vch-3")
		require.NoError(t, err)
		assert.Equal(t, 0, got.UsedCount)

		usages, err := repo.ListByVoucher(ctx, "vch-3")
		require.NoError(t, err)
		assert.Empty(t, usages)

		require.NoError(t, repo.Redeem(ctx, "vch-3", domainvoucher.Usage{ID: "use-2", VoucherID: "vch-3", At: testNow}))
	})
}

func TestVoucherRepositoryByCode(t *testing.T) {
	ctx := context.Background()
	repo := NewVoucherRepository()
	require.NoError(t, repo.Save(ctx, voucher(t, "vch-1", "Summer20", 2)))

	got, err := repo.ByCode(ctx, "summer20")
	require.NoError(t, err)
	assert.Equal(t, domainvoucher.VoucherID("vch-1"), got.ID)

	exists, err := repo.CodeExists(ctx, " SUMMER20 ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.ByCode(ctx, "unknown")
	assert.ErrorIs(t, err, domainvoucher.ErrVoucherMissing)
}
