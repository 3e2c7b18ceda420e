package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staybook/internal/app/outbox"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
	domainvoucher "staybook/internal/domain/voucher"
	"staybook/internal/infra/storage/memory"
)

var testNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

// captureOutbox records what the handler would stage for publication.
type captureOutbox struct {
	records []appoutbox.EventRecord
}

func (o *captureOutbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.records = append(o.records, record)
	return nil
}

func (o *captureOutbox) Flush(ctx context.Context) error { return nil }

func (o *captureOutbox) names() []string {
	var out []string
	for _, r := range o.records {
		out = append(out, r.Name)
	}
	return out
}

type fixture struct {
	props    *memory.PropertyRepository
	bookings *memory.BookingRepository
	vouchers *memory.VoucherRepository
	outbox   *captureOutbox
	handler  *CreateBookingHandler
}

func newFixture(t *testing.T, minNights int) *fixture {
	t.Helper()
	f := &fixture{
		props:    memory.NewPropertyRepository(),
		bookings: memory.NewBookingRepository(),
		vouchers: memory.NewVoucherRepository(),
		outbox:   &captureOutbox{},
	}
	calc := rates.NewCalculator(rates.DefaultConfig("USD"))
	f.handler = &CreateBookingHandler{
		UoWFactory: memory.Factory{
			PropertyRepo: f.props,
			BookingRepo:  f.bookings,
			VoucherRepo:  f.vouchers,
			UsageRepo:    f.vouchers,
		},
		Rates:  calc,
		Clock:  clock.Fixed{Instant: testNow},
		Outbox: f.outbox,
	}

	p, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:           "prop-1",
		Owner:        "own-1",
		Title:        "Downtown loft",
		ProposedRate: money.Must(100, "USD"),
		MaxGuests:    4,
		MinNights:    minNights,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.NoError(t, p.Approve(calc, 15, testNow))
	require.NoError(t, p.ApproveContract(testNow))
	require.NoError(t, f.props.Save(context.Background(), p))
	return f
}

func (f *fixture) command(id string) CreateBookingCommand {
	return CreateBookingCommand{
		CommandID:  id,
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		CheckIn:    day(10),
		CheckOut:   day(13),
		Guests:     2,
	}
}

func (f *fixture) addVoucher(t *testing.T, percent, limit int) {
	t.Helper()
	v, err := domainvoucher.NewVoucher(domainvoucher.CreateParams{
		ID:         "vch-1",
		Code:       "SUMMER20",
		Owner:      "own-1",
		PropertyID: "prop-1",
		Type:       domainvoucher.DiscountPercentage,
		Percent:    percent,
		Expiration: testNow.AddDate(0, 1, 0),
		UsageLimit: limit,
		Now:        testNow,
	}, domainvoucher.DefaultBounds("USD"))
	require.NoError(t, err)
	require.NoError(t, f.vouchers.Save(context.Background(), v))
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and charges the full breakdown", func(t *testing.T) {
		f := newFixture(t, 1)
		res, err := f.handler.Handle(ctx, f.command("bk-1"))
		require.NoError(t, err)

		assert.Equal(t, "bk-1", res.Booking.ID)
		assert.Equal(t, "confirmed", res.Booking.Status)
		assert.Equal(t, 3, res.Booking.Charges.Nights)
		assert.Equal(t, int64(115), res.Booking.Charges.Nightly.Amount)
		assert.Equal(t, int64(345), res.Booking.Charges.Subtotal.Amount)
		assert.Equal(t, int64(41), res.Booking.Charges.ServiceFee.Amount)
		assert.Equal(t, int64(28), res.Booking.Charges.Taxes.Amount)
		assert.Equal(t, int64(414), res.Booking.Charges.Total.Amount)
		assert.False(t, res.Booking.RateFallback)

		stored, err := f.bookings.ByID(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
		assert.Equal(t, []string{"booking.confirmed"}, f.outbox.names())
	})

	t.Run("rejects a check-in before today", func(t *testing.T) {
		f := newFixture(t, 1)
		cmd := f.command("bk-1")
		cmd.CheckIn = testNow.AddDate(0, 0, -2)
		cmd.CheckOut = testNow.AddDate(0, 0, 1)
		_, err := f.handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
	})

	t.Run("rejects a zero-night stay", func(t *testing.T) {
		f := newFixture(t, 1)
		cmd := f.command("bk-1")
		cmd.CheckOut = cmd.CheckIn
		_, err := f.handler.Handle(ctx, cmd)
		require.Error(t, err)
		assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	})

	t.Run("rejects guests beyond the property cap", func(t *testing.T) {
		f := newFixture(t, 1)
		cmd := f.command("bk-1")
		cmd.Guests = 5
		_, err := f.handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrGuestsExceedCap)
	})

	t.Run("rejects stays below the minimum nights", func(t *testing.T) {
		f := newFixture(t, 3)
		cmd := f.command("bk-1")
		cmd.CheckOut = day(11)
		_, err := f.handler.Handle(ctx, cmd)
		require.Error(t, err)
		assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	})

	t.Run("rejects a property that is not open for booking", func(t *testing.T) {
		f := newFixture(t, 1)
		pending, err := domainproperty.NewProperty(domainproperty.CreateParams{
			ID:           "prop-2",
			Owner:        "own-1",
			Title:        "Unreviewed cabin",
			ProposedRate: money.Must(80, "USD"),
			MaxGuests:    2,
			Now:          testNow,
		})
		require.NoError(t, err)
		require.NoError(t, f.props.Save(ctx, pending))

		cmd := f.command("bk-1")
		cmd.PropertyID = "prop-2"
		_, err = f.handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainproperty.ErrNotBookable)
	})

	t.Run("rejects overlapping dates with the blocking booking named", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.handler.Handle(ctx, f.command("bk-1"))
		require.NoError(t, err)

		cmd := f.command("bk-2")
		cmd.CheckIn = day(12)
		cmd.CheckOut = day(15)
		_, err = f.handler.Handle(ctx, cmd)

		var conflict *domainbooking.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []domainbooking.BookingID{"bk-1"}, conflict.ConflictingIDs)
		assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	})

	t.Run("accepts back-to-back stays", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.handler.Handle(ctx, f.command("bk-1"))
		require.NoError(t, err)

		cmd := f.command("bk-2")
		cmd.CheckIn = day(13)
		cmd.CheckOut = day(16)
		_, err = f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
	})
}

func TestCreateBookingWithVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("discounts the total and records the usage", func(t *testing.T) {
		f := newFixture(t, 1)
		f.addVoucher(t, 20, 3)

		cmd := f.command("bk-1")
		cmd.VoucherCode = "summer20"
		res, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)

		// 20% of the 345 subtotal comes off the 414 total.
		assert.Equal(t, int64(69), res.Booking.Charges.Discount.Amount)
		assert.Equal(t, int64(345), res.Booking.Charges.Total.Amount)
		assert.Equal(t, int64(345), res.Booking.Charges.Subtotal.Amount)
		assert.Equal(t, "SUMMER20", res.Booking.VoucherCode)

		redeemed, err := f.vouchers.ByID(ctx, "vch-1")
		require.NoError(t, err)
		assert.Equal(t, 1, redeemed.UsedCount)

		usages, err := f.vouchers.ListByVoucher(ctx, "vch-1")
		require.NoError(t, err)
		require.Len(t, usages, 1)
		assert.Equal(t, "bk-1", usages[0].BookingID)
		assert.Equal(t, int64(69), usages[0].Amount.Amount)

		assert.Equal(t, []string{"booking.confirmed", "voucher.redeemed"}, f.outbox.names())
	})

	t.Run("rejects an unusable voucher without writing anything", func(t *testing.T) {
		f := newFixture(t, 1)
		f.addVoucher(t, 20, 3)

		cmd := f.command("bk-1")
		cmd.VoucherCode = "NOSUCHCODE"
		_, err := f.handler.Handle(ctx, cmd)
		require.Error(t, err)
		assert.Equal(t, fault.KindConflict, fault.KindOf(err))

		_, err = f.bookings.ByID(ctx, "bk-1")
		assert.ErrorIs(t, err, domainbooking.ErrBookingMissing)
		assert.Empty(t, f.outbox.records)
	})

	t.Run("compensates the booking when redemption loses the last use", func(t *testing.T) {
		f := newFixture(t, 1)
		f.addVoucher(t, 20, 1)
		f.handler.UoWFactory = memory.Factory{
			PropertyRepo: f.props,
			BookingRepo:  f.bookings,
			VoucherRepo:  exhaustedVouchers{f.vouchers},
			UsageRepo:    f.vouchers,
		}

		cmd := f.command("bk-1")
		cmd.VoucherCode = "SUMMER20"
		_, err := f.handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainvoucher.ErrLimitReached)

		// The booking write is rolled back, leaving the dates free.
		_, err = f.bookings.ByID(ctx, "bk-1")
		assert.ErrorIs(t, err, domainbooking.ErrBookingMissing)
		_, err = f.handler.Handle(ctx, f.command("bk-2"))
		require.NoError(t, err)
	})
}

// exhaustedVouchers validates fine but always loses the redemption race.
type exhaustedVouchers struct {
	*memory.VoucherRepository
}

func (exhaustedVouchers) Redeem(ctx context.Context, id domainvoucher.VoucherID, usage domainvoucher.Usage) error {
	return domainvoucher.ErrLimitReached
}
