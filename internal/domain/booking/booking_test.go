package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	require.NoError(t, err)
	return dr
}

func confirmedBooking(t *testing.T, id string, in, out string) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:         BookingID(id),
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		Range:      mustRange(t, in, out),
		Guests:     2,
		MaxGuests:  4,
		Now:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	t.Run("confirmed and paid on creation", func(t *testing.T) {
		b := confirmedBooking(t, "bk-1", "2026-09-10", "2026-09-13")
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.Equal(t, PaymentPaid, b.Payment)
		require.Len(t, b.PendingEvents(), 1)
		assert.Equal(t, "booking.confirmed", b.PendingEvents()[0].EventName())
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewBooking(CreateParams{
			ID:     "bk-2",
			Range:  mustRange(t, "2026-09-10", "2026-09-13"),
			Guests: 2,
		})
		assert.Error(t, err)
	})

	t.Run("rejects zero guests", func(t *testing.T) {
		_, err := NewBooking(CreateParams{
			ID:         "bk-3",
			CustomerID: "cust-1",
			Range:      mustRange(t, "2026-09-10", "2026-09-13"),
			Guests:     0,
		})
		assert.ErrorIs(t, err, ErrInvalidGuests)
	})

	t.Run("rejects guests above property cap", func(t *testing.T) {
		_, err := NewBooking(CreateParams{
			ID:         "bk-4",
			CustomerID: "cust-1",
			Range:      mustRange(t, "2026-09-10", "2026-09-13"),
			Guests:     5,
			MaxGuests:  4,
		})
		assert.ErrorIs(t, err, ErrGuestsExceedCap)
	})
}

func TestTransitions(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("cancel releases a confirmed stay", func(t *testing.T) {
		b := confirmedBooking(t, "bk-1", "2026-09-10", "2026-09-13")
		require.NoError(t, b.Cancel("guest request", now))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.ErrorIs(t, b.Cancel("again", now), ErrInvalidState)
	})

	t.Run("complete after the stay", func(t *testing.T) {
		b := confirmedBooking(t, "bk-2", "2026-09-10", "2026-09-13")
		require.NoError(t, b.Complete(now))
		assert.Equal(t, StatusCompleted, b.Status)
		assert.ErrorIs(t, b.Complete(now), ErrInvalidState)
	})

	t.Run("cancelled booking cannot complete", func(t *testing.T) {
		b := confirmedBooking(t, "bk-3", "2026-09-10", "2026-09-13")
		require.NoError(t, b.Cancel("", now))
		assert.ErrorIs(t, b.Complete(now), ErrInvalidState)
	})
}

func TestValidateCheckIn(t *testing.T) {
	now := time.Date(2026, 9, 10, 15, 30, 0, 0, time.UTC)

	assert.NoError(t, ValidateCheckIn(mustRange(t, "2026-09-10", "2026-09-12"), now), "same-day check-in is allowed")
	assert.NoError(t, ValidateCheckIn(mustRange(t, "2026-09-11", "2026-09-12"), now))
	assert.ErrorIs(t, ValidateCheckIn(mustRange(t, "2026-09-09", "2026-09-12"), now), ErrCheckInInPast)
}

func TestConflicts(t *testing.T) {
	existing := []*Booking{
		confirmedBooking(t, "bk-a", "2026-09-10", "2026-09-15"),
		confirmedBooking(t, "bk-b", "2026-09-20", "2026-09-22"),
	}

	t.Run("overlap detected", func(t *testing.T) {
		ids := Conflicts(mustRange(t, "2026-09-14", "2026-09-21"), existing)
		assert.ElementsMatch(t, []BookingID{"bk-a", "bk-b"}, ids)
	})

	t.Run("back to back turnover allowed", func(t *testing.T) {
		assert.True(t, IsAvailable(mustRange(t, "2026-09-15", "2026-09-20"), existing))
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		cancelled := confirmedBooking(t, "bk-c", "2026-09-01", "2026-09-05")
		require.NoError(t, cancelled.Cancel("", time.Now()))
		ids := Conflicts(mustRange(t, "2026-09-02", "2026-09-04"), []*Booking{cancelled})
		assert.Empty(t, ids)
	})
}

func TestBookedDays(t *testing.T) {
	bookings := []*Booking{
		confirmedBooking(t, "bk-a", "2026-09-10", "2026-09-12"),
		confirmedBooking(t, "bk-b", "2026-09-11", "2026-09-13"),
	}
	days := BookedDays(bookings)
	assert.Equal(t, []string{"2026-09-10", "2026-09-11", "2026-09-12"}, days)
}
