package booking

import (
	"sort"

	"staybook/internal/domain/shared/daterange"
)

// Conflicts returns the ids of confirmed bookings whose half-open ranges
// overlap the requested one. Cancelled and completed bookings never
// block availability; a stay checking in on another stay's check-out day
// is a valid back-to-back turnover.
func Conflicts(requested daterange.DateRange, confirmed []*Booking) []BookingID {
	var ids []BookingID
	for _, b := range confirmed {
		if b == nil || b.Status != StatusConfirmed {
			continue
		}
		if requested.Overlaps(b.Range) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// IsAvailable reports whether the requested range is free of conflicts.
func IsAvailable(requested daterange.DateRange, confirmed []*Booking) bool {
	return len(Conflicts(requested, confirmed)) == 0
}

// BookedDays flattens the confirmed bookings into the sorted, de-duplicated
// set of occupied calendar days for calendar rendering.
func BookedDays(confirmed []*Booking) []string {
	seen := make(map[string]struct{})
	for _, b := range confirmed {
		if b == nil || b.Status != StatusConfirmed {
			continue
		}
		for _, day := range b.Range.Days() {
			seen[day] = struct{}{}
		}
	}
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
