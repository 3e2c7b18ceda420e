package daterange

import (
	"time"

	"staybook/internal/domain/shared/fault"
)

// DayFormat is the wire format for calendar day strings.
const DayFormat = "2006-01-02"

var (
	ErrEmptyRange = fault.Validation("daterange: check-out must be after check-in")
)

// DateRange is a half-open stay interval [CheckIn, CheckOut): the check-in
// night is occupied, the check-out day is free for the next guest.
// Both bounds are normalized to UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a range from the raw request dates. Zero-night requests
// (check-in equal to check-out) and inverted ranges are rejected.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{
		CheckIn:  Day(checkIn),
		CheckOut: Day(checkOut),
	}
	if !dr.CheckIn.Before(dr.CheckOut) {
		return DateRange{}, ErrEmptyRange
	}
	return dr, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DayFormat, checkIn)
	if err != nil {
		return DateRange{}, fault.Validation("daterange: malformed check-in date")
	}
	out, err := time.Parse(DayFormat, checkOut)
	if err != nil {
		return DateRange{}, fault.Validation("daterange: malformed check-out date")
	}
	return New(in, out)
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two half-open intervals share at least one night.
// Back-to-back stays (one check-out equal to another check-in) do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Contains reports whether the given day falls inside the occupied nights.
func (r DateRange) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(r.CheckIn) && day.Before(r.CheckOut)
}

// Nights returns the number of occupied nights.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn) / (24 * time.Hour))
}

// Days expands the range into one YYYY-MM-DD string per occupied night,
// check-out day excluded. Used to paint unavailable markers on calendars.
func (r DateRange) Days() []string {
	nights := r.Nights()
	if nights <= 0 {
		return nil
	}
	days := make([]string, 0, nights)
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayFormat))
	}
	return days
}
