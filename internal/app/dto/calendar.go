package dto

// Calendar lists the occupied days of a property for calendar painting,
// one YYYY-MM-DD entry per confirmed night.
type Calendar struct {
	PropertyID string   `json:"property_id"`
	BookedDays []string `json:"booked_days"`
}

// Availability answers a date-range probe, naming the blockers when the
// range is taken.
type Availability struct {
	PropertyID  string   `json:"property_id"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	Available   bool     `json:"available"`
	ConflictIDs []string `json:"conflicting_booking_ids,omitempty"`
}
