package models

// Booking is a window on a court already consumed by something outside the
// current scheduling run.
type Booking struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	BookingType string `json:"booking_type,omitempty"`
}

// DateAvailability describes when a court can be used on a given date.
type DateAvailability struct {
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Bookings  []Booking `json:"bookings,omitempty"`
}

// Court belongs to a venue. Read-only input.
type Court struct {
	ID               string             `db:"id" json:"id"`
	VenueID          string             `db:"venue_id" json:"venue_id"`
	Name             string             `db:"name" json:"name"`
	DateAvailability []DateAvailability `json:"date_availability,omitempty"`
}

// Venue owns zero or more courts.
type Venue struct {
	ID           string  `db:"id" json:"id"`
	TournamentID string  `db:"tournament_id" json:"tournament_id"`
	Name         string  `db:"name" json:"name"`
	Abbreviation string  `db:"abbreviation" json:"abbreviation,omitempty"`
	Courts       []Court `json:"courts,omitempty"`
}

// AvailableCourts returns the courts with an availability window on the date.
func (v *Venue) AvailableCourts(date string) []Court {
	var courts []Court
	for _, court := range v.Courts {
		for _, avail := range court.DateAvailability {
			if avail.Date == date {
				courts = append(courts, court)
				break
			}
		}
	}
	return courts
}

// VenueFilter describes query params for listing venues.
type VenueFilter struct {
	TournamentID string
	Date         string
	Page         int
	PageSize     int
}
