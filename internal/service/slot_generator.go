package service

import (
	"sort"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// defaultPeriodCeiling caps the derived slot spacing at 30 minutes.
const defaultPeriodCeiling = 30

// slot is one candidate start time at a venue. Attempts counts how many
// passes failed to place a matchUp at this time.
type slot struct {
	start    int
	attempts int
}

// generateSlots produces the ordered candidate start-time queue for a venue
// on a date: from the earliest court open time to the latest close time,
// spaced at periodMinutes, minus windows consumed by existing bookings.
// Courts are interchangeable at the venue level, so slots carry no court
// binding; per-window capacity is enforced by the assignment loop through
// bookingCapacity and the venue's committed windows.
func generateSlots(venue *models.Venue, date string, averageMinutes, recoveryMinutes, periodMinutes int) []*slot {
	courts := venue.AvailableCourts(date)
	if len(courts) == 0 {
		return nil
	}

	period := periodMinutes
	if period <= 0 {
		period = averageMinutes + recoveryMinutes
		if period > defaultPeriodCeiling {
			period = defaultPeriodCeiling
		}
	}
	if period <= 0 {
		period = defaultPeriodCeiling
	}

	open, close := -1, -1
	for _, court := range courts {
		for _, avail := range court.DateAvailability {
			if avail.Date != date {
				continue
			}
			start, err := models.ParseClock(avail.StartTime)
			if err != nil {
				continue
			}
			end, err := models.ParseClock(avail.EndTime)
			if err != nil || end <= start {
				continue
			}
			if open == -1 || start < open {
				open = start
			}
			if end > close {
				close = end
			}
		}
	}
	if open < 0 || close <= open {
		return nil
	}

	var slots []*slot
	for start := open; start+averageMinutes <= close; start += period {
		if bookedEverywhere(courts, date, start, start+averageMinutes) {
			continue
		}
		slots = append(slots, &slot{start: start})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].start < slots[j].start })
	return slots
}

// bookedEverywhere reports whether every available court has an existing
// booking overlapping the window, leaving no capacity for the candidate.
func bookedEverywhere(courts []models.Court, date string, start, end int) bool {
	for _, court := range courts {
		if !courtBooked(court, date, start, end) {
			return false
		}
	}
	return true
}

func courtBooked(court models.Court, date string, start, end int) bool {
	for _, avail := range court.DateAvailability {
		if avail.Date != date {
			continue
		}
		for _, booking := range avail.Bookings {
			bStart, err := models.ParseClock(booking.StartTime)
			if err != nil {
				continue
			}
			bEnd, err := models.ParseClock(booking.EndTime)
			if err != nil {
				continue
			}
			if start < bEnd && bStart < end {
				return true
			}
		}
	}
	return false
}

// bookingCapacity returns how many courts can host the window: the court's
// availability must cover it and no existing booking may overlap it.
// Commitments made during a run are tracked separately by the loop.
func bookingCapacity(venue *models.Venue, date string, start, end int) int {
	free := 0
	for _, court := range venue.AvailableCourts(date) {
		if courtCovers(court, date, start, end) && !courtBooked(court, date, start, end) {
			free++
		}
	}
	return free
}

// courtCovers reports whether one of the court's availability windows on the
// date contains the whole candidate window.
func courtCovers(court models.Court, date string, start, end int) bool {
	for _, avail := range court.DateAvailability {
		if avail.Date != date {
			continue
		}
		aStart, err := models.ParseClock(avail.StartTime)
		if err != nil {
			continue
		}
		aEnd, err := models.ParseClock(avail.EndTime)
		if err != nil {
			continue
		}
		if aStart <= start && end <= aEnd {
			return true
		}
	}
	return false
}
