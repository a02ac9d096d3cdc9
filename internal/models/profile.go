package models

// ProfileRound names a structure/round an operator wants scheduled.
type ProfileRound struct {
	DrawID      string `json:"draw_id"`
	StructureID string `json:"structure_id,omitempty"`
	RoundNumber int    `json:"round_number"`
}

// VenueProfile is one ordered row of scheduling intent: these rounds, at this
// venue, in this order.
type VenueProfile struct {
	VenueID string         `json:"venue_id"`
	Rounds  []ProfileRound `json:"rounds"`
}

// SchedulingProfile is the declarative intent the scheduling loop executes
// for a single date. It is external input, validated but never generated
// here.
type SchedulingProfile struct {
	ID           string         `db:"id" json:"id,omitempty"`
	TournamentID string         `db:"tournament_id" json:"tournament_id"`
	Date         string         `db:"scheduled_date" json:"date"`
	Venues       []VenueProfile `json:"venues"`
}

// CoversRound reports whether the profile row includes the matchUp's
// draw/round. A zero RoundNumber on the profile row matches every round of
// the draw.
func (r ProfileRound) CoversRound(m *MatchUp) bool {
	if r.DrawID != "" && r.DrawID != m.DrawID {
		return false
	}
	if r.StructureID != "" && m.StructureID != "" && r.StructureID != m.StructureID {
		return false
	}
	if r.RoundNumber != 0 && r.RoundNumber != m.RoundNumber {
		return false
	}
	return true
}
