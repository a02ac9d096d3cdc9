package models

import (
	"fmt"
	"time"
)

// MatchUpStatus reflects the lifecycle state of a matchUp.
type MatchUpStatus string

const (
	StatusToBePlayed MatchUpStatus = "TO_BE_PLAYED"
	StatusBye        MatchUpStatus = "BYE"
	StatusCompleted  MatchUpStatus = "COMPLETED"
	StatusRetired    MatchUpStatus = "RETIRED"
	StatusWalkover   MatchUpStatus = "WALKOVER"
	StatusDefaulted  MatchUpStatus = "DEFAULTED"
	StatusAbandoned  MatchUpStatus = "ABANDONED"
)

// Resolved reports whether the matchUp outcome is final, meaning dependent
// matchUps no longer need to wait for it.
func (s MatchUpStatus) Resolved() bool {
	switch s {
	case StatusCompleted, StatusRetired, StatusWalkover, StatusDefaulted, StatusBye:
		return true
	default:
		return false
	}
}

// MatchUpType distinguishes the contest format for daily limits and recovery.
type MatchUpType string

const (
	TypeSingles MatchUpType = "SINGLES"
	TypeDoubles MatchUpType = "DOUBLES"
	TypeTeam    MatchUpType = "TEAM"
)

// Side is one of up to two entries in a matchUp. A side may be bound to a
// participant or still waiting on an earlier result.
type Side struct {
	SideNumber    int      `json:"side_number"`
	ParticipantID string   `json:"participant_id,omitempty"`
	IndividualIDs []string `json:"individual_ids,omitempty"`
	DrawPosition  int      `json:"draw_position,omitempty"`
}

// ScheduleAssignment is the mutable schedule sub-record on a matchUp. The
// scheduling engine is its sole mutator outside manual overrides.
type ScheduleAssignment struct {
	VenueID    string `db:"venue_id" json:"venue_id,omitempty"`
	CourtID    string `db:"court_id" json:"court_id,omitempty"`
	CourtOrder int    `db:"court_order" json:"court_order,omitempty"`
	Date       string `db:"scheduled_date" json:"scheduled_date,omitempty"`
	StartTime  string `db:"start_time" json:"start_time,omitempty"`
	EndTime    string `db:"end_time" json:"end_time,omitempty"`
}

// MatchUp is a single contest produced by the bracket generator. Everything
// except Schedule is read-only input to the scheduling engine.
type MatchUp struct {
	ID            string        `json:"id"`
	TournamentID  string        `json:"tournament_id"`
	EventID       string        `json:"event_id"`
	DrawID        string        `json:"draw_id"`
	StructureID   string        `json:"structure_id,omitempty"`
	RoundNumber   int           `json:"round_number"`
	RoundPosition int           `json:"round_position"`
	Type          MatchUpType   `json:"match_up_type"`
	Format        string        `json:"format,omitempty"`
	CategoryName  string        `json:"category_name,omitempty"`
	Status        MatchUpStatus `json:"status"`

	WinnerTargetID string `json:"winner_target_id,omitempty"`
	LoserTargetID  string `json:"loser_target_id,omitempty"`

	Sides []Side `json:"sides,omitempty"`

	// PotentialParticipants holds groups of individual ids who could still
	// reach this matchUp depending on undetermined earlier results.
	PotentialParticipants [][]string `json:"potential_participants,omitempty"`

	Schedule *ScheduleAssignment `json:"schedule,omitempty"`
}

// BoundIndividualIDs returns the individuals already bound to a side.
func (m *MatchUp) BoundIndividualIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, side := range m.Sides {
		for _, id := range side.IndividualIDs {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if side.ParticipantID != "" && len(side.IndividualIDs) == 0 && !seen[side.ParticipantID] {
			seen[side.ParticipantID] = true
			ids = append(ids, side.ParticipantID)
		}
	}
	return ids
}

// PotentialIndividualIDs flattens the potential participant groups.
func (m *MatchUp) PotentialIndividualIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, group := range m.PotentialParticipants {
		for _, id := range group {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ParseClock converts an "HH:MM" string to minutes after midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes after midnight back to "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

// ValidDate reports whether the value is a usable "YYYY-MM-DD" date.
func ValidDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
