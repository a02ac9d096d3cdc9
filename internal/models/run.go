package models

import "time"

// ScheduleCommit is one committed assignment handed to the commit sink.
type ScheduleCommit struct {
	MatchUpID     string `db:"match_up_id" json:"match_up_id"`
	ScheduledDate string `db:"scheduled_date" json:"scheduled_date"`
	ScheduledTime string `db:"scheduled_time" json:"scheduled_time"`
	VenueID       string `db:"venue_id" json:"venue_id"`
	CourtID       string `db:"court_id" json:"court_id,omitempty"`
}

// DeferredMatchUp records a matchUp left unscheduled at a particular slot,
// with the slot it was attempted at.
type DeferredMatchUp struct {
	MatchUpID     string `json:"match_up_id"`
	VenueID       string `json:"venue_id"`
	AttemptedTime string `json:"attempted_time"`
}

// RequestConflict records a candidate slot rejected by a personal
// do-not-schedule window.
type RequestConflict struct {
	MatchUpID string `json:"match_up_id"`
	PersonID  string `json:"person_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SchedulingAudit is the write-once report for one scheduled date. Per-match
// constraint failures live here as data, never as errors.
type SchedulingAudit struct {
	RunID string `json:"run_id"`
	Date  string `json:"date"`

	ScheduledMatchUpIDs []string `json:"scheduled_match_up_ids"`
	NoTimeMatchUpIDs    []string `json:"no_time_match_up_ids"`
	OverLimitMatchUpIDs []string `json:"over_limit_match_up_ids"`

	DependencyDeferred []DeferredMatchUp `json:"dependency_deferred,omitempty"`
	RecoveryDeferred   []DeferredMatchUp `json:"recovery_deferred,omitempty"`
	RequestConflicts   []RequestConflict `json:"request_conflicts,omitempty"`

	Commits []ScheduleCommit `json:"commits,omitempty"`

	// RemainingSlots lists unused candidate start times per venue, sorted,
	// for potential reuse by a subsequent date or caller-driven retry.
	RemainingSlots map[string][]string `json:"remaining_slots,omitempty"`

	// AbandonedSlots counts slots dropped after exhausting their attempt cap.
	AbandonedSlots map[string]int `json:"abandoned_slots,omitempty"`

	Iterations  int       `json:"iterations"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IssueSeverity orders annotation findings. Precedence is
// ERROR > CONFLICT > ISSUE > WARNING.
type IssueSeverity string

const (
	SeverityError    IssueSeverity = "ERROR"
	SeverityConflict IssueSeverity = "CONFLICT"
	SeverityIssue    IssueSeverity = "ISSUE"
	SeverityWarning  IssueSeverity = "WARNING"
)

// Issue type identifiers reported by the conflict annotator.
const (
	IssueSourceAfterDependent = "SOURCE_AFTER_DEPENDENT"
	IssueSameRowDependency    = "SAME_ROW_DEPENDENCY"
	IssueRoundGap             = "INSUFFICIENT_ROUND_GAP"
	IssueCourtChange          = "COURT_CHANGE"
)

// ScheduleIssue is one annotation finding for an arranged matchUp.
type ScheduleIssue struct {
	MatchUpID         string        `json:"match_up_id"`
	Severity          IssueSeverity `json:"severity"`
	IssueType         string        `json:"issue_type"`
	RelatedMatchUpIDs []string      `json:"related_match_up_ids,omitempty"`
}

// AnnotationResult groups annotation findings by court and by row.
type AnnotationResult struct {
	CourtIssues map[string][]ScheduleIssue `json:"court_issues"`
	RowIssues   map[int][]ScheduleIssue    `json:"row_issues"`

	// ByMatchUp holds the single severity recorded per matchUp
	// (first-writer-wins across the severity passes).
	ByMatchUp map[string]ScheduleIssue `json:"by_match_up"`
}

// GridAssignment is one placement produced by the grid scheduler.
type GridAssignment struct {
	MatchUpID string `json:"match_up_id"`
	Row       int    `json:"row"`
	CourtID   string `json:"court_id"`
}

// GridResult reports grid-mode placements and the matchUps that never fit.
type GridResult struct {
	Assignments []GridAssignment `json:"assignments"`
	Unplaced    []string         `json:"unplaced_match_up_ids,omitempty"`
}
