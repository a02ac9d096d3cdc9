package models

// RequestType enumerates personal scheduling requests. Only blackout windows
// are honored by the engine.
type RequestType string

// RequestDoNotSchedule marks a personal blackout window.
const RequestDoNotSchedule RequestType = "DO_NOT_SCHEDULE"

// PersonRequest is a person-specific window sourced from tournament
// extensions. Read-only input.
type PersonRequest struct {
	PersonID    string      `db:"person_id" json:"person_id"`
	Date        string      `db:"request_date" json:"date"`
	StartTime   string      `db:"start_time" json:"start_time"`
	EndTime     string      `db:"end_time" json:"end_time"`
	RequestType RequestType `db:"request_type" json:"request_type"`
}
