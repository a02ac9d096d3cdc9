package dto

import "github.com/courthive/tods-scheduling-api/internal/models"

// RunScheduleRequest triggers the scheduling loop for one tournament date.
type RunScheduleRequest struct {
	// RunID is assigned by the host when a run is queued so the audit can be
	// retrieved before the worker finishes; client values are ignored.
	RunID        string              `json:"-"`
	TournamentID string              `json:"tournament_id" validate:"required"`
	Date         string              `json:"date" validate:"required,datetime=2006-01-02"`
	DryRun       bool                `json:"dry_run"`
	Policy       models.TimingPolicy `json:"policy"`
	DailyLimits  models.DailyLimits  `json:"daily_limits"`
}

// AnnotateScheduleRequest asks for conflict annotation of an arranged date.
type AnnotateScheduleRequest struct {
	TournamentID string `json:"tournament_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

// GridScheduleRequest runs the row-by-row grid assignment for a draw.
type GridScheduleRequest struct {
	TournamentID string   `json:"tournament_id" validate:"required"`
	DrawID       string   `json:"draw_id" validate:"required"`
	CourtIDs     []string `json:"court_ids" validate:"required,min=1,dive,required"`
	Rows         int      `json:"rows" validate:"required,min=1"`
}

// UpsertProfileRequest creates or replaces the scheduling profile for a date.
type UpsertProfileRequest struct {
	TournamentID string                `json:"tournament_id" validate:"required"`
	Date         string                `json:"date" validate:"required,datetime=2006-01-02"`
	Venues       []models.VenueProfile `json:"venues" validate:"required,min=1,dive"`
}

// RunResponse wraps a completed run's audit.
type RunResponse struct {
	Audit *models.SchedulingAudit `json:"audit"`
}

// RunQueuedResponse acknowledges an asynchronous run submission.
type RunQueuedResponse struct {
	RunID string `json:"run_id"`
	Date  string `json:"date"`
}
