package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// MatchUpRepository provides database access to in-context matchUps. Sides
// and potential participants are stored as jsonb; schedule fields are flat
// columns so commits stay a single UPDATE.
type MatchUpRepository struct {
	db *sqlx.DB
}

// NewMatchUpRepository creates a new instance of MatchUpRepository.
func NewMatchUpRepository(db *sqlx.DB) *MatchUpRepository {
	return &MatchUpRepository{db: db}
}

type matchUpRow struct {
	ID                    string         `db:"id"`
	TournamentID          string         `db:"tournament_id"`
	EventID               string         `db:"event_id"`
	DrawID                string         `db:"draw_id"`
	StructureID           sql.NullString `db:"structure_id"`
	RoundNumber           int            `db:"round_number"`
	RoundPosition         int            `db:"round_position"`
	MatchUpType           string         `db:"match_up_type"`
	Format                sql.NullString `db:"format"`
	CategoryName          sql.NullString `db:"category_name"`
	Status                string         `db:"status"`
	WinnerTargetID        sql.NullString `db:"winner_target_id"`
	LoserTargetID         sql.NullString `db:"loser_target_id"`
	Sides                 []byte         `db:"sides"`
	PotentialParticipants []byte         `db:"potential_participants"`
	VenueID               sql.NullString `db:"venue_id"`
	CourtID               sql.NullString `db:"court_id"`
	CourtOrder            sql.NullInt64  `db:"court_order"`
	ScheduledDate         sql.NullString `db:"scheduled_date"`
	ScheduledTime         sql.NullString `db:"scheduled_time"`
	EndTime               sql.NullString `db:"end_time"`
}

const matchUpColumns = `id, tournament_id, event_id, draw_id, structure_id, round_number, round_position, match_up_type, format, category_name, status, winner_target_id, loser_target_id, sides, potential_participants, venue_id, court_id, court_order, scheduled_date, scheduled_time, end_time`

func (row *matchUpRow) toModel() (models.MatchUp, error) {
	m := models.MatchUp{
		ID:             row.ID,
		TournamentID:   row.TournamentID,
		EventID:        row.EventID,
		DrawID:         row.DrawID,
		StructureID:    row.StructureID.String,
		RoundNumber:    row.RoundNumber,
		RoundPosition:  row.RoundPosition,
		Type:           models.MatchUpType(row.MatchUpType),
		Format:         row.Format.String,
		CategoryName:   row.CategoryName.String,
		Status:         models.MatchUpStatus(row.Status),
		WinnerTargetID: row.WinnerTargetID.String,
		LoserTargetID:  row.LoserTargetID.String,
	}

	if len(row.Sides) > 0 {
		if err := json.Unmarshal(row.Sides, &m.Sides); err != nil {
			return m, fmt.Errorf("decode sides for matchUp %s: %w", row.ID, err)
		}
	}
	if len(row.PotentialParticipants) > 0 {
		if err := json.Unmarshal(row.PotentialParticipants, &m.PotentialParticipants); err != nil {
			return m, fmt.Errorf("decode potential participants for matchUp %s: %w", row.ID, err)
		}
	}

	if row.ScheduledDate.Valid || row.ScheduledTime.Valid || row.VenueID.Valid {
		m.Schedule = &models.ScheduleAssignment{
			VenueID:    row.VenueID.String,
			CourtID:    row.CourtID.String,
			CourtOrder: int(row.CourtOrder.Int64),
			Date:       row.ScheduledDate.String,
			StartTime:  row.ScheduledTime.String,
			EndTime:    row.EndTime.String,
		}
	}

	return m, nil
}

func rowsToMatchUps(rows []matchUpRow) ([]models.MatchUp, error) {
	matchUps := make([]models.MatchUp, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		matchUps = append(matchUps, m)
	}
	return matchUps, nil
}

// ListInContext returns every matchUp for a tournament with side and
// potential participant context resolved.
func (r *MatchUpRepository) ListInContext(ctx context.Context, tournamentID string) ([]models.MatchUp, error) {
	query := fmt.Sprintf(`SELECT %s FROM match_ups WHERE tournament_id = $1 ORDER BY draw_id, round_number, round_position`, matchUpColumns)
	var rows []matchUpRow
	if err := r.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("list matchUps: %w", err)
	}
	return rowsToMatchUps(rows)
}

// ListByDraw returns the matchUps of one draw in bracket order.
func (r *MatchUpRepository) ListByDraw(ctx context.Context, tournamentID, drawID string) ([]models.MatchUp, error) {
	query := fmt.Sprintf(`SELECT %s FROM match_ups WHERE tournament_id = $1 AND draw_id = $2 ORDER BY round_number, round_position`, matchUpColumns)
	var rows []matchUpRow
	if err := r.db.SelectContext(ctx, &rows, query, tournamentID, drawID); err != nil {
		return nil, fmt.Errorf("list matchUps by draw: %w", err)
	}
	return rowsToMatchUps(rows)
}

// FindByID returns a single matchUp.
func (r *MatchUpRepository) FindByID(ctx context.Context, id string) (*models.MatchUp, error) {
	query := fmt.Sprintf(`SELECT %s FROM match_ups WHERE id = $1 LIMIT 1`, matchUpColumns)
	var row matchUpRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find matchUp by id: %w", err)
	}
	m, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CommitSchedule persists committed assignments in one transaction. A run
// either lands all of its commits or none of them.
func (r *MatchUpRepository) CommitSchedule(ctx context.Context, commits []models.ScheduleCommit) error {
	if len(commits) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `UPDATE match_ups SET scheduled_date = $2, scheduled_time = $3, venue_id = $4, court_id = NULLIF($5, '') WHERE id = $1`
	for _, commit := range commits {
		if _, err := tx.ExecContext(ctx, query, commit.MatchUpID, commit.ScheduledDate, commit.ScheduledTime, commit.VenueID, commit.CourtID); err != nil {
			return fmt.Errorf("commit schedule for matchUp %s: %w", commit.MatchUpID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule transaction: %w", err)
	}
	return nil
}

// ClearSchedule removes the schedule assignment from every matchUp of a
// tournament date, used before re-running a date from scratch.
func (r *MatchUpRepository) ClearSchedule(ctx context.Context, tournamentID, date string) error {
	const query = `UPDATE match_ups SET scheduled_date = NULL, scheduled_time = NULL, venue_id = NULL, court_id = NULL, court_order = NULL WHERE tournament_id = $1 AND scheduled_date = $2`
	if _, err := r.db.ExecContext(ctx, query, tournamentID, date); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}
	return nil
}
