package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

// SchedulingProfileRepository stores the declarative per-date scheduling
// profiles. The venue/round rows live as one jsonb document per date.
type SchedulingProfileRepository struct {
	db *sqlx.DB
}

// NewSchedulingProfileRepository creates a new instance of SchedulingProfileRepository.
func NewSchedulingProfileRepository(db *sqlx.DB) *SchedulingProfileRepository {
	return &SchedulingProfileRepository{db: db}
}

type profileRow struct {
	ID           string `db:"id"`
	TournamentID string `db:"tournament_id"`
	Date         string `db:"scheduled_date"`
	Venues       []byte `db:"venues"`
}

func (row *profileRow) toModel() (models.SchedulingProfile, error) {
	profile := models.SchedulingProfile{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Date:         row.Date,
	}
	if len(row.Venues) > 0 {
		if err := json.Unmarshal(row.Venues, &profile.Venues); err != nil {
			return profile, fmt.Errorf("decode profile venues for %s: %w", row.ID, err)
		}
	}
	return profile, nil
}

// FindByTournamentAndDate returns the profile for one tournament date.
func (r *SchedulingProfileRepository) FindByTournamentAndDate(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error) {
	const query = `SELECT id, tournament_id, scheduled_date, venues FROM scheduling_profiles WHERE tournament_id = $1 AND scheduled_date = $2 LIMIT 1`
	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, tournamentID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no scheduling profile for date")
		}
		return nil, fmt.Errorf("find scheduling profile: %w", err)
	}
	profile, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByTournament returns every stored profile for a tournament, date
// ascending.
func (r *SchedulingProfileRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.SchedulingProfile, error) {
	const query = `SELECT id, tournament_id, scheduled_date, venues FROM scheduling_profiles WHERE tournament_id = $1 ORDER BY scheduled_date`
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("list scheduling profiles: %w", err)
	}
	profiles := make([]models.SchedulingProfile, 0, len(rows))
	for i := range rows {
		profile, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Upsert replaces the profile document for the tournament date.
func (r *SchedulingProfileRepository) Upsert(ctx context.Context, profile *models.SchedulingProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	venues, err := json.Marshal(profile.Venues)
	if err != nil {
		return fmt.Errorf("encode profile venues: %w", err)
	}

	const query = `INSERT INTO scheduling_profiles (id, tournament_id, scheduled_date, venues, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id, scheduled_date) DO UPDATE SET venues = EXCLUDED.venues, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, profile.ID, profile.TournamentID, profile.Date, venues, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert scheduling profile: %w", err)
	}
	return nil
}

// Delete removes the profile for the tournament date.
func (r *SchedulingProfileRepository) Delete(ctx context.Context, tournamentID, date string) error {
	const query = `DELETE FROM scheduling_profiles WHERE tournament_id = $1 AND scheduled_date = $2`
	if _, err := r.db.ExecContext(ctx, query, tournamentID, date); err != nil {
		return fmt.Errorf("delete scheduling profile: %w", err)
	}
	return nil
}
