package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// VenueRepository provides database access to venues and their courts.
// Per-date availability windows are stored as jsonb on the court row.
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository creates a new instance of VenueRepository.
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

type courtRow struct {
	ID               string `db:"id"`
	VenueID          string `db:"venue_id"`
	Name             string `db:"name"`
	DateAvailability []byte `db:"date_availability"`
}

// ListWithCourts returns a tournament's venues with their courts and
// availability windows attached.
func (r *VenueRepository) ListWithCourts(ctx context.Context, tournamentID string) ([]models.Venue, error) {
	const venueQuery = `SELECT id, tournament_id, name, abbreviation FROM venues WHERE tournament_id = $1 ORDER BY name`
	var venues []models.Venue
	if err := r.db.SelectContext(ctx, &venues, venueQuery, tournamentID); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if len(venues) == 0 {
		return venues, nil
	}

	const courtQuery = `SELECT c.id, c.venue_id, c.name, c.date_availability FROM courts c JOIN venues v ON v.id = c.venue_id WHERE v.tournament_id = $1 ORDER BY c.name`
	var rows []courtRow
	if err := r.db.SelectContext(ctx, &rows, courtQuery, tournamentID); err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}

	courtsByVenue := make(map[string][]models.Court, len(venues))
	for _, row := range rows {
		court := models.Court{ID: row.ID, VenueID: row.VenueID, Name: row.Name}
		if len(row.DateAvailability) > 0 {
			if err := json.Unmarshal(row.DateAvailability, &court.DateAvailability); err != nil {
				return nil, fmt.Errorf("decode availability for court %s: %w", row.ID, err)
			}
		}
		courtsByVenue[row.VenueID] = append(courtsByVenue[row.VenueID], court)
	}

	for i := range venues {
		venues[i].Courts = courtsByVenue[venues[i].ID]
	}
	return venues, nil
}

// FindByID returns a venue with its courts.
func (r *VenueRepository) FindByID(ctx context.Context, id string) (*models.Venue, error) {
	const venueQuery = `SELECT id, tournament_id, name, abbreviation FROM venues WHERE id = $1 LIMIT 1`
	var venue models.Venue
	if err := r.db.GetContext(ctx, &venue, venueQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find venue by id: %w", err)
	}

	const courtQuery = `SELECT id, venue_id, name, date_availability FROM courts WHERE venue_id = $1 ORDER BY name`
	var rows []courtRow
	if err := r.db.SelectContext(ctx, &rows, courtQuery, id); err != nil {
		return nil, fmt.Errorf("list courts for venue: %w", err)
	}
	for _, row := range rows {
		court := models.Court{ID: row.ID, VenueID: row.VenueID, Name: row.Name}
		if len(row.DateAvailability) > 0 {
			if err := json.Unmarshal(row.DateAvailability, &court.DateAvailability); err != nil {
				return nil, fmt.Errorf("decode availability for court %s: %w", row.ID, err)
			}
		}
		venue.Courts = append(venue.Courts, court)
	}

	return &venue, nil
}
