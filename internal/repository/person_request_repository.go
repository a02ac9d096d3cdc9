package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// PersonRequestRepository reads personal scheduling requests.
type PersonRequestRepository struct {
	db *sqlx.DB
}

// NewPersonRequestRepository creates a new instance of PersonRequestRepository.
func NewPersonRequestRepository(db *sqlx.DB) *PersonRequestRepository {
	return &PersonRequestRepository{db: db}
}

// ListByType returns a tournament's requests of one type grouped by person.
func (r *PersonRequestRepository) ListByType(ctx context.Context, tournamentID string, requestType models.RequestType) (map[string][]models.PersonRequest, error) {
	const query = `SELECT person_id, request_date, start_time, end_time, request_type FROM person_requests WHERE tournament_id = $1 AND request_type = $2 ORDER BY person_id, request_date, start_time`
	var requests []models.PersonRequest
	if err := r.db.SelectContext(ctx, &requests, query, tournamentID, requestType); err != nil {
		return nil, fmt.Errorf("list person requests: %w", err)
	}

	grouped := make(map[string][]models.PersonRequest, len(requests))
	for _, request := range requests {
		grouped[request.PersonID] = append(grouped[request.PersonID], request)
	}
	return grouped, nil
}
