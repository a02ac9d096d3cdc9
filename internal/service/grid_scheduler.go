package service

import (
	"sort"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// GridScheduler fills a fixed grid of court columns by time-ordered rows.
// It shares the dependency graph and participant concepts with the main
// loop but none of the slot or retry machinery: a matchUp that cannot be
// placed in the current row simply requeues for the next one.
type GridScheduler struct{}

// NewGridScheduler returns a stateless grid scheduler.
func NewGridScheduler() *GridScheduler {
	return &GridScheduler{}
}

// Schedule places pending matchUps, in bracket order, into rows of up to
// len(courtIDs) columns. A placement is rejected when the candidate shares a
// bracket link or a participant with a matchUp already in the same row, or
// has a bracket dependency touching the immediately preceding row.
// Terminates when no matchUps or no rows remain.
func (g *GridScheduler) Schedule(matchUps []models.MatchUp, courtIDs []string, rowCount int) *models.GridResult {
	result := &models.GridResult{}
	if len(courtIDs) == 0 || rowCount <= 0 {
		for _, m := range matchUps {
			result.Unplaced = append(result.Unplaced, m.ID)
		}
		return result
	}

	graph := BuildDependencyGraph(matchUps, nil, true)

	pending := make([]*models.MatchUp, 0, len(matchUps))
	for i := range matchUps {
		if matchUps[i].Status == models.StatusToBePlayed {
			pending = append(pending, &matchUps[i])
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].RoundNumber != pending[j].RoundNumber {
			return pending[i].RoundNumber < pending[j].RoundNumber
		}
		if pending[i].RoundPosition != pending[j].RoundPosition {
			return pending[i].RoundPosition < pending[j].RoundPosition
		}
		return pending[i].ID < pending[j].ID
	})

	var previousRow []*models.MatchUp
	for row := 1; row <= rowCount && len(pending) > 0; row++ {
		var currentRow []*models.MatchUp
		var requeued []*models.MatchUp

		for _, m := range pending {
			if len(currentRow) >= len(courtIDs) {
				requeued = append(requeued, m)
				continue
			}
			if conflictsWithRow(graph, m, currentRow) || dependsOnRow(graph, m, previousRow) {
				requeued = append(requeued, m)
				continue
			}

			court := courtIDs[len(currentRow)]
			currentRow = append(currentRow, m)
			m.Schedule = &models.ScheduleAssignment{CourtID: court, CourtOrder: row}
			result.Assignments = append(result.Assignments, models.GridAssignment{
				MatchUpID: m.ID,
				Row:       row,
				CourtID:   court,
			})
		}

		pending = requeued
		previousRow = currentRow
	}

	for _, m := range pending {
		result.Unplaced = append(result.Unplaced, m.ID)
	}
	return result
}

// conflictsWithRow reports a bracket link or shared participant with any
// matchUp already placed in the row.
func conflictsWithRow(graph map[string]*DependencyRecord, m *models.MatchUp, row []*models.MatchUp) bool {
	participants := make(map[string]bool)
	for _, id := range m.BoundIndividualIDs() {
		participants[id] = true
	}
	for _, placed := range row {
		if bracketLinked(graph, m.ID, placed.ID) {
			return true
		}
		if sharesParticipant(placed, participants) {
			return true
		}
	}
	return false
}

// dependsOnRow reports a direct feed relationship, in either direction, with
// the immediately preceding row.
func dependsOnRow(graph map[string]*DependencyRecord, m *models.MatchUp, row []*models.MatchUp) bool {
	for _, placed := range row {
		if bracketLinked(graph, m.ID, placed.ID) {
			return true
		}
	}
	return false
}
