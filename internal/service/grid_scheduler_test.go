package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

func gridMatchUp(id string, round int, winnerTarget string, individuals ...string) models.MatchUp {
	m := models.MatchUp{
		ID:             id,
		DrawID:         "draw-1",
		RoundNumber:    round,
		Type:           models.TypeSingles,
		Status:         models.StatusToBePlayed,
		WinnerTargetID: winnerTarget,
	}
	for i, pid := range individuals {
		m.Sides = append(m.Sides, models.Side{SideNumber: i + 1, IndividualIDs: []string{pid}})
	}
	return m
}

func assignmentsByID(result *models.GridResult) map[string]models.GridAssignment {
	byID := make(map[string]models.GridAssignment, len(result.Assignments))
	for _, a := range result.Assignments {
		byID[a.MatchUpID] = a
	}
	return byID
}

func TestGridSchedulerFillsRowsInBracketOrder(t *testing.T) {
	matchUps := []models.MatchUp{
		gridMatchUp("m1", 1, "", "p1", "p2"),
		gridMatchUp("m2", 1, "", "p3", "p4"),
		gridMatchUp("m3", 1, "", "p5", "p6"),
		gridMatchUp("m4", 1, "", "p7", "p8"),
	}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1", "c2"}, 2)

	require.Len(t, result.Assignments, 4)
	assert.Empty(t, result.Unplaced)

	byID := assignmentsByID(result)
	assert.Equal(t, models.GridAssignment{MatchUpID: "m1", Row: 1, CourtID: "c1"}, byID["m1"])
	assert.Equal(t, models.GridAssignment{MatchUpID: "m2", Row: 1, CourtID: "c2"}, byID["m2"])
	assert.Equal(t, 2, byID["m3"].Row)
	assert.Equal(t, 2, byID["m4"].Row)

	// Placement writes court order back onto the matchUp.
	assert.Equal(t, 1, matchUps[0].Schedule.CourtOrder)
	assert.Equal(t, "c1", matchUps[0].Schedule.CourtID)
}

func TestGridSchedulerSharedParticipantRequeues(t *testing.T) {
	matchUps := []models.MatchUp{
		gridMatchUp("m1", 1, "", "p1", "p2"),
		gridMatchUp("m2", 1, "", "p1", "p3"),
	}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1", "c2"}, 2)

	byID := assignmentsByID(result)
	require.Len(t, byID, 2)
	assert.Equal(t, 1, byID["m1"].Row)
	assert.Equal(t, 2, byID["m2"].Row, "p1 cannot play twice in one row")
}

func TestGridSchedulerDependencySkipsAdjacentRow(t *testing.T) {
	matchUps := []models.MatchUp{
		gridMatchUp("sf", 1, "final", "p1", "p2"),
		gridMatchUp("final", 2, "", "p3", "p4"),
	}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1", "c2"}, 3)

	byID := assignmentsByID(result)
	require.Len(t, byID, 2)
	assert.Equal(t, 1, byID["sf"].Row)
	// Row 2 is adjacent to the source's row, so the final lands in row 3.
	assert.Equal(t, 3, byID["final"].Row)
}

func TestGridSchedulerSingleCourtOverflow(t *testing.T) {
	matchUps := []models.MatchUp{
		gridMatchUp("m1", 1, "", "p1", "p2"),
		gridMatchUp("m2", 1, "", "p3", "p4"),
		gridMatchUp("m3", 1, "", "p5", "p6"),
	}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1"}, 3)

	byID := assignmentsByID(result)
	require.Len(t, byID, 3)
	assert.Equal(t, 1, byID["m1"].Row)
	assert.Equal(t, 2, byID["m2"].Row)
	assert.Equal(t, 3, byID["m3"].Row)
}

func TestGridSchedulerRowsExhausted(t *testing.T) {
	matchUps := []models.MatchUp{
		gridMatchUp("m1", 1, "", "p1", "p2"),
		gridMatchUp("m2", 1, "", "p3", "p4"),
	}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1"}, 1)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"m2"}, result.Unplaced)
}

func TestGridSchedulerNoCourtsAllUnplaced(t *testing.T) {
	matchUps := []models.MatchUp{gridMatchUp("m1", 1, "", "p1", "p2")}

	result := NewGridScheduler().Schedule(matchUps, nil, 3)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, []string{"m1"}, result.Unplaced)
}

func TestGridSchedulerIgnoresResolvedMatchUps(t *testing.T) {
	done := gridMatchUp("done", 1, "", "p1", "p2")
	done.Status = models.StatusCompleted
	matchUps := []models.MatchUp{done, gridMatchUp("m1", 1, "", "p3", "p4")}

	result := NewGridScheduler().Schedule(matchUps, []string{"c1"}, 1)

	byID := assignmentsByID(result)
	require.Len(t, byID, 1)
	assert.Contains(t, byID, "m1")
	assert.Empty(t, result.Unplaced, "resolved matchUps are out of scope, not unplaced")
}
