package service

import (
	"sort"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// ConflictAnnotator classifies ordering and participant conflicts in an
// already-arranged schedule. It never assigns times; it reads the court
// order written by a human or by the grid scheduler and reports findings.
type ConflictAnnotator struct{}

// NewConflictAnnotator returns a stateless annotator.
func NewConflictAnnotator() *ConflictAnnotator {
	return &ConflictAnnotator{}
}

// annotationRow is the set of matchUps sharing one court-order row.
type annotationRow struct {
	order    int
	matchUps []*models.MatchUp
}

// Annotate partitions arranged matchUps into rows by court order and runs
// the severity passes in precedence order: ERROR, CONFLICT, ISSUE, WARNING.
// A matchUp's severity is written exactly once; later passes never overwrite
// an earlier finding, which is what enforces the precedence.
func (a *ConflictAnnotator) Annotate(matchUps []models.MatchUp) *models.AnnotationResult {
	result := &models.AnnotationResult{
		CourtIssues: make(map[string][]models.ScheduleIssue),
		RowIssues:   make(map[int][]models.ScheduleIssue),
		ByMatchUp:   make(map[string]models.ScheduleIssue),
	}

	rows, rowOf := buildRows(matchUps)
	if len(rows) == 0 {
		return result
	}
	graph := BuildDependencyGraph(matchUps, nil, true)

	a.flagSourceAfterDependent(rows, rowOf, graph, result)
	a.flagSameRowDependencies(rows, rowOf, graph, result)
	a.flagRoundGaps(rows, rowOf, graph, result)
	a.flagCourtChanges(rows, graph, result)

	return result
}

// buildRows groups arranged matchUps by their court-order value, ascending.
// MatchUps without a schedule or court order are outside annotation scope.
func buildRows(matchUps []models.MatchUp) ([]annotationRow, map[string]int) {
	byOrder := make(map[int][]*models.MatchUp)
	for i := range matchUps {
		m := &matchUps[i]
		if m.Schedule == nil || m.Schedule.CourtOrder <= 0 {
			continue
		}
		byOrder[m.Schedule.CourtOrder] = append(byOrder[m.Schedule.CourtOrder], m)
	}

	orders := make([]int, 0, len(byOrder))
	for order := range byOrder {
		orders = append(orders, order)
	}
	sort.Ints(orders)

	rows := make([]annotationRow, 0, len(orders))
	rowOf := make(map[string]int)
	for idx, order := range orders {
		row := annotationRow{order: order, matchUps: byOrder[order]}
		sort.Slice(row.matchUps, func(i, j int) bool { return row.matchUps[i].ID < row.matchUps[j].ID })
		for _, m := range row.matchUps {
			rowOf[m.ID] = idx
		}
		rows = append(rows, row)
	}

	return rows, rowOf
}

// flagSourceAfterDependent reports a matchUp whose bracket source sits in a
// later row: the source cannot finish before its dependent starts.
func (a *ConflictAnnotator) flagSourceAfterDependent(rows []annotationRow, rowOf map[string]int, graph map[string]*DependencyRecord, result *models.AnnotationResult) {
	for rowIdx, row := range rows {
		for _, m := range row.matchUps {
			record, ok := graph[m.ID]
			if !ok {
				continue
			}
			for _, sourceID := range record.SourceMatchUpIDs {
				sourceRow, placed := rowOf[sourceID]
				if !placed || sourceRow <= rowIdx {
					continue
				}
				a.record(result, m, rowIdx, models.ScheduleIssue{
					MatchUpID:         m.ID,
					Severity:          models.SeverityError,
					IssueType:         models.IssueSourceAfterDependent,
					RelatedMatchUpIDs: []string{sourceID},
				})
			}
		}
	}
}

// flagSameRowDependencies reports a matchUp scheduled simultaneously with a
// matchUp it feeds.
func (a *ConflictAnnotator) flagSameRowDependencies(rows []annotationRow, rowOf map[string]int, graph map[string]*DependencyRecord, result *models.AnnotationResult) {
	for rowIdx, row := range rows {
		for _, m := range row.matchUps {
			record, ok := graph[m.ID]
			if !ok {
				continue
			}
			for _, dependentID := range record.DependentMatchUpIDs {
				if dependentRow, placed := rowOf[dependentID]; placed && dependentRow == rowIdx {
					a.record(result, m, rowIdx, models.ScheduleIssue{
						MatchUpID:         m.ID,
						Severity:          models.SeverityConflict,
						IssueType:         models.IssueSameRowDependency,
						RelatedMatchUpIDs: []string{dependentID},
					})
				}
			}
		}
	}
}

// flagRoundGaps reports a deep bracket source (round distance two or more)
// placed in the immediately preceding row: the intermediate round has no row
// to land in between them.
func (a *ConflictAnnotator) flagRoundGaps(rows []annotationRow, rowOf map[string]int, graph map[string]*DependencyRecord, result *models.AnnotationResult) {
	for rowIdx, row := range rows {
		for _, m := range row.matchUps {
			record, ok := graph[m.ID]
			if !ok {
				continue
			}
			for distance, layer := range record.SourceRounds {
				if distance == 0 {
					continue
				}
				for _, sourceID := range layer {
					if sourceRow, placed := rowOf[sourceID]; placed && rowIdx-sourceRow <= distance {
						a.record(result, m, rowIdx, models.ScheduleIssue{
							MatchUpID:         m.ID,
							Severity:          models.SeverityIssue,
							IssueType:         models.IssueRoundGap,
							RelatedMatchUpIDs: []string{sourceID},
						})
					}
				}
			}
		}
	}
}

// flagCourtChanges reports a matchUp whose participant played the
// immediately preceding row on a different court with no bracket link
// between the two matchUps.
func (a *ConflictAnnotator) flagCourtChanges(rows []annotationRow, graph map[string]*DependencyRecord, result *models.AnnotationResult) {
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		previous := rows[rowIdx-1]
		for _, m := range rows[rowIdx].matchUps {
			participants := make(map[string]bool)
			for _, id := range m.BoundIndividualIDs() {
				participants[id] = true
			}

			for _, prior := range previous.matchUps {
				if !sharesParticipant(prior, participants) {
					continue
				}
				if sameCourt(m, prior) || bracketLinked(graph, m.ID, prior.ID) {
					continue
				}
				a.record(result, m, rowIdx, models.ScheduleIssue{
					MatchUpID:         m.ID,
					Severity:          models.SeverityWarning,
					IssueType:         models.IssueCourtChange,
					RelatedMatchUpIDs: []string{prior.ID},
				})
			}
		}
	}
}

// record appends the issue to the court and row groupings, and sets the
// per-matchUp severity only when none was recorded by an earlier pass.
func (a *ConflictAnnotator) record(result *models.AnnotationResult, m *models.MatchUp, rowIdx int, issue models.ScheduleIssue) {
	if _, seen := result.ByMatchUp[m.ID]; seen {
		return
	}
	result.ByMatchUp[m.ID] = issue
	result.RowIssues[rowIdx] = append(result.RowIssues[rowIdx], issue)
	if m.Schedule != nil && m.Schedule.CourtID != "" {
		result.CourtIssues[m.Schedule.CourtID] = append(result.CourtIssues[m.Schedule.CourtID], issue)
	}
}

func sharesParticipant(m *models.MatchUp, participants map[string]bool) bool {
	for _, id := range m.BoundIndividualIDs() {
		if participants[id] {
			return true
		}
	}
	return false
}

func sameCourt(a, b *models.MatchUp) bool {
	if a.Schedule == nil || b.Schedule == nil {
		return false
	}
	return a.Schedule.CourtID != "" && a.Schedule.CourtID == b.Schedule.CourtID
}

// bracketLinked reports a direct feed relationship in either direction.
func bracketLinked(graph map[string]*DependencyRecord, aID, bID string) bool {
	record, ok := graph[aID]
	if !ok {
		return false
	}
	for _, id := range record.SourceMatchUpIDs {
		if id == bID {
			return true
		}
	}
	for _, id := range record.DependentMatchUpIDs {
		if id == bID {
			return true
		}
	}
	return false
}
