package service

import (
	"sort"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// DependencyRecord links a matchUp to the matchUps that feed it and the
// matchUps it feeds.
type DependencyRecord struct {
	MatchUpID           string   `json:"match_up_id"`
	SourceMatchUpIDs    []string `json:"source_match_up_ids"`
	DependentMatchUpIDs []string `json:"dependent_match_up_ids"`
	ParticipantIDs      []string `json:"participant_ids"`

	// SourceRounds holds source matchUp ids grouped by round distance:
	// index 0 is the direct sources, index 1 their sources, and so on.
	SourceRounds [][]string `json:"source_rounds,omitempty"`
}

// BuildDependencyGraph walks winner/loser target links over the match set and
// returns one record per matchUp id. A target id that names no matchUp in the
// set is tolerated: the graph degrades to fewer edges, it never fails.
func BuildDependencyGraph(matchUps []models.MatchUp, drawIDs []string, includeParticipants bool) map[string]*DependencyRecord {
	drawFilter := make(map[string]bool, len(drawIDs))
	for _, id := range drawIDs {
		drawFilter[id] = true
	}

	byID := make(map[string]*models.MatchUp, len(matchUps))
	for i := range matchUps {
		m := &matchUps[i]
		if len(drawFilter) > 0 && !drawFilter[m.DrawID] {
			continue
		}
		byID[m.ID] = m
	}

	graph := make(map[string]*DependencyRecord, len(byID))
	for id := range byID {
		graph[id] = &DependencyRecord{MatchUpID: id}
	}

	for id, m := range byID {
		for _, target := range []string{m.WinnerTargetID, m.LoserTargetID} {
			if target == "" || target == id {
				continue
			}
			dependent, ok := graph[target]
			if !ok {
				continue
			}
			dependent.SourceMatchUpIDs = appendUnique(dependent.SourceMatchUpIDs, id)
			graph[id].DependentMatchUpIDs = appendUnique(graph[id].DependentMatchUpIDs, target)
		}
	}

	for id, record := range graph {
		sort.Strings(record.SourceMatchUpIDs)
		sort.Strings(record.DependentMatchUpIDs)
		record.SourceRounds = buildSourceRounds(id, graph)

		if includeParticipants {
			m := byID[id]
			ids := m.BoundIndividualIDs()
			for _, pid := range m.PotentialIndividualIDs() {
				ids = appendUnique(ids, pid)
			}
			record.ParticipantIDs = ids
		}
	}

	return graph
}

// buildSourceRounds expands sources breadth-first, one layer per round
// distance. The visited set keeps deep bracket chains from revisiting nodes,
// so expansion terminates on any input even though valid brackets are acyclic
// by construction.
func buildSourceRounds(matchUpID string, graph map[string]*DependencyRecord) [][]string {
	var rounds [][]string
	visited := map[string]bool{matchUpID: true}
	frontier := graph[matchUpID].SourceMatchUpIDs

	for len(frontier) > 0 {
		var layer []string
		var next []string
		for _, id := range frontier {
			if visited[id] {
				continue
			}
			visited[id] = true
			layer = append(layer, id)
			if record, ok := graph[id]; ok {
				next = append(next, record.SourceMatchUpIDs...)
			}
		}
		if len(layer) == 0 {
			break
		}
		sort.Strings(layer)
		rounds = append(rounds, layer)
		frontier = next
	}

	return rounds
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
