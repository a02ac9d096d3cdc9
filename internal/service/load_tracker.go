package service

import (
	"github.com/courthive/tods-scheduling-api/internal/models"
)

// RefKind tags a participant reference as definitely in a matchUp or only
// potentially reaching it.
type RefKind int

const (
	// RefBound marks a participant already bound to a side.
	RefBound RefKind = iota
	// RefPotential marks a participant whose presence depends on an
	// undetermined earlier result.
	RefPotential
)

// ParticipantRef is a tagged participant reference; dedup and exclusion rules
// operate on these instead of inferring kind from array overlap.
type ParticipantRef struct {
	Kind          RefKind
	ParticipantID string
}

// participantBooking is an audit entry appended on each commit.
type participantBooking struct {
	startTime       int
	endTime         int
	recoveryMinutes int
	matchUpType     models.MatchUpType
}

// participantProfile is the per-individual mutable state for one scheduling
// date. Created lazily, discarded at the end of the run.
type participantProfile struct {
	counters map[models.MatchUpType]int
	total    int

	lastEndTime       int
	lastType          models.MatchUpType
	lastRecovery      int
	timeAfterRecovery int
	hasBooking        bool

	bookings []participantBooking

	// potentialCounted guards optimistic counting: a potential identity is
	// counted at most once per draw even when it recurs across several
	// unresolved candidate matchUps.
	potentialCounted map[string]bool
}

// LoadTracker tracks per-participant match counts and recovery clocks for a
// single scheduling date. Not safe for concurrent use; each run owns its own.
type LoadTracker struct {
	profiles map[string]*participantProfile
	limits   models.DailyLimits
}

// NewLoadTracker builds an empty tracker for one date.
func NewLoadTracker(limits models.DailyLimits) *LoadTracker {
	return &LoadTracker{
		profiles: make(map[string]*participantProfile),
		limits:   limits,
	}
}

func (t *LoadTracker) profile(participantID string) *participantProfile {
	p, ok := t.profiles[participantID]
	if !ok {
		p = &participantProfile{
			counters:         make(map[models.MatchUpType]int),
			potentialCounted: make(map[string]bool),
		}
		t.profiles[participantID] = p
	}
	return p
}

// RelevantParticipants returns the tagged references the constraint checks
// must consider: every bound individual, plus potential individuals when the
// matchUp still has unresolved feeders. A potential id that already appears
// bound in the same matchUp is excluded, since a loser cannot also be the
// bracket advancer.
func RelevantParticipants(m *models.MatchUp) []ParticipantRef {
	var refs []ParticipantRef
	bound := make(map[string]bool)

	for _, id := range m.BoundIndividualIDs() {
		bound[id] = true
		refs = append(refs, ParticipantRef{Kind: RefBound, ParticipantID: id})
	}

	for _, id := range m.PotentialIndividualIDs() {
		if bound[id] {
			continue
		}
		refs = append(refs, ParticipantRef{Kind: RefPotential, ParticipantID: id})
	}

	return refs
}

// DailyLimitResult reports which participants are at their daily limit.
type DailyLimitResult struct {
	ParticipantIDsAtLimit  []string
	RelevantParticipantIDs []string
}

// CheckDailyLimits reports participants whose counters for the matchUp's
// type, or in total, already meet the configured limits. Both counters are
// checked; the first to hit wins.
func (t *LoadTracker) CheckDailyLimits(m *models.MatchUp, refs []ParticipantRef) DailyLimitResult {
	result := DailyLimitResult{}
	for _, ref := range refs {
		result.RelevantParticipantIDs = append(result.RelevantParticipantIDs, ref.ParticipantID)
		p, ok := t.profiles[ref.ParticipantID]
		if !ok {
			continue
		}
		if limit, set := t.limits.ByType[m.Type]; set && limit > 0 && p.counters[m.Type] >= limit {
			result.ParticipantIDsAtLimit = append(result.ParticipantIDsAtLimit, ref.ParticipantID)
			continue
		}
		if t.limits.Total > 0 && p.total >= t.limits.Total {
			result.ParticipantIDsAtLimit = append(result.ParticipantIDsAtLimit, ref.ParticipantID)
		}
	}
	return result
}

// CheckRecoveryTime reports whether every involved participant has recovered
// by candidateTime. When a participant's prior matchUp type differs from the
// candidate's and the candidate timing carries a type-change override, that
// override replaces the recorded recovery minutes.
func (t *LoadTracker) CheckRecoveryTime(m *models.MatchUp, refs []ParticipantRef, candidateTime int, timing models.MatchUpTiming) bool {
	for _, ref := range refs {
		p, ok := t.profiles[ref.ParticipantID]
		if !ok || !p.hasBooking {
			continue
		}
		notBefore := p.timeAfterRecovery
		if timing.TypeChangeRecoveryMinutes != nil && p.lastType != "" && p.lastType != m.Type {
			notBefore = p.lastEndTime + *timing.TypeChangeRecoveryMinutes
		}
		if candidateTime < notBefore {
			return false
		}
	}
	return true
}

// Commit advances every involved participant's recovery clock and counters
// for a matchUp placed at candidateTime. Potential participants are counted
// optimistically, guarded once per draw.
func (t *LoadTracker) Commit(m *models.MatchUp, refs []ParticipantRef, candidateTime int, timing models.MatchUpTiming) {
	endTime := candidateTime + timing.AverageMinutes

	for _, ref := range refs {
		p := t.profile(ref.ParticipantID)

		switch ref.Kind {
		case RefBound:
			p.counters[m.Type]++
			p.total++
		case RefPotential:
			if !p.potentialCounted[m.DrawID] {
				p.counters[m.Type]++
				p.total++
				p.potentialCounted[m.DrawID] = true
			}
		}

		p.lastEndTime = endTime
		p.lastType = m.Type
		p.lastRecovery = timing.RecoveryMinutes
		p.timeAfterRecovery = endTime + timing.RecoveryMinutes
		p.hasBooking = true
		p.bookings = append(p.bookings, participantBooking{
			startTime:       candidateTime,
			endTime:         endTime,
			recoveryMinutes: timing.RecoveryMinutes,
			matchUpType:     m.Type,
		})
	}
}

// BookingCount returns how many bookings a participant accumulated this run.
func (t *LoadTracker) BookingCount(participantID string) int {
	if p, ok := t.profiles[participantID]; ok {
		return len(p.bookings)
	}
	return 0
}

// MatchCount returns a participant's committed total for the date.
func (t *LoadTracker) MatchCount(participantID string) int {
	if p, ok := t.profiles[participantID]; ok {
		return p.total
	}
	return 0
}
