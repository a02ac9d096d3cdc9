package service

import (
	"go.uber.org/zap"

	"github.com/courthive/tods-scheduling-api/internal/models"
)

// Hard timing fallbacks applied when no policy entry matches.
const (
	fallbackAverageMinutes  = 90
	fallbackRecoveryMinutes = 0
)

// TimingResolver resolves a matchUp format to expected duration and recovery
// time through a most-specific-wins policy hierarchy: explicit per-format
// entry, then category default, then tournament default.
type TimingResolver struct {
	policy models.TimingPolicy
	logger *zap.Logger

	defaultAverage  int
	defaultRecovery int
}

// NewTimingResolver builds a resolver over the supplied policy snapshot.
// Zero defaults fall back to 90 minute average and no recovery.
func NewTimingResolver(policy models.TimingPolicy, defaultAverage, defaultRecovery int, logger *zap.Logger) *TimingResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultAverage <= 0 {
		defaultAverage = fallbackAverageMinutes
	}
	if defaultRecovery < 0 {
		defaultRecovery = fallbackRecoveryMinutes
	}
	return &TimingResolver{
		policy:          policy,
		logger:          logger,
		defaultAverage:  defaultAverage,
		defaultRecovery: defaultRecovery,
	}
}

// Resolve returns timing for the format/category/type tuple.
func (r *TimingResolver) Resolve(format, categoryName string, matchUpType models.MatchUpType) models.MatchUpTiming {
	if entry, ok := r.bestFormatEntry(format, categoryName, matchUpType); ok {
		return entry.Timing
	}

	if categoryName != "" {
		if timing, ok := r.policy.Categories[categoryName]; ok {
			return timing
		}
	}

	if r.policy.Default != nil {
		return *r.policy.Default
	}

	r.logger.Debug("no timing policy entry, using hard default",
		zap.String("format", format),
		zap.String("category", categoryName),
	)
	return models.MatchUpTiming{
		AverageMinutes:  r.defaultAverage,
		RecoveryMinutes: r.defaultRecovery,
	}
}

// ResolveMatchUp resolves timing using the matchUp's own declared or
// inherited attributes.
func (r *TimingResolver) ResolveMatchUp(m *models.MatchUp) models.MatchUpTiming {
	return r.Resolve(m.Format, m.CategoryName, m.Type)
}

// bestFormatEntry scores format entries by scope specificity: a format match
// is mandatory, matching category and matchUp type each add a point, and a
// scope field that is set but disagrees disqualifies the entry.
func (r *TimingResolver) bestFormatEntry(format, categoryName string, matchUpType models.MatchUpType) (models.FormatTiming, bool) {
	best := models.FormatTiming{}
	bestScore := -1

	for _, entry := range r.policy.Formats {
		if entry.Format == "" || entry.Format != format {
			continue
		}
		score := 0
		if entry.CategoryName != "" {
			if entry.CategoryName != categoryName {
				continue
			}
			score++
		}
		if entry.MatchUpType != "" {
			if entry.MatchUpType != matchUpType {
				continue
			}
			score++
		}
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}

	return best, bestScore >= 0
}
