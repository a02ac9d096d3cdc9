package models

// MatchUpTiming is the resolved timing for one matchUp format.
type MatchUpTiming struct {
	AverageMinutes  int `json:"average_minutes"`
	RecoveryMinutes int `json:"recovery_minutes"`

	// TypeChangeRecoveryMinutes, when set, replaces RecoveryMinutes for a
	// participant whose immediately prior matchUp was of a different type.
	TypeChangeRecoveryMinutes *int `json:"type_change_recovery_minutes,omitempty"`
}

// FormatTiming is an explicit per-format policy entry, optionally scoped to a
// category and/or matchUp type. More populated scope fields means more
// specific.
type FormatTiming struct {
	Format       string      `json:"format"`
	CategoryName string      `json:"category_name,omitempty"`
	MatchUpType  MatchUpType `json:"match_up_type,omitempty"`
	Timing       MatchUpTiming
}

// TimingPolicy is the override hierarchy: tournament default, then category
// defaults, then explicit per-format entries.
type TimingPolicy struct {
	Default    *MatchUpTiming           `json:"default,omitempty"`
	Categories map[string]MatchUpTiming `json:"categories,omitempty"`
	Formats    []FormatTiming           `json:"formats,omitempty"`
}

// DailyLimits caps how many matchUps an individual may play per date, by
// matchUp type and in total. Zero values mean unlimited.
type DailyLimits struct {
	Total  int                 `json:"total,omitempty"`
	ByType map[MatchUpType]int `json:"by_type,omitempty"`
}
