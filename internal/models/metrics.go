package models

import "time"

// SystemMetricsSnapshot aggregates process health counters for the status
// endpoint; the full series lives behind the Prometheus handler.
type SystemMetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	SchedulingRuns           uint64    `json:"scheduling_runs"`
	MatchUpsScheduled        uint64    `json:"match_ups_scheduled"`
	MatchUpsUnplaced         uint64    `json:"match_ups_unplaced"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
