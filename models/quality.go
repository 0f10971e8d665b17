package models

import "time"

// QualityMetrics scores one quote snapshot. Derived once per validation pass
// and not recomputed afterwards.
type QualityMetrics struct {
	TotalFields       int       `json:"total_fields"`
	ValidFields       int       `json:"valid_fields"`
	NullFields        int       `json:"null_fields"`
	CompletenessScore int       `json:"completeness_score"`
	Warnings          []string  `json:"warnings"`
	IsStale           bool      `json:"is_stale"`
	LastUpdate        time.Time `json:"last_update"`
}

// ValidatedQuote bundles a raw quote with its quality assessment. IsComplete
// requires a completeness score of at least 70 and both ATM sides present.
type ValidatedQuote struct {
	Quote         VolatilityQuote `json:"quote"`
	Quality       QualityMetrics  `json:"quality"`
	IsComplete    bool            `json:"is_complete"`
	MissingFields []string        `json:"missing_fields,omitempty"`
}
