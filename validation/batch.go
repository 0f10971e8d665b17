package validation

import (
	"math"
	"strings"

	"github.com/bcdannyboy/fxvol/models"
)

// BatchClassification tallies a batch of fetched securities by data shape.
type BatchClassification struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Partial    int      `json:"partial"`
	FailedIDs  []string `json:"failed_ids,omitempty"`
	PartialIDs []string `json:"partial_ids,omitempty"`
}

// ValidateBatch classifies fetched records. A record is partial when it
// carries neither a last price nor a usable bid/ask pair.
func (v *Validator) ValidateBatch(records []models.SecurityData) BatchClassification {
	var c BatchClassification
	for _, rec := range records {
		switch {
		case !rec.Success:
			c.Failed++
			c.FailedIDs = append(c.FailedIDs, rec.SecurityID)
		case rec.Field(models.FieldLast) == nil && !rec.HasPair():
			c.Partial++
			c.PartialIDs = append(c.PartialIDs, rec.SecurityID)
		default:
			c.Successful++
		}
	}
	return c
}

// QualitySummary aggregates quality metrics across a set of validated quotes.
type QualitySummary struct {
	OverallScore     int `json:"overall_score"`
	CompleteRecords  int `json:"complete_records"`
	StaleRecords     int `json:"stale_records"`
	CriticalWarnings int `json:"critical_warnings"`
}

// Summarize folds per-quote quality into one summary. The overall score is
// the rounded mean of the per-quote completeness scores.
func Summarize(validated []models.ValidatedQuote) QualitySummary {
	var s QualitySummary
	if len(validated) == 0 {
		return s
	}
	var scoreSum int
	for _, vq := range validated {
		scoreSum += vq.Quality.CompletenessScore
		if vq.IsComplete {
			s.CompleteRecords++
		}
		if vq.Quality.IsStale {
			s.StaleRecords++
		}
		for _, w := range vq.Quality.Warnings {
			if strings.HasPrefix(w, "Critical field") {
				s.CriticalWarnings++
			}
		}
	}
	s.OverallScore = int(math.Round(float64(scoreSum) / float64(len(validated))))
	return s
}
