package validation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bcdannyboy/fxvol/models"
)

const (
	// DefaultStaleWindow is how old a quote may be before it is flagged.
	DefaultStaleWindow = 5 * time.Minute

	completeScoreFloor = 70 // minimum completeness score of a usable quote
	wideSpreadPctOfMid = 10 // ATM spread beyond this fraction of mid is suspect
)

// Validator scores volatility quotes for completeness and consistency.
type Validator struct {
	StaleWindow time.Duration
}

// NewValidator returns a validator with the default staleness window.
func NewValidator() *Validator {
	return &Validator{StaleWindow: DefaultStaleWindow}
}

// Validate scores a quote and collects its warnings. The completeness score
// is the rounded percentage of non-null fields across the full ladder; a
// quote is complete when the score reaches 70 and both ATM sides are present.
func (v *Validator) Validate(quote models.VolatilityQuote, lastUpdate time.Time) models.ValidatedQuote {
	fields := quote.Fields()

	var (
		valid   int
		missing []string
	)
	for _, f := range fields {
		if f.Value != nil {
			valid++
		} else {
			missing = append(missing, f.Name)
		}
	}

	var warnings []string
	if quote.AtmBid == nil {
		warnings = append(warnings, "Critical field 'atm_bid' is missing")
	}
	if quote.AtmAsk == nil {
		warnings = append(warnings, "Critical field 'atm_ask' is missing")
	}

	if quote.AtmBid != nil && quote.AtmAsk != nil {
		bid, ask := *quote.AtmBid, *quote.AtmAsk
		if bid > ask {
			warnings = append(warnings, fmt.Sprintf("ATM bid > ask (%.4f > %.4f)", bid, ask))
		} else if mid := (bid + ask) / 2; mid > 0 {
			if spreadPct := (ask - bid) / mid * 100; spreadPct > wideSpreadPctOfMid {
				warnings = append(warnings, fmt.Sprintf("Wide ATM spread: %.1f%% of mid", spreadPct))
			}
		}
	}

	for _, b := range quote.Buckets {
		if b.RRBid != nil && b.RRAsk != nil && *b.RRBid > *b.RRAsk {
			warnings = append(warnings, fmt.Sprintf("rr_%dd bid > ask", b.Delta))
		}
		if b.BFBid != nil && b.BFAsk != nil && *b.BFBid > *b.BFAsk {
			warnings = append(warnings, fmt.Sprintf("bf_%dd bid > ask", b.Delta))
		}
	}

	total := len(fields)
	score := int(math.Round(100 * float64(valid) / float64(total)))

	quality := models.QualityMetrics{
		TotalFields:       total,
		ValidFields:       valid,
		NullFields:        total - valid,
		CompletenessScore: score,
		Warnings:          warnings,
		IsStale:           time.Since(lastUpdate) > v.StaleWindow,
		LastUpdate:        lastUpdate,
	}

	return models.ValidatedQuote{
		Quote:         quote,
		Quality:       quality,
		IsComplete:    score >= completeScoreFloor && quote.AtmBid != nil && quote.AtmAsk != nil,
		MissingFields: missing,
	}
}

// FillMissingATM patches interior ATM gaps by averaging the neighboring
// tenors. The slice is sorted by tenor in place; only gaps with both
// neighbors present are filled, and the quality score is left as measured.
func FillMissingATM(quotes []models.ValidatedQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Quote.TenorDays < quotes[j].Quote.TenorDays
	})

	for i := 1; i < len(quotes)-1; i++ {
		q := &quotes[i]
		if q.Quote.AtmBid == nil {
			left, right := quotes[i-1].Quote.AtmBid, quotes[i+1].Quote.AtmBid
			if left != nil && right != nil {
				q.Quote.AtmBid = models.Float64Ptr((*left + *right) / 2)
				q.Quality.Warnings = append(q.Quality.Warnings, "atm_bid interpolated from neighboring tenors")
			}
		}
		if q.Quote.AtmAsk == nil {
			left, right := quotes[i-1].Quote.AtmAsk, quotes[i+1].Quote.AtmAsk
			if left != nil && right != nil {
				q.Quote.AtmAsk = models.Float64Ptr((*left + *right) / 2)
				q.Quality.Warnings = append(q.Quality.Warnings, "atm_ask interpolated from neighboring tenors")
			}
		}
	}
}
