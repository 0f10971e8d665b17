package resilience

import "github.com/bcdannyboy/fxvol/models"

// FallbackQuote is the degraded stand-in when every source for a tenor is
// down: a correctly shaped ladder with every field null, so validation
// reports it incomplete rather than the pipeline dropping the tenor.
func FallbackQuote(label string, days int) models.VolatilityQuote {
	return models.NewVolatilityQuote(label, days)
}

// FailureSummary characterizes a batch of errors for the run report. Mostly
// transient failures read as a connectivity problem, anything else as bad
// data.
func FailureSummary(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	transient := 0
	for _, err := range errs {
		if IsTransient(err) {
			transient++
		}
	}
	if transient*2 >= len(errs) {
		return "temporary connection issues"
	}
	return "data validation error"
}
