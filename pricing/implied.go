package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/fxvol/models"
)

const (
	maxIterations = 100
	epsilon       = 1e-8
)

// ImpliedVolatility backs the volatility (in percent) out of a market premium
// by Newton-Raphson on the pricing vega. The request's VolatilityPct serves
// as the initial guess when set; notional is ignored and the premium is taken
// per unit.
func ImpliedVolatility(req models.OptionRequest, marketPremium float64) (float64, error) {
	if marketPremium <= 0 {
		return 0, &DomainError{Reason: fmt.Sprintf("market premium must be positive, got %g", marketPremium)}
	}

	work := req
	work.Notional = 1
	sigma := work.VolatilityPct
	if sigma <= 0 {
		sigma = 10
	}

	for i := 0; i < maxIterations; i++ {
		work.VolatilityPct = sigma
		res, err := Price(work)
		if err != nil {
			return 0, err
		}
		diff := res.Premium - marketPremium
		if math.Abs(diff) < epsilon {
			return sigma, nil
		}
		if res.VegaPer1PctVol < 1e-12 {
			break
		}
		sigma -= diff / res.VegaPer1PctVol
		if sigma <= 0 {
			sigma = 0.01 // avoid negative volatility
		}
	}
	return 0, fmt.Errorf("implied volatility did not converge after %d iterations", maxIterations)
}

// StrikeForDelta inverts the forward-delta convention: it returns the strike
// at which the option carries the given absolute delta (e.g. 0.25 for a
// 25-delta wing).
func StrikeForDelta(delta, spot, timeToExpiryDays, domesticRatePct, foreignRatePct, volatilityPct float64, optionType models.OptionType) (float64, error) {
	if delta <= 0 || delta >= 1 {
		return 0, &DomainError{Reason: fmt.Sprintf("delta must be in (0, 1), got %g", delta)}
	}
	if spot <= 0 || timeToExpiryDays <= 0 || volatilityPct <= 0 {
		return 0, &DomainError{Reason: "spot, time to expiry and volatility must be positive"}
	}

	t := timeToExpiryDays / 365
	sigma := volatilityPct / 100
	sqrtT := math.Sqrt(t)
	fwd := ForwardRate(spot, t, domesticRatePct, foreignRatePct)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(delta)
	if optionType == models.Put {
		z = -z
	}
	return fwd * math.Exp(-z*sigma*sqrtT+sigma*sigma*t/2), nil
}
