package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/fxvol/models"
)

// DomainError reports pricing inputs outside the model's domain.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s", e.Reason)
}

func checkInputs(req models.OptionRequest) error {
	switch {
	case req.Spot <= 0:
		return &DomainError{Reason: fmt.Sprintf("spot must be positive, got %g", req.Spot)}
	case req.Strike <= 0:
		return &DomainError{Reason: fmt.Sprintf("strike must be positive, got %g", req.Strike)}
	case req.TimeToExpiryYears <= 0:
		return &DomainError{Reason: fmt.Sprintf("time to expiry must be positive, got %g", req.TimeToExpiryYears)}
	case req.VolatilityPct <= 0:
		return &DomainError{Reason: fmt.Sprintf("volatility must be positive, got %g", req.VolatilityPct)}
	}
	switch req.OptionType {
	case models.Call, models.Put:
	default:
		return &DomainError{Reason: fmt.Sprintf("unknown option type %q", req.OptionType)}
	}
	return nil
}

// Price values an FX vanilla under Garman-Kohlhagen, where the foreign rate
// plays the role of a continuous dividend yield. Premium and Greeks are
// returned per unit of foreign notional and scaled by req.Notional (zero
// notional prices a single unit).
func Price(req models.OptionRequest) (models.OptionResult, error) {
	if err := checkInputs(req); err != nil {
		return models.OptionResult{}, err
	}

	s := req.Spot
	k := req.Strike
	t := req.TimeToExpiryYears
	rd := req.DomesticRatePct / 100
	rf := req.ForeignRatePct / 100
	sigma := req.VolatilityPct / 100

	notional := req.Notional
	if notional == 0 {
		notional = 1
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (rd-rf+sigma*sigma/2)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	dfd := math.Exp(-rd * t) // domestic discount factor
	dff := math.Exp(-rf * t) // foreign discount factor

	var premium, delta, theta, rho float64
	switch req.OptionType {
	case models.Call:
		premium = s*dff*NormCDF(d1) - k*dfd*NormCDF(d2)
		delta = dff * NormCDF(d1)
		theta = -s*dff*NormPDF(d1)*sigma/(2*sqrtT) + rf*s*dff*NormCDF(d1) - rd*k*dfd*NormCDF(d2)
		rho = k * t * dfd * NormCDF(d2)
	case models.Put:
		premium = k*dfd*NormCDF(-d2) - s*dff*NormCDF(-d1)
		delta = dff * (NormCDF(d1) - 1)
		theta = -s*dff*NormPDF(d1)*sigma/(2*sqrtT) - rf*s*dff*NormCDF(-d1) + rd*k*dfd*NormCDF(-d2)
		rho = -k * t * dfd * NormCDF(-d2)
	}

	gamma := dff * NormPDF(d1) / (s * sigma * sqrtT)
	vega := s * dff * NormPDF(d1) * sqrtT / 100 // per vol point
	thetaPerDay := theta / 365

	return models.OptionResult{
		Premium:              premium * notional,
		PremiumPercentOfSpot: premium / s * 100,
		DeltaPercent:         delta * 100,
		DeltaNotional:        delta * notional,
		GammaPer1PctSpot:     gamma * s / 100,
		GammaNotional:        gamma * s / 100 * notional,
		VegaPer1PctVol:       vega,
		VegaNotional:         vega * notional,
		ThetaPerDay:          thetaPerDay,
		ThetaNotional:        thetaPerDay * notional,
		RhoPer1PctRate:       rho / 100,
		RhoNotional:          rho / 100 * notional,
	}, nil
}

// ForwardRate returns the outright forward implied by covered interest
// parity for the given time to expiry in years.
func ForwardRate(spot, timeToExpiryYears, domesticRatePct, foreignRatePct float64) float64 {
	return spot * math.Exp((domesticRatePct-foreignRatePct)/100*timeToExpiryYears)
}
