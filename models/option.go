package models

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionRequest describes a European vanilla FX option to price. Rates and
// volatility are quoted in percent, time in years. A zero notional means one
// base-currency unit.
type OptionRequest struct {
	Spot              float64    `json:"spot"`
	Strike            float64    `json:"strike"`
	TimeToExpiryYears float64    `json:"time_to_expiry_years"`
	DomesticRatePct   float64    `json:"domestic_rate_pct"`
	ForeignRatePct    float64    `json:"foreign_rate_pct"`
	VolatilityPct     float64    `json:"volatility_pct"`
	OptionType        OptionType `json:"option_type"`
	Notional          float64    `json:"notional"`
}

// OptionResult carries the premium and the premium-included FX-convention
// Greeks, each in its market scaling and multiplied out by the request
// notional.
type OptionResult struct {
	Premium              float64 `json:"premium"`
	PremiumPercentOfSpot float64 `json:"premium_percent_of_spot"`
	DeltaPercent         float64 `json:"delta_percent"`
	DeltaNotional        float64 `json:"delta_notional"`
	GammaPer1PctSpot     float64 `json:"gamma_per_1pct_spot"`
	GammaNotional        float64 `json:"gamma_notional"`
	VegaPer1PctVol       float64 `json:"vega_per_1pct_vol"`
	VegaNotional         float64 `json:"vega_notional"`
	ThetaPerDay          float64 `json:"theta_per_day"`
	ThetaNotional        float64 `json:"theta_notional"`
	RhoPer1PctRate       float64 `json:"rho_per_1pct_rate"`
	RhoNotional          float64 `json:"rho_notional"`
}
