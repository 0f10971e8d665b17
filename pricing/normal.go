package pricing

import "math"

// Abramowitz & Stegun 26.2.17 rational approximation, |error| < 7.5e-8.
const (
	asP  = 0.2316419
	asB1 = 0.319381530
	asB2 = -0.356563782
	asB3 = 1.781477937
	asB4 = -1.821255978
	asB5 = 1.330274429

	sqrt2Pi = 2.5066282746310002
)

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	if x < 0 {
		return 1 - NormCDF(-x)
	}
	t := 1 / (1 + asP*x)
	poly := t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
	return 1 - NormPDF(x)*poly
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-x*x/2) / sqrt2Pi
}
