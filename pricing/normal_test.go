package pricing_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/fxvol/pricing"
)

const cdfTolerance = 1.5e-7 // twice the published approximation bound

func TestNormCDFAgainstErf(t *testing.T) {
	t.Parallel()
	for x := -6.0; x <= 6.0; x += 0.01 {
		want := 0.5 * (1 + math.Erf(x/math.Sqrt2))
		got := pricing.NormCDF(x)
		if math.Abs(got-want) > cdfTolerance {
			t.Fatalf("NormCDF(%.2f) = %.10f, want %.10f", x, got, want)
		}
	}
}

func TestNormCDFAgainstDistuv(t *testing.T) {
	t.Parallel()
	std := distuv.Normal{Mu: 0, Sigma: 1}
	for _, x := range []float64{-3.5, -1.96, -0.5, 0, 0.5, 1.2815, 2.3263, 4} {
		want := std.CDF(x)
		got := pricing.NormCDF(x)
		if math.Abs(got-want) > cdfTolerance {
			t.Errorf("NormCDF(%g) = %.10f, want %.10f", x, got, want)
		}
	}
}

func TestNormCDFSymmetry(t *testing.T) {
	t.Parallel()
	if got := pricing.NormCDF(0); math.Abs(got-0.5) > cdfTolerance {
		t.Errorf("NormCDF(0) = %.12f, want 0.5", got)
	}
	for _, x := range []float64{0.1, 0.7534, 1.5, 2.9, 5.5} {
		sum := pricing.NormCDF(x) + pricing.NormCDF(-x)
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("NormCDF(%g) + NormCDF(-%g) = %.15f, want 1", x, x, sum)
		}
	}
}

func TestNormPDF(t *testing.T) {
	t.Parallel()
	if got, want := pricing.NormPDF(0), 1/2.5066282746310002; math.Abs(got-want) > 1e-15 {
		t.Errorf("NormPDF(0) = %.15f, want %.15f", got, want)
	}
	if got, want := pricing.NormPDF(1.3), pricing.NormPDF(-1.3); got != want {
		t.Errorf("NormPDF not symmetric: %g vs %g", got, want)
	}
}
