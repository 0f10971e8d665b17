package surface_test

import (
	"math"
	"strings"
	"testing"

	"github.com/bcdannyboy/fxvol/models"
	"github.com/bcdannyboy/fxvol/surface"
)

const spot = 1.1742

func volAt(t *testing.T, strike, days float64, pts []surface.Point) float64 {
	t.Helper()
	v, err := surface.VolatilityAt(strike, spot, days, pts)
	if err != nil {
		t.Fatalf("VolatilityAt(%g, %g): %v", strike, days, err)
	}
	return v
}

func TestVolatilityAtPillarIdentity(t *testing.T) {
	t.Parallel()

	flatWings := []surface.Point{
		{TenorDays: 30, ATM: 7.0},
		{TenorDays: 90, ATM: 8.0},
		{TenorDays: 180, ATM: 9.0},
	}
	// At a pillar with no smile the ATM comes back untouched.
	if got := volAt(t, spot, 90, flatWings); math.Abs(got-8.0) > 1e-12 {
		t.Errorf("pillar vol = %.15f, want 8.0", got)
	}

	smiled := []surface.Point{
		{TenorDays: 30, ATM: 7.0, RR25: -0.6, BF25: 0.2},
		{TenorDays: 90, ATM: 8.0, RR25: -0.8, BF25: 0.25},
	}
	// The ATM strike sits at the 50-delta point, so the wing weight vanishes.
	if got := volAt(t, spot, 90, smiled); math.Abs(got-8.0) > 1e-6 {
		t.Errorf("pillar vol with smile = %.10f, want 8.0", got)
	}
}

func TestVolatilityAtFlatSurface(t *testing.T) {
	t.Parallel()
	flat := []surface.Point{
		{TenorDays: 30, ATM: 8.0},
		{TenorDays: 90, ATM: 8.0},
		{TenorDays: 365, ATM: 8.0},
	}
	for _, days := range []float64{30, 45, 90, 200, 365} {
		if got := volAt(t, spot, days, flat); math.Abs(got-8.0) > 1e-12 {
			t.Errorf("flat surface at %g days = %.15f, want 8.0", days, got)
		}
	}
}

func TestVolatilityAtTermInterpolation(t *testing.T) {
	t.Parallel()
	pts := []surface.Point{
		{TenorDays: 30, ATM: 7.0},
		{TenorDays: 90, ATM: 8.0},
	}
	mid := volAt(t, spot, 60, pts)
	if !(7.0 < mid && mid < 8.0) {
		t.Errorf("interpolated vol %.6f not between the pillars", mid)
	}
	// Variance interpolation is not linear in vol.
	linear := 7.5
	if math.Abs(mid-linear) < 1e-9 {
		t.Errorf("interpolation looks linear in vol: %.9f", mid)
	}
}

func TestVolatilityAtClamps(t *testing.T) {
	t.Parallel()
	pts := []surface.Point{
		{TenorDays: 30, ATM: 7.0},
		{TenorDays: 90, ATM: 8.0},
	}
	if got, want := volAt(t, spot, 5, pts), volAt(t, spot, 30, pts); math.Abs(got-want) > 1e-12 {
		t.Errorf("short expiry vol = %.10f, want clamp to first pillar %.10f", got, want)
	}
	if got, want := volAt(t, spot, 700, pts), volAt(t, spot, 90, pts); math.Abs(got-want) > 1e-12 {
		t.Errorf("long expiry vol = %.10f, want clamp to last pillar %.10f", got, want)
	}

	// A single pillar answers with its bare ATM, smile and all strikes ignored.
	single := []surface.Point{{TenorDays: 90, ATM: 8.0, RR25: -1.0, BF25: 0.3}}
	for _, strike := range []float64{spot, spot * 2, spot / 2} {
		if got := volAt(t, strike, 30, single); got != 8.0 {
			t.Errorf("single pillar vol at strike %g = %.10f, want 8.0", strike, got)
		}
	}
}

func TestVolatilityAtSmileWings(t *testing.T) {
	t.Parallel()
	// Flat ATM isolates the smile; wings differ per pillar.
	pts := []surface.Point{
		{TenorDays: 30, ATM: 8.0, RR25: -0.6, BF25: 0.2},
		{TenorDays: 90, ATM: 8.0, RR25: -1.0, BF25: 0.3},
	}

	// Far OTM call pins the full call wing of the nearer pillar.
	farCall := spot * 2
	if got, want := volAt(t, farCall, 50, pts), 8.0+0.2-0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("far call wing at 50d = %.9f, want %.9f", got, want)
	}
	if got, want := volAt(t, farCall, 70, pts), 8.0+0.3-0.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("far call wing at 70d = %.9f, want %.9f", got, want)
	}
	// Equidistant expiry snaps to the earlier pillar.
	if got, want := volAt(t, farCall, 60, pts), 8.0+0.2-0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("far call wing at 60d = %.9f, want %.9f", got, want)
	}

	// Negative risk reversal puts the put wing above the call wing.
	farPut := spot / 2
	putWing := volAt(t, farPut, 70, pts)
	callWing := volAt(t, farCall, 70, pts)
	if putWing <= callWing {
		t.Errorf("put wing %.6f should exceed call wing %.6f under negative RR", putWing, callWing)
	}
	if want := 8.0 + 0.3 + 0.5; math.Abs(putWing-want) > 1e-9 {
		t.Errorf("far put wing at 70d = %.9f, want %.9f", putWing, want)
	}

	// A mildly OTM call sits between the ATM level and the call wing.
	nearVol := volAt(t, spot*1.01, 70, pts)
	if !(callWing < nearVol && nearVol < 8.0) {
		t.Errorf("near OTM vol %.6f not between wing %.6f and ATM 8.0", nearVol, callWing)
	}
}

func TestVolatilityAtErrors(t *testing.T) {
	t.Parallel()

	_, err := surface.VolatilityAt(1.1, spot, 30, nil)
	if err == nil || !strings.Contains(err.Error(), "empty surface") {
		t.Errorf("empty surface error = %v", err)
	}

	pts := []surface.Point{{TenorDays: 30, ATM: 8.0}}
	if _, err := surface.VolatilityAt(-1, spot, 30, pts); err == nil {
		t.Error("negative strike should error")
	}
	if _, err := surface.VolatilityAt(1.1, 0, 30, pts); err == nil {
		t.Error("zero spot should error")
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	full := models.NewVolatilityQuote("6M", 185)
	full.AtmBid = models.Float64Ptr(7.75)
	full.AtmAsk = models.Float64Ptr(7.875)
	b := full.Bucket(25)
	b.RRBid = models.Float64Ptr(-0.625)
	b.RRAsk = models.Float64Ptr(-0.5)
	b.BFBid = models.Float64Ptr(0.125)
	b.BFAsk = models.Float64Ptr(0.25)

	bidOnly := models.NewVolatilityQuote("1M", 34)
	bidOnly.AtmBid = models.Float64Ptr(7.25)

	noAtm := models.NewVolatilityQuote("3M", 94)

	pts := surface.Build([]models.ValidatedQuote{
		{Quote: full},
		{Quote: bidOnly},
		{Quote: noAtm},
	})

	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2 (quote without ATM skipped)", len(pts))
	}
	if pts[0].TenorDays != 34 || pts[1].TenorDays != 185 {
		t.Errorf("points not sorted by tenor: %v", pts)
	}
	if pts[0].ATM != 7.25 || pts[0].RR25 != 0 || pts[0].BF25 != 0 {
		t.Errorf("single-sided pillar = %+v, want ATM 7.25 with zero wings", pts[0])
	}
	if pts[1].ATM != 7.8125 || pts[1].RR25 != -0.5625 || pts[1].BF25 != 0.1875 {
		t.Errorf("full pillar = %+v", pts[1])
	}
}

func TestSmileLadder(t *testing.T) {
	t.Parallel()

	q := models.NewVolatilityQuote("1M", 34)
	q.AtmBid = models.Float64Ptr(7.25)
	q.AtmAsk = models.Float64Ptr(7.375)
	for i := range q.Buckets {
		q.Buckets[i].RRBid = models.Float64Ptr(-0.625)
		q.Buckets[i].RRAsk = models.Float64Ptr(-0.5)
		q.Buckets[i].BFBid = models.Float64Ptr(0.125)
		q.Buckets[i].BFAsk = models.Float64Ptr(0.25)
	}

	ladder := surface.SmileLadder(q)
	if len(ladder) != len(models.DeltaBuckets) {
		t.Fatalf("ladder has %d rungs, want %d", len(ladder), len(models.DeltaBuckets))
	}
	for _, wv := range ladder {
		if wv.CallVol != 7.21875 {
			t.Errorf("call vol at %dd = %.6f, want 7.21875", wv.Delta, wv.CallVol)
		}
		if wv.PutVol != 7.78125 {
			t.Errorf("put vol at %dd = %.6f, want 7.78125", wv.Delta, wv.PutVol)
		}
	}

	// A bucket missing one leg drops out of the ladder.
	q.Bucket(10).BFAsk = nil
	q.Bucket(10).BFBid = nil
	ladder = surface.SmileLadder(q)
	if len(ladder) != 4 {
		t.Fatalf("ladder has %d rungs after dropping 10d, want 4", len(ladder))
	}
	for _, wv := range ladder {
		if wv.Delta == 10 {
			t.Error("10-delta rung should have been skipped")
		}
	}

	q.AtmBid = nil
	q.AtmAsk = nil
	if got := surface.SmileLadder(q); got != nil {
		t.Errorf("ladder without ATM = %v, want nil", got)
	}
}
