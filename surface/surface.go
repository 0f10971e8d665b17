// Package surface assembles volatility surface pillars from validated quotes
// and interpolates them in variance with a delta-weighted smile.
package surface

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/fxvol/models"
	"github.com/bcdannyboy/fxvol/pricing"
)

// Point is one tenor pillar of the surface, quoted in vol points.
type Point struct {
	TenorDays float64 `json:"tenor_days"`
	ATM       float64 `json:"atm"`
	RR25      float64 `json:"rr_25d"`
	BF25      float64 `json:"bf_25d"`
}

// Build extracts surface pillars from validated quotes. Quotes without any
// ATM side are skipped; missing 25-delta wings contribute zero.
func Build(validated []models.ValidatedQuote) []Point {
	pts := make([]Point, 0, len(validated))
	for _, vq := range validated {
		atm := models.Mid(vq.Quote.AtmBid, vq.Quote.AtmAsk)
		if atm == nil {
			continue
		}
		p := Point{TenorDays: float64(vq.Quote.TenorDays), ATM: *atm}
		if b := vq.Quote.Bucket(25); b != nil {
			p.RR25 = models.Deref(models.Mid(b.RRBid, b.RRAsk))
			p.BF25 = models.Deref(models.Mid(b.BFBid, b.BFAsk))
		}
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].TenorDays < pts[j].TenorDays })
	return pts
}

// VolatilityAt interpolates the surface at a strike and expiry. The term
// structure is linear in variance between pillars; the smile blends the ATM
// level toward the 25-delta wing implied by risk reversal and butterfly,
// weighted by the strike's distance from the 50-delta point. The blend is a
// market-convention approximation, not a fitted smile model.
func VolatilityAt(strike, spot, timeToExpiryDays float64, pts []Point) (float64, error) {
	if len(pts) == 0 {
		return 0, errors.New("cannot interpolate: empty surface")
	}
	if strike <= 0 || spot <= 0 {
		return 0, fmt.Errorf("strike and spot must be positive, got %g and %g", strike, spot)
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TenorDays < sorted[j].TenorDays })

	// A lone pillar carries no term or smile context.
	if len(sorted) == 1 {
		return sorted[0].ATM, nil
	}

	t := timeToExpiryDays
	if t < sorted[0].TenorDays {
		t = sorted[0].TenorDays
	}
	if t > sorted[len(sorted)-1].TenorDays {
		t = sorted[len(sorted)-1].TenorDays
	}

	var atmAt, rr, bf float64
	hi := sort.Search(len(sorted), func(i int) bool { return sorted[i].TenorDays >= t })
	if sorted[hi].TenorDays == t {
		// Exact pillar, no variance round trip.
		atmAt = sorted[hi].ATM
		rr = sorted[hi].RR25
		bf = sorted[hi].BF25
	} else {
		lo := hi - 1
		varLo := pillarVariance(sorted[lo].ATM, sorted[lo].TenorDays)
		varHi := pillarVariance(sorted[hi].ATM, sorted[hi].TenorDays)
		w := (t - sorted[lo].TenorDays) / (sorted[hi].TenorDays - sorted[lo].TenorDays)
		variance := varLo + w*(varHi-varLo)
		atmAt = math.Sqrt(variance*365/t) * 100

		// Wings snap to the nearer pillar.
		nearest := lo
		if sorted[hi].TenorDays-t < t-sorted[lo].TenorDays {
			nearest = hi
		}
		rr = sorted[nearest].RR25
		bf = sorted[nearest].BF25
	}

	if atmAt <= 0 {
		return atmAt, nil
	}
	sigmaT := atmAt / 100 * math.Sqrt(t/365)
	if sigmaT <= 0 {
		return atmAt, nil
	}

	m := math.Log(strike / spot)
	delta := 1 - pricing.NormCDF(-m/sigmaT)

	wing := atmAt + bf - rr/2 // put wing
	if delta >= 0.5 {
		wing = atmAt + bf + rr/2 // call wing
	}
	w := math.Abs(delta-0.5) / 0.25 // full wing weight at the 25-delta strike
	if w > 1 {
		w = 1
	}
	return (1-w)*atmAt + w*wing, nil
}

func pillarVariance(volPct, tenorDays float64) float64 {
	sigma := volPct / 100
	return sigma * sigma * tenorDays / 365
}

// WingVol is the smile read off one delta bucket.
type WingVol struct {
	Delta   int     `json:"delta"`
	CallVol float64 `json:"call_vol"`
	PutVol  float64 `json:"put_vol"`
}

// SmileLadder converts a quote's risk reversals and butterflies into
// call and put wing vols per delta bucket. Buckets missing either leg are
// skipped; a quote without an ATM level yields nothing.
func SmileLadder(q models.VolatilityQuote) []WingVol {
	atm := models.Mid(q.AtmBid, q.AtmAsk)
	if atm == nil {
		return nil
	}
	var ladder []WingVol
	for _, b := range q.Buckets {
		rr := models.Mid(b.RRBid, b.RRAsk)
		bf := models.Mid(b.BFBid, b.BFAsk)
		if rr == nil || bf == nil {
			continue
		}
		ladder = append(ladder, WingVol{
			Delta:   b.Delta,
			CallVol: *atm + *bf + *rr/2,
			PutVol:  *atm + *bf - *rr/2,
		})
	}
	return ladder
}
