package marketdata

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/bcdannyboy/fxvol/calendar"
	"github.com/bcdannyboy/fxvol/models"
)

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(uint64(rand.Int63())))
	},
}

// SyntheticProvider replays a deterministic volatility feed. Quote values
// depend only on the provider seed and the security ID, so refetches and
// re-batching agree. Flakiness and per-security failures are opt-in for
// exercising the recovery paths.
type SyntheticProvider struct {
	seed      uint64
	secondary Provider
	failing   map[string]struct{}
	flakeRate float64
}

// NewSyntheticProvider builds a healthy feed around a seed.
func NewSyntheticProvider(seed uint64) *SyntheticProvider {
	return &SyntheticProvider{seed: seed, failing: make(map[string]struct{})}
}

// WithSecondary chains a fallback provider behind this one.
func (p *SyntheticProvider) WithSecondary(secondary Provider) *SyntheticProvider {
	p.secondary = secondary
	return p
}

// WithFailingSecurities marks securities the feed permanently rejects.
func (p *SyntheticProvider) WithFailingSecurities(ids ...string) *SyntheticProvider {
	for _, id := range ids {
		p.failing[id] = struct{}{}
	}
	return p
}

// WithFlakiness makes each fetch fail transiently with the given probability.
func (p *SyntheticProvider) WithFlakiness(rate float64) *SyntheticProvider {
	p.flakeRate = rate
	return p
}

// Secondary returns the chained fallback, nil when none is set.
func (p *SyntheticProvider) Secondary() Provider { return p.secondary }

// FetchQuotes synthesizes records for the requested securities. A request
// containing a failing security fails whole, so callers see the same blast
// radius a real feed gives a bad identifier in a batch.
func (p *SyntheticProvider) FetchQuotes(ctx context.Context, ids []string) ([]models.SecurityData, error) {
	select {
	case <-ctx.Done():
		return nil, &TransientProviderError{Op: "fetch quotes", Err: ctx.Err()}
	default:
	}

	if p.flakeRate > 0 {
		rng := rngPool.Get().(*rand.Rand)
		flake := rng.Float64() < p.flakeRate
		rngPool.Put(rng)
		if flake {
			return nil, &TransientProviderError{Op: "fetch quotes", Err: errors.New("feed temporarily unavailable")}
		}
	}

	for _, id := range ids {
		if _, bad := p.failing[id]; bad {
			return nil, &PermanentDataError{Op: "fetch quotes", Err: fmt.Errorf("unknown security %q", id)}
		}
	}

	records := make([]models.SecurityData, 0, len(ids))
	for _, id := range ids {
		records = append(records, p.record(id))
	}
	return records, nil
}

func (p *SyntheticProvider) record(id string) models.SecurityData {
	parsed, err := ParseSecurity(id)
	if err != nil {
		return models.SecurityData{SecurityID: id, Error: err.Error()}
	}

	rng := rngPool.Get().(*rand.Rand)
	defer rngPool.Put(rng)
	rng.Seed(p.seed ^ fnvHash(id))

	days := float64(approxTenorDays(parsed.Tenor))

	var mid, spread float64
	switch parsed.Kind {
	case KindATM:
		mid = 5.5 + 3*(1-math.Exp(-days/200)) + 0.4*rng.NormFloat64()
		spread = 0.10 + 0.15*rng.Float64()
	case KindRR:
		scale := wingScale(parsed.Delta)
		mid = (-0.8*(1-math.Exp(-days/150)) + 0.2*rng.NormFloat64()) * scale
		spread = 0.05 + 0.10*rng.Float64()
	case KindBF:
		scale := wingScale(parsed.Delta)
		mid = (0.15 + 0.2*(1-math.Exp(-days/250)) + 0.05*rng.NormFloat64()) * scale
		spread = 0.05 + 0.08*rng.Float64()
	}

	return models.SecurityData{
		SecurityID: id,
		Fields: map[string]*float64{
			models.FieldBid:  models.Float64Ptr(mid - spread/2),
			models.FieldAsk:  models.Float64Ptr(mid + spread/2),
			models.FieldLast: models.Float64Ptr(mid),
		},
		Success: true,
	}
}

// wingScale widens the synthetic quotes toward the low-delta wings.
func wingScale(delta int) float64 {
	if delta <= 0 {
		return 1
	}
	return math.Sqrt(25 / float64(delta))
}

func approxTenorDays(tenor string) int {
	n, unit, err := calendar.ParseTenor(tenor)
	if err != nil {
		return 30
	}
	switch unit {
	case 'D':
		return n
	case 'W':
		return 7 * n
	case 'M':
		return 30 * n
	default:
		return 365 * n
	}
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
