package models

import "fmt"

// DeltaBuckets lists the smile pillars quoted per tenor, in market order.
var DeltaBuckets = []int{5, 10, 15, 25, 35}

// BucketQuote carries the risk-reversal and butterfly sides for one delta
// bucket. A nil side means the provider returned no quote, not zero.
type BucketQuote struct {
	Delta int      `json:"delta"`
	RRBid *float64 `json:"rr_bid"`
	RRAsk *float64 `json:"rr_ask"`
	BFBid *float64 `json:"bf_bid"`
	BFAsk *float64 `json:"bf_ask"`
}

// VolatilityQuote is the raw quote set for a single tenor: ATM volatility
// plus the risk-reversal/butterfly ladder across the delta buckets.
type VolatilityQuote struct {
	TenorLabel string        `json:"tenor_label"`
	TenorDays  int           `json:"tenor_days"`
	AtmBid     *float64      `json:"atm_bid"`
	AtmAsk     *float64      `json:"atm_ask"`
	Buckets    []BucketQuote `json:"buckets"`
}

// NewVolatilityQuote returns a quote with the full delta ladder laid out and
// every field null.
func NewVolatilityQuote(tenorLabel string, tenorDays int) VolatilityQuote {
	q := VolatilityQuote{TenorLabel: tenorLabel, TenorDays: tenorDays}
	for _, d := range DeltaBuckets {
		q.Buckets = append(q.Buckets, BucketQuote{Delta: d})
	}
	return q
}

// Bucket returns the ladder entry for a delta, nil when the quote does not
// carry that bucket.
func (q *VolatilityQuote) Bucket(delta int) *BucketQuote {
	for i := range q.Buckets {
		if q.Buckets[i].Delta == delta {
			return &q.Buckets[i]
		}
	}
	return nil
}

// NamedField pairs a quote field with its reporting name.
type NamedField struct {
	Name  string
	Value *float64
}

// Fields enumerates every quoted field in reporting order. The tenor label is
// not a quoted field and is excluded.
func (q VolatilityQuote) Fields() []NamedField {
	fields := []NamedField{
		{Name: "atm_bid", Value: q.AtmBid},
		{Name: "atm_ask", Value: q.AtmAsk},
	}
	for _, d := range DeltaBuckets {
		b := q.Bucket(d)
		if b == nil {
			b = &BucketQuote{Delta: d}
		}
		prefix := fmt.Sprintf("%dd", d)
		fields = append(fields,
			NamedField{Name: "rr_" + prefix + "_bid", Value: b.RRBid},
			NamedField{Name: "rr_" + prefix + "_ask", Value: b.RRAsk},
			NamedField{Name: "bf_" + prefix + "_bid", Value: b.BFBid},
			NamedField{Name: "bf_" + prefix + "_ask", Value: b.BFAsk},
		)
	}
	return fields
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// Deref returns *p, or 0 when p is nil.
func Deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Mid prices the midpoint of whichever sides are present: the average when
// both are quoted, the quoted side when only one is, nil when neither is.
func Mid(bid, ask *float64) *float64 {
	switch {
	case bid != nil && ask != nil:
		m := (*bid + *ask) / 2
		return &m
	case bid != nil:
		v := *bid
		return &v
	case ask != nil:
		v := *ask
		return &v
	default:
		return nil
	}
}
