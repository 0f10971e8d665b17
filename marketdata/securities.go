package marketdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bcdannyboy/fxvol/calendar"
	"github.com/bcdannyboy/fxvol/models"
)

const securitySuffix = " Curncy"

// ATMSecurity names the at-the-money vol security for a pair and tenor,
// e.g. "EURUSDV1M Curncy".
func ATMSecurity(pair, tenor string) string {
	return fmt.Sprintf("%sV%s%s", pair, tenor, securitySuffix)
}

// RRSecurity names the risk reversal security for a delta bucket,
// e.g. "EURUSD25R1M Curncy".
func RRSecurity(pair string, delta int, tenor string) string {
	return fmt.Sprintf("%s%dR%s%s", pair, delta, tenor, securitySuffix)
}

// BFSecurity names the butterfly security for a delta bucket,
// e.g. "EURUSD25B1M Curncy".
func BFSecurity(pair string, delta int, tenor string) string {
	return fmt.Sprintf("%s%dB%s%s", pair, delta, tenor, securitySuffix)
}

// SurfaceSecurities lists every security behind one tenor of the surface:
// the ATM vol plus a risk reversal and butterfly per delta bucket.
func SurfaceSecurities(pair, tenor string) []string {
	ids := make([]string, 0, 1+2*len(models.DeltaBuckets))
	ids = append(ids, ATMSecurity(pair, tenor))
	for _, delta := range models.DeltaBuckets {
		ids = append(ids, RRSecurity(pair, delta, tenor), BFSecurity(pair, delta, tenor))
	}
	return ids
}

// SecurityKind distinguishes the surface security types.
type SecurityKind int

const (
	KindATM SecurityKind = iota
	KindRR
	KindBF
)

// ParsedSecurity is the decomposition of a surface security ID. Delta is
// zero for ATM securities.
type ParsedSecurity struct {
	Pair  string
	Kind  SecurityKind
	Delta int
	Tenor string
}

// ParseSecurity inverts the security naming scheme.
func ParseSecurity(id string) (ParsedSecurity, error) {
	if !strings.HasSuffix(id, securitySuffix) {
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}
	name := strings.TrimSuffix(id, securitySuffix)
	if len(name) < 8 {
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}
	pair, rest := name[:6], name[6:]

	if rest[0] == 'V' {
		tenor := rest[1:]
		if _, _, err := calendar.ParseTenor(tenor); err != nil {
			return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
		}
		return ParsedSecurity{Pair: pair, Kind: KindATM, Tenor: tenor}, nil
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest)-1 {
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}
	delta, err := strconv.Atoi(rest[:i])
	if err != nil {
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}

	var kind SecurityKind
	switch rest[i] {
	case 'R':
		kind = KindRR
	case 'B':
		kind = KindBF
	default:
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}

	tenor := rest[i+1:]
	if _, _, err := calendar.ParseTenor(tenor); err != nil {
		return ParsedSecurity{}, fmt.Errorf("unrecognized security %q", id)
	}
	return ParsedSecurity{Pair: pair, Kind: kind, Delta: delta, Tenor: tenor}, nil
}

// QuoteFromRecords assembles a tenor's ladder from fetched records. Failed
// records are ignored, leaving their fields null.
func QuoteFromRecords(pair, tenorLabel string, tenorDays int, records []models.SecurityData) models.VolatilityQuote {
	byID := make(map[string]models.SecurityData, len(records))
	for _, rec := range records {
		if rec.Success {
			byID[rec.SecurityID] = rec
		}
	}

	quote := models.NewVolatilityQuote(tenorLabel, tenorDays)
	if rec, ok := byID[ATMSecurity(pair, tenorLabel)]; ok {
		quote.AtmBid = rec.Field(models.FieldBid)
		quote.AtmAsk = rec.Field(models.FieldAsk)
	}
	for _, delta := range models.DeltaBuckets {
		b := quote.Bucket(delta)
		if rec, ok := byID[RRSecurity(pair, delta, tenorLabel)]; ok {
			b.RRBid = rec.Field(models.FieldBid)
			b.RRAsk = rec.Field(models.FieldAsk)
		}
		if rec, ok := byID[BFSecurity(pair, delta, tenorLabel)]; ok {
			b.BFBid = rec.Field(models.FieldBid)
			b.BFAsk = rec.Field(models.FieldAsk)
		}
	}
	return quote
}
