package marketdata_test

import (
	"testing"

	"github.com/bcdannyboy/fxvol/marketdata"
	"github.com/bcdannyboy/fxvol/models"
)

func TestSecurityNames(t *testing.T) {
	t.Parallel()

	if got, want := marketdata.ATMSecurity("EURUSD", "1M"), "EURUSDV1M Curncy"; got != want {
		t.Errorf("ATMSecurity = %q, want %q", got, want)
	}
	if got, want := marketdata.RRSecurity("EURUSD", 25, "1M"), "EURUSD25R1M Curncy"; got != want {
		t.Errorf("RRSecurity = %q, want %q", got, want)
	}
	if got, want := marketdata.BFSecurity("EURUSD", 25, "1M"), "EURUSD25B1M Curncy"; got != want {
		t.Errorf("BFSecurity = %q, want %q", got, want)
	}
	if got, want := marketdata.ATMSecurity("USDJPY", "18M"), "USDJPYV18M Curncy"; got != want {
		t.Errorf("ATMSecurity = %q, want %q", got, want)
	}
}

func TestSurfaceSecurities(t *testing.T) {
	t.Parallel()

	ids := marketdata.SurfaceSecurities("EURUSD", "3M")
	if want := 1 + 2*len(models.DeltaBuckets); len(ids) != want {
		t.Fatalf("got %d securities, want %d", len(ids), want)
	}
	if ids[0] != "EURUSDV3M Curncy" {
		t.Errorf("first security = %q, want the ATM vol", ids[0])
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate security %q", id)
		}
		seen[id] = true
	}
	if !seen["EURUSD5R3M Curncy"] || !seen["EURUSD35B3M Curncy"] {
		t.Errorf("wing securities missing from %v", ids)
	}
}

func TestParseSecurityRoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range marketdata.SurfaceSecurities("EURUSD", "2M") {
		parsed, err := marketdata.ParseSecurity(id)
		if err != nil {
			t.Fatalf("ParseSecurity(%q): %v", id, err)
		}
		if parsed.Pair != "EURUSD" || parsed.Tenor != "2M" {
			t.Errorf("ParseSecurity(%q) = %+v", id, parsed)
		}

		var rebuilt string
		switch parsed.Kind {
		case marketdata.KindATM:
			rebuilt = marketdata.ATMSecurity(parsed.Pair, parsed.Tenor)
		case marketdata.KindRR:
			rebuilt = marketdata.RRSecurity(parsed.Pair, parsed.Delta, parsed.Tenor)
		case marketdata.KindBF:
			rebuilt = marketdata.BFSecurity(parsed.Pair, parsed.Delta, parsed.Tenor)
		}
		if rebuilt != id {
			t.Errorf("round trip %q -> %+v -> %q", id, parsed, rebuilt)
		}
	}
}

func TestParseSecurityRejects(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"EURUSDV1M",           // missing suffix
		"FX Curncy",           // too short
		"EURUSD1M Curncy",     // no kind marker
		"EURUSDVXX Curncy",    // bad tenor
		"EURUSD25X1M Curncy",  // unknown kind
		"EURUSD25R Curncy",    // missing tenor
		"EURUSDV Curncy",      // missing tenor
	}
	for _, id := range bad {
		if _, err := marketdata.ParseSecurity(id); err == nil {
			t.Errorf("ParseSecurity(%q) should fail", id)
		}
	}
}

func TestQuoteFromRecords(t *testing.T) {
	t.Parallel()

	records := []models.SecurityData{
		{
			SecurityID: "EURUSDV1M Curncy",
			Fields: map[string]*float64{
				models.FieldBid: models.Float64Ptr(7.30),
				models.FieldAsk: models.Float64Ptr(7.38),
			},
			Success: true,
		},
		{
			SecurityID: "EURUSD25R1M Curncy",
			Fields: map[string]*float64{
				models.FieldBid: models.Float64Ptr(-0.625),
				models.FieldAsk: models.Float64Ptr(-0.5),
			},
			Success: true,
		},
		{
			// Failed records contribute nothing even when fields are present.
			SecurityID: "EURUSD25B1M Curncy",
			Fields: map[string]*float64{
				models.FieldBid: models.Float64Ptr(0.15),
			},
			Success: false,
			Error:   "stale subscription",
		},
	}

	q := marketdata.QuoteFromRecords("EURUSD", "1M", 34, records)

	if q.TenorLabel != "1M" || q.TenorDays != 34 {
		t.Errorf("tenor = %s/%d, want 1M/34", q.TenorLabel, q.TenorDays)
	}
	if q.AtmBid == nil || *q.AtmBid != 7.30 || q.AtmAsk == nil || *q.AtmAsk != 7.38 {
		t.Errorf("ATM = %v/%v, want 7.30/7.38", q.AtmBid, q.AtmAsk)
	}

	b25 := q.Bucket(25)
	if b25.RRBid == nil || *b25.RRBid != -0.625 || b25.RRAsk == nil || *b25.RRAsk != -0.5 {
		t.Errorf("25d RR = %v/%v, want -0.625/-0.5", b25.RRBid, b25.RRAsk)
	}
	if b25.BFBid != nil || b25.BFAsk != nil {
		t.Errorf("failed BF record leaked into the quote: %v/%v", b25.BFBid, b25.BFAsk)
	}

	if b10 := q.Bucket(10); b10.RRBid != nil || b10.BFBid != nil {
		t.Errorf("absent securities should stay null, got %v/%v", b10.RRBid, b10.BFBid)
	}
}
