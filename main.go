package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"

	"github.com/bcdannyboy/fxvol/calendar"
	"github.com/bcdannyboy/fxvol/logging"
	"github.com/bcdannyboy/fxvol/marketdata"
	"github.com/bcdannyboy/fxvol/models"
	"github.com/bcdannyboy/fxvol/pricing"
	"github.com/bcdannyboy/fxvol/resilience"
	"github.com/bcdannyboy/fxvol/surface"
	"github.com/bcdannyboy/fxvol/validation"
)

const (
	surfaceBatchSize = 11 // one tenor per batch: ATM plus 5 RRs and 5 BFs
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
	feedFlakiness    = 0.10
	gridStrikes      = 21
	reportFile       = "fxvol_report.json"
)

var surfaceTenors = []string{"1W", "2W", "1M", "2M", "3M", "6M", "9M", "1Y", "18M", "2Y"}

type gridJob struct {
	tenor  string
	days   int
	strike float64
}

type gridCell struct {
	Tenor      string  `json:"tenor"`
	TenorDays  int     `json:"tenor_days"`
	Strike     float64 `json:"strike"`
	OptionType string  `json:"option_type"`
	VolPct     float64 `json:"vol_pct"`
	Premium    float64 `json:"premium"`
	DeltaPct   float64 `json:"delta_pct"`
}

type runReport struct {
	Pair             string                         `json:"pair"`
	Spot             float64                        `json:"spot"`
	GeneratedAt      time.Time                      `json:"generated_at"`
	Classification   validation.BatchClassification `json:"batch_classification"`
	FailedSecurities []string                       `json:"failed_securities,omitempty"`
	FailureSummary   string                         `json:"failure_summary,omitempty"`
	Quality          validation.QualitySummary      `json:"quality"`
	Quotes           []models.ValidatedQuote        `json:"quotes"`
	Surface          []surface.Point                `json:"surface"`
	Grid             []gridCell                     `json:"grid"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	logging.Init(logging.Config{
		Level:      envString("FXVOL_LOG_LEVEL", "info"),
		File:       os.Getenv("FXVOL_LOG_FILE"),
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})

	pair := envString("FXVOL_PAIR", "EURUSD")
	spot := envFloat("FXVOL_SPOT", 1.1742)
	domRate := envFloat("FXVOL_DOMESTIC_RATE", 4.96)
	forRate := envFloat("FXVOL_FOREIGN_RATE", 1.90)
	strike := envFloat("FXVOL_STRIKE", 1.1000)
	notional := envFloat("FXVOL_NOTIONAL", 1_000_000)
	seed := envUint("FXVOL_SEED", 42)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitorCPUUsage(ctx)

	cal := calendar.Default()
	trade := time.Now()
	tenorDays := make(map[string]int, len(surfaceTenors))
	for _, tenor := range surfaceTenors {
		days, err := cal.TenorDays(trade, tenor)
		if err != nil {
			log.Fatalf("resolving tenor %s: %v", tenor, err)
		}
		tenorDays[tenor] = days
	}

	// The primary feed is flaky and rejects one butterfly outright; the
	// backup serves the same surface but shares the bad security, so it
	// rescues flakes while the poisoned id still fails end to end.
	badSecurity := marketdata.BFSecurity(pair, 5, "9M")
	backup := marketdata.NewSyntheticProvider(seed).WithFailingSecurities(badSecurity)
	provider := marketdata.NewSyntheticProvider(seed).
		WithFlakiness(feedFlakiness).
		WithFailingSecurities(badSecurity).
		WithSecondary(backup)

	breaker := resilience.NewCircuitBreaker(breakerThreshold, breakerCooldown)
	policy := resilience.DefaultRetryPolicy()

	fetchChain := func(ctx context.Context, ids []string) ([]models.SecurityData, error) {
		var lastErr error
		for prov := marketdata.Provider(provider); prov != nil; prov = prov.Secondary() {
			records, err := prov.FetchQuotes(ctx, ids)
			if err == nil {
				return records, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}

	processor := func(ctx context.Context, ids []string) ([]models.SecurityData, error) {
		var (
			records []models.SecurityData
			stats   resilience.RetryStats
		)
		err := breaker.Execute(func() error {
			var err error
			records, stats, err = resilience.WithRetry(ctx, policy, func(ctx context.Context) ([]models.SecurityData, error) {
				return fetchChain(ctx, ids)
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		if stats.Attempts > 1 {
			slog.Info("fetch recovered after retries", "attempts", stats.Attempts, "elapsed", stats.Elapsed)
		}
		return records, nil
	}

	var securityIDs []string
	for _, tenor := range surfaceTenors {
		securityIDs = append(securityIDs, marketdata.SurfaceSecurities(pair, tenor)...)
	}
	slog.Info("fetching volatility surface", "pair", pair, "tenors", len(surfaceTenors), "securities", len(securityIDs))

	result := resilience.BatchWithRecovery(ctx, securityIDs, surfaceBatchSize, processor)
	slog.Info("fetch complete",
		"requested", len(securityIDs), "fetched", len(result.Successful), "failed", len(result.Failed))

	var failureSummary string
	if len(result.BatchErrors) > 0 {
		errs := make([]error, 0, len(result.BatchErrors))
		for _, err := range result.BatchErrors {
			errs = append(errs, err)
		}
		failureSummary = resilience.FailureSummary(errs)
		slog.Warn("some batches degraded", "batches", len(errs), "summary", failureSummary)
	}

	validator := validation.NewValidator()
	classification := validator.ValidateBatch(result.Successful)
	slog.Info("batch classification",
		"successful", classification.Successful, "partial", classification.Partial, "failed", classification.Failed)

	now := time.Now()
	var (
		validated []models.ValidatedQuote
		mu        sync.Mutex
		wg        sync.WaitGroup
	)
	for _, tenor := range surfaceTenors {
		wg.Add(1)
		go func(tenor string) {
			defer wg.Done()

			quote := marketdata.QuoteFromRecords(pair, tenor, tenorDays[tenor], result.Successful)
			if !hasAnyField(quote) {
				slog.Warn("no data for tenor, using fallback shell", "tenor", tenor)
				quote = resilience.FallbackQuote(tenor, tenorDays[tenor])
			}
			vq := validator.Validate(quote, now)

			mu.Lock()
			validated = append(validated, vq)
			mu.Unlock()
		}(tenor)
	}
	wg.Wait()

	validation.FillMissingATM(validated)
	summary := validation.Summarize(validated)
	slog.Info("quality summary",
		"overall_score", summary.OverallScore,
		"complete", summary.CompleteRecords,
		"stale", summary.StaleRecords,
		"critical_warnings", summary.CriticalWarnings)

	pts := surface.Build(validated)
	if len(pts) == 0 {
		log.Fatal("no usable surface pillars, aborting")
	}

	jobs := buildGrid(spot, tenorDays)
	numCPU := runtime.NumCPU()
	fmt.Printf("Pricing %d grid cells across %d tenors\n", len(jobs), len(surfaceTenors))
	fmt.Printf("Using %d CPUs\n", numCPU)

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(jobs)),
		mpb.PrependDecorators(
			decor.Name("Pricing"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	cells := priceGrid(jobs, numCPU, bar, pts, spot, domRate, forRate)
	p.Wait()

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].TenorDays != cells[j].TenorDays {
			return cells[i].TenorDays < cells[j].TenorDays
		}
		return cells[i].Strike < cells[j].Strike
	})

	showcase(pair, spot, strike, notional, domRate, forRate, tenorDays["1M"], pts)

	report := runReport{
		Pair:             pair,
		Spot:             spot,
		GeneratedAt:      now,
		Classification:   classification,
		FailedSecurities: result.Failed,
		FailureSummary:   failureSummary,
		Quality:          summary,
		Quotes:           validated,
		Surface:          pts,
		Grid:             cells,
	}
	jreport, err := json.Marshal(report)
	if err != nil {
		fmt.Printf("Error marshalling report: %s\n", err.Error())
		return
	}
	if err := os.WriteFile(reportFile, jreport, 0644); err != nil {
		fmt.Printf("Error writing to file %s: %s\n", reportFile, err.Error())
		return
	}
	fmt.Printf("Successfully wrote %d quotes and %d grid cells to %s\n", len(validated), len(cells), reportFile)
}

func showcase(pair string, spot, strike, notional, domRate, forRate float64, days int, pts []surface.Point) {
	vol, err := surface.VolatilityAt(strike, spot, float64(days), pts)
	if err != nil {
		log.Fatalf("interpolating showcase vol: %v", err)
	}
	years := float64(days) / 365
	res, err := pricing.Price(models.OptionRequest{
		Spot:              spot,
		Strike:            strike,
		TimeToExpiryYears: years,
		DomesticRatePct:   domRate,
		ForeignRatePct:    forRate,
		VolatilityPct:     vol,
		OptionType:        models.Call,
		Notional:          notional,
	})
	if err != nil {
		log.Fatalf("pricing showcase option: %v", err)
	}
	fwd := pricing.ForwardRate(spot, years, domRate, forRate)

	fmt.Printf("\n%s 1M call, strike %.4f, notional %.0f\n", pair, strike, notional)
	fmt.Printf("Forward: %.6f  Surface vol: %.4f%%\n", fwd, vol)
	fmt.Printf("Premium: %.2f (%.4f%% of spot)\n", res.Premium, res.PremiumPercentOfSpot)
	fmt.Printf("Delta: %.2f%% (%.0f)  Gamma per 1%%: %.0f\n", res.DeltaPercent, res.DeltaNotional, res.GammaNotional)
	fmt.Printf("Vega per vol pt: %.0f  Theta per day: %.0f  Rho per 1%%: %.0f\n",
		res.VegaNotional, res.ThetaNotional, res.RhoNotional)
}

func buildGrid(spot float64, tenorDays map[string]int) []gridJob {
	var jobs []gridJob
	for _, tenor := range surfaceTenors {
		days := tenorDays[tenor]
		for i := 0; i < gridStrikes; i++ {
			strike := spot * (0.90 + 0.01*float64(i))
			jobs = append(jobs, gridJob{tenor: tenor, days: days, strike: strike})
		}
	}
	return jobs
}

func priceGrid(jobs []gridJob, numWorkers int, bar *mpb.Bar, pts []surface.Point, spot, domRate, forRate float64) []gridCell {
	var wg sync.WaitGroup
	jobChan := make(chan gridJob, len(jobs))
	resultChan := make(chan gridCell, len(jobs))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go gridWorker(jobChan, resultChan, &wg, bar, pts, spot, domRate, forRate)
	}

	go func() {
		for _, j := range jobs {
			jobChan <- j
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var cells []gridCell
	for cell := range resultChan {
		cells = append(cells, cell)
	}
	return cells
}

func gridWorker(jobs <-chan gridJob, results chan<- gridCell, wg *sync.WaitGroup, bar *mpb.Bar, pts []surface.Point, spot, domRate, forRate float64) {
	defer wg.Done()
	for j := range jobs {
		vol, err := surface.VolatilityAt(j.strike, spot, float64(j.days), pts)
		if err != nil {
			slog.Debug("skipping grid cell", "tenor", j.tenor, "strike", j.strike, "error", err)
			bar.Increment()
			continue
		}

		// Quote the OTM side of the smile.
		optType := models.Call
		if j.strike < spot {
			optType = models.Put
		}
		res, err := pricing.Price(models.OptionRequest{
			Spot:              spot,
			Strike:            j.strike,
			TimeToExpiryYears: float64(j.days) / 365,
			DomesticRatePct:   domRate,
			ForeignRatePct:    forRate,
			VolatilityPct:     vol,
			OptionType:        optType,
		})
		if err != nil {
			slog.Debug("skipping grid cell", "tenor", j.tenor, "strike", j.strike, "error", err)
			bar.Increment()
			continue
		}

		results <- gridCell{
			Tenor:      j.tenor,
			TenorDays:  j.days,
			Strike:     j.strike,
			OptionType: string(optType),
			VolPct:     vol,
			Premium:    res.Premium,
			DeltaPct:   res.DeltaPercent,
		}
		bar.Increment()
	}
}

func hasAnyField(q models.VolatilityQuote) bool {
	for _, f := range q.Fields() {
		if f.Value != nil {
			return true
		}
	}
	return false
}

func monitorCPUUsage(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err == nil && len(percentage) > 0 {
				slog.Debug("cpu usage", "percent", percentage[0])
			}
		}
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q, using %g", key, v, fallback)
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}
