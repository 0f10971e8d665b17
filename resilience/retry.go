package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"strings"
	"time"

	"github.com/bcdannyboy/fxvol/models"
)

// RetryPolicy bounds the retry loop for transient feed failures.
type RetryPolicy struct {
	MaxAttempts    int     `json:"max_attempts"`
	InitialDelayMs int     `json:"initial_delay_ms"`
	MaxDelayMs     int     `json:"max_delay_ms"`
	Multiplier     float64 `json:"multiplier"`
	TimeoutMs      int     `json:"timeout_ms"`
}

// DefaultRetryPolicy matches the feed's rate-limit guidance: three attempts,
// exponential backoff from 250ms, ten second per-attempt timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialDelayMs: 250,
		MaxDelayMs:     5000,
		Multiplier:     2,
		TimeoutMs:      10000,
	}
}

// Delay returns the backoff before the attempt following attempt n.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	ms := float64(p.InitialDelayMs) * math.Pow(p.Multiplier, float64(attempt-1))
	if max := float64(p.MaxDelayMs); ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

// RetryStats reports how a retried operation went.
type RetryStats struct {
	Attempts int
	Elapsed  time.Duration
}

// Operation is a cancellable unit of feed work.
type Operation func(ctx context.Context) ([]models.SecurityData, error)

// WithRetry runs op with per-attempt timeouts and exponential backoff.
// Non-transient errors abort immediately after the first attempt.
func WithRetry(ctx context.Context, policy RetryPolicy, op Operation) ([]models.SecurityData, RetryStats, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := time.Now()
	var (
		stats   RetryStats
		lastErr error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stats.Attempts = attempt
		data, err := runAttempt(ctx, policy, op)
		if err == nil {
			stats.Elapsed = time.Since(start)
			return data, stats, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == maxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		slog.Debug("retrying after transient failure", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			stats.Elapsed = time.Since(start)
			return nil, stats, fmt.Errorf("retry canceled after %d attempts: %w", attempt, ctx.Err())
		}
	}

	stats.Elapsed = time.Since(start)
	return nil, stats, fmt.Errorf("operation failed after %d attempts in %s: %w",
		stats.Attempts, stats.Elapsed.Round(time.Millisecond), lastErr)
}

// runAttempt races op against the per-attempt deadline so a hung call
// cannot stall the retry loop.
func runAttempt(ctx context.Context, policy RetryPolicy, op Operation) ([]models.SecurityData, error) {
	attemptCtx := ctx
	if policy.TimeoutMs > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, time.Duration(policy.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	type outcome struct {
		data []models.SecurityData
		err  error
	}
	resCh := make(chan outcome, 1)
	go func() {
		data, err := op(attemptCtx)
		resCh <- outcome{data: data, err: err}
	}()

	select {
	case out := <-resCh:
		return out.data, out.err
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

// transienter lets error types classify themselves.
type transienter interface {
	Transient() bool
}

var transientTexts = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"timed out",
	"temporarily unavailable",
	"service busy",
	"no such host",
}

// IsTransient reports whether an error is worth retrying. Self-classifying
// errors win; otherwise deadline, network timeout and DNS failures count,
// plus a short list of known transient messages.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var tr transienter
	if errors.As(err, &tr) {
		return tr.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, text := range transientTexts {
		if strings.Contains(msg, text) {
			return true
		}
	}
	return false
}
