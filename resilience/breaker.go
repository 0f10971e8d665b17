package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrServiceUnavailable is returned by an open breaker. It is intentionally
// not transient: callers must wait out the cooldown rather than retry into
// a tripped circuit.
var ErrServiceUnavailable = errors.New("service unavailable")

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips open after a run of consecutive failures and lets a
// single probe through once the cooldown has passed.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           State
	failureCount    int
	lastFailureTime time.Time

	threshold int
	cooldown  time.Duration
}

// NewCircuitBreaker builds a closed breaker tripping at threshold
// consecutive failures.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown}
}

// Execute runs op under the breaker. An open breaker rejects the call with
// ErrServiceUnavailable without invoking op.
func (cb *CircuitBreaker) Execute(op func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}
	err := op()
	cb.record(err == nil)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) < cb.cooldown {
			return ErrServiceUnavailable
		}
		cb.setState(StateHalfOpen)
	}
	return nil
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		cb.failureCount = 0
		if cb.state != StateClosed {
			cb.setState(StateClosed)
		}
		return
	}

	cb.failureCount++
	cb.lastFailureTime = time.Now()
	if cb.state == StateHalfOpen || cb.failureCount >= cb.threshold {
		cb.setState(StateOpen)
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(next State) {
	prev := cb.state
	cb.state = next
	if next == StateOpen {
		slog.Warn("circuit breaker opened", "failures", cb.failureCount, "cooldown", cb.cooldown)
		return
	}
	slog.Debug("circuit breaker state change", "from", prev.String(), "to", next.String())
}

// State reports the current state without advancing it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount reports the consecutive failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}
