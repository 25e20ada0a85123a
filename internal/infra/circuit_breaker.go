package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker guarding the remote document store. A flapping or downed
// store would otherwise turn every synchronization pass into a slow failure;
// tripping open lets the scheduler fall back to cached snapshots immediately.
//
// States: Closed (requests flow) → Open (fast-fail) → HalfOpen (one probe).

// BreakerState is the current breaker state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String returns a readable state name for health endpoints and logs.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned when Execute is called while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig holds the tunable thresholds.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open
	SuccessThreshold int           // consecutive half-open successes to close
	OpenTimeout      time.Duration // how long to stay open before probing
}

// DefaultBreakerConfig matches a store that recovers within a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: 60 * time.Second}
}

// Breaker implements the state machine with mutex-guarded transitions.
type Breaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	successes    int
	lastFailure  time.Time
	failLimit    int
	successLimit int
	openTimeout  time.Duration
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &Breaker{
		state:        BreakerClosed,
		failLimit:    cfg.FailureThreshold,
		successLimit: cfg.SuccessThreshold,
		openTimeout:  cfg.OpenTimeout,
	}
}

// State returns the current state, promoting Open to HalfOpen once the open
// timeout has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && time.Since(b.lastFailure) >= b.openTimeout {
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return b.state
}

// Execute runs fn through the breaker, returning ErrBreakerOpen immediately
// when tripped.
func (b *Breaker) Execute(fn func() error) error {
	if b.State() == BreakerOpen {
		return ErrBreakerOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

// onFailure must be called under lock.
func (b *Breaker) onFailure() {
	b.failures++
	b.lastFailure = time.Now()
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.failLimit {
			b.state = BreakerOpen
			b.successes = 0
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.failures = 0
	}
}

// onSuccess must be called under lock.
func (b *Breaker) onSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.successLimit {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	}
}
