// Package breaker implements a per-collaborator circuit breaker that isolates
// the gateway from a failing downstream service.
//
// Each Breaker is an independent state machine:
//
//   - StateClosed: calls pass through; a run of failures reaching the
//     configured threshold trips the breaker to open.
//   - StateOpen: calls fail immediately with *OpenError and no network
//     attempt, until the recovery timeout has elapsed since the last failure.
//   - StateHalfOpen: exactly one trial call is allowed through; success closes
//     the breaker, failure re-opens it and restarts the recovery timer.
//
// All state is guarded by a single mutex per instance, so concurrent callers
// against the same collaborator observe consistent transitions and only one
// of them can win the half-open trial.
package breaker

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // normal operation, calls pass through
	StateOpen                  // failing, calls are rejected immediately
	StateHalfOpen              // probing, a single trial call is allowed
)

// String returns a human-readable state name.
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

var transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "Total number of circuit breaker state transitions.",
	},
	[]string{"service", "to"},
)

func init() {
	prometheus.MustRegister(transitions)
}

// OpenError is returned when a call is rejected because the breaker for the
// named service is open. No network attempt has been made.
type OpenError struct {
	Service string
}

// Error implements the error interface.
func (e *OpenError) Error() string { return e.Service + " unavailable" }

// Breaker is a failure-isolation state machine for one downstream service.
// The zero value is not usable; construct with New.
type Breaker struct {
	name      string
	threshold int
	recovery  time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool

	now func() time.Time // injectable clock for tests
}

// New returns a closed Breaker for the named service. threshold is the number
// of consecutive failures that trips the breaker; recovery is how long the
// breaker stays open before allowing a trial call.
func New(name string, threshold int, recovery time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		recovery:  recovery,
		now:       time.Now,
	}
}

// Name returns the service name the breaker guards.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn through the breaker. When the breaker is open and the recovery
// timeout has not elapsed, fn is not invoked and Do returns *OpenError.
// Otherwise fn's error (or nil) is returned and recorded against the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil)
	return err
}

// allow decides whether the next call may proceed, performing the
// open-to-half-open transition when the recovery timeout has elapsed.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.lastFailure) < b.recovery {
			return &OpenError{Service: b.name}
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return nil
	default: // StateHalfOpen
		if b.probing {
			// The trial slot is taken by another caller.
			return &OpenError{Service: b.name}
		}
		b.probing = true
		return nil
	}
}

// record applies the outcome of a completed call.
func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ok {
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		b.failures = 0
		b.probing = false
		return
	}

	b.failures++
	b.lastFailure = b.now()
	b.probing = false
	if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.threshold) {
		b.transition(StateOpen)
	}
}

// transition switches states and emits the transition to logs and metrics.
// Callers must hold b.mu.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	transitions.WithLabelValues(b.name, to.String()).Inc()
	log.Warn().
		Str("service", b.name).
		Stringer("from", from).
		Stringer("to", to).
		Int("failures", b.failures).
		Msg("circuit breaker state change")
}
