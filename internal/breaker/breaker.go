package breaker

import (
	"sync"
	"time"
)

// State represents the state of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// ServicePaymentProcessor is the service id for the external payment processor
const ServicePaymentProcessor = "payment_processor"

// Breaker implements the circuit breaker pattern for one external service.
// closed admits all calls; repeated failures open the circuit; after the
// cooldown a single probe is admitted half-open, and its outcome decides
// between closing again and re-opening.
type Breaker struct {
	mu sync.Mutex

	maxFailures int
	cooldown    time.Duration

	state          State
	failureCount   int
	probeInFlight  bool
	lastFailure    time.Time
	lastReason     string
	lastTransition time.Time
}

// NewBreaker creates a new circuit breaker
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		maxFailures:    maxFailures,
		cooldown:       cooldown,
		state:          StateClosed,
		lastTransition: time.Now().UTC(),
	}
}

// CanProceed reports whether a call may go out. While half-open it admits
// exactly one probe; everything else fails fast until the probe resolves.
func (b *Breaker) CanProceed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.lastFailure) >= b.cooldown {
			b.transition(StateHalfOpen)
			b.probeInFlight = true
			return true
		}
		return false
	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful call and closes the circuit
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.probeInFlight = false
	b.lastReason = ""
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// RecordFailure records a failed call. A failed half-open probe re-opens the
// circuit immediately; in closed state the circuit opens once the consecutive
// failure count reaches the threshold.
func (b *Breaker) RecordFailure(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.probeInFlight = false
	b.lastFailure = time.Now().UTC()
	b.lastReason = reason

	if b.state == StateHalfOpen || b.failureCount >= b.maxFailures {
		if b.state != StateOpen {
			b.transition(StateOpen)
		}
	}
}

func (b *Breaker) transition(next State) {
	b.state = next
	b.lastTransition = time.Now().UTC()
}

// Snapshot is a point-in-time view of a breaker for observability
type Snapshot struct {
	Service           string    `json:"service"`
	State             State     `json:"state"`
	FailureCount      int       `json:"failure_count"`
	LastFailureReason string    `json:"last_failure_reason,omitempty"`
	LastTransitionAt  time.Time `json:"last_transition_at"`
}

// Snapshot returns the breaker's current state
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		State:             b.state,
		FailureCount:      b.failureCount,
		LastFailureReason: b.lastReason,
		LastTransitionAt:  b.lastTransition,
	}
}
