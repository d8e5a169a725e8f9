package breaker

import (
	"sync"
	"time"

	"github.com/ticketpulse/adwallet/internal/config"
)

// Registry holds one breaker per external service id
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker

	maxFailures int
	cooldown    time.Duration
}

// NewRegistry creates a breaker registry from config
func NewRegistry(cfg *config.Configuration) *Registry {
	return &Registry{
		breakers:    make(map[string]*Breaker),
		maxFailures: cfg.Breaker.FailureThreshold,
		cooldown:    time.Duration(cfg.Breaker.CooldownSeconds) * time.Second,
	}
}

// For returns the breaker for the given service id, creating it on first use
func (r *Registry) For(serviceID string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[serviceID]
	if !ok {
		b = NewBreaker(r.maxFailures, r.cooldown)
		r.breakers[serviceID] = b
	}
	return b
}

// Snapshots returns the state of every registered breaker
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.breakers))
	for id, b := range r.breakers {
		snap := b.Snapshot()
		snap.Service = id
		out = append(out, snap)
	}
	return out
}
