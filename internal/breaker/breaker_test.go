package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ticketpulse/adwallet/internal/config"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		assert.True(t, b.CanProceed())
		b.RecordFailure("timeout")
	}
	assert.Equal(t, StateClosed, b.Snapshot().State)

	assert.True(t, b.CanProceed())
	b.RecordFailure("timeout")

	snap := b.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, 3, snap.FailureCount)
	assert.Equal(t, "timeout", snap.LastFailureReason)
	assert.False(t, b.CanProceed())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	b.RecordFailure("timeout")
	b.RecordFailure("timeout")
	b.RecordSuccess()
	b.RecordFailure("timeout")
	b.RecordFailure("timeout")

	assert.Equal(t, StateClosed, b.Snapshot().State)
	assert.True(t, b.CanProceed())
}

func TestCooldownAdmitsSingleProbe(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.RecordFailure("timeout")
	assert.False(t, b.CanProceed())

	time.Sleep(20 * time.Millisecond)

	// Exactly one probe goes through after the cooldown
	assert.True(t, b.CanProceed())
	assert.Equal(t, StateHalfOpen, b.Snapshot().State)
	assert.False(t, b.CanProceed())
}

func TestProbeSuccessCloses(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.RecordFailure("timeout")
	time.Sleep(20 * time.Millisecond)

	assert.True(t, b.CanProceed())
	b.RecordSuccess()

	assert.Equal(t, StateClosed, b.Snapshot().State)
	assert.True(t, b.CanProceed())
}

func TestProbeFailureReopens(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.RecordFailure("timeout")
	time.Sleep(20 * time.Millisecond)

	assert.True(t, b.CanProceed())
	b.RecordFailure("still down")

	assert.Equal(t, StateOpen, b.Snapshot().State)
	assert.False(t, b.CanProceed())
}

func TestRegistryReusesBreakerPerService(t *testing.T) {
	cfg := config.GetDefaultConfig()
	r := NewRegistry(cfg)

	a := r.For("payment_processor")
	b := r.For("payment_processor")
	c := r.For("tax_service")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	a.RecordFailure("timeout")
	snaps := r.Snapshots()
	assert.Len(t, snaps, 2)
}
