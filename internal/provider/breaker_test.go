package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	clock := newFakeClock()
	b := newBreakerSet(3, 5*time.Minute, clock)

	assert.True(t, b.Allow("p"))
	assert.False(t, b.RecordFailure("p"))
	assert.False(t, b.RecordFailure("p"))
	assert.True(t, b.RecordFailure("p"), "third failure should open the breaker")
	assert.False(t, b.Allow("p"))
}

func TestBreakerClosesAfterCooldown(t *testing.T) {
	clock := newFakeClock()
	b := newBreakerSet(3, 5*time.Minute, clock)

	for i := 0; i < 3; i++ {
		b.RecordFailure("p")
	}
	assert.False(t, b.Allow("p"))

	clock.Advance(4 * time.Minute)
	assert.False(t, b.Allow("p"), "cooldown has not elapsed yet")

	clock.Advance(time.Minute)
	assert.True(t, b.Allow("p"))
	assert.Equal(t, 0, b.Failures("p"), "closing resets the failure count")
}

func TestBreakerResetClearsState(t *testing.T) {
	clock := newFakeClock()
	b := newBreakerSet(3, 5*time.Minute, clock)

	b.RecordFailure("p")
	b.RecordFailure("p")
	b.Reset("p")
	assert.Equal(t, 0, b.Failures("p"))
	assert.True(t, b.Allow("p"))
}

func TestBreakersAreIndependentPerProvider(t *testing.T) {
	clock := newFakeClock()
	b := newBreakerSet(3, 5*time.Minute, clock)

	for i := 0; i < 3; i++ {
		b.RecordFailure("a")
	}
	assert.False(t, b.Allow("a"))
	assert.True(t, b.Allow("b"))
}
