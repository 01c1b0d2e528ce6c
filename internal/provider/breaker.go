package provider

import (
	"sync"
	"time"
)

// breakerState tracks consecutive classified failures for one provider.
type breakerState struct {
	failures    int
	lastFailure time.Time
	open        bool
}

// breakerSet holds per-provider circuit breakers. A breaker opens after
// `threshold` consecutive classified failures and closes again once
// `cooldown` has elapsed since the last failure. There is no half-open
// trial state: the first call after cooldown goes straight through.
type breakerSet struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	clock     Clock
	states    map[string]*breakerState
}

func newBreakerSet(threshold int, cooldown time.Duration, clock Clock) *breakerSet {
	return &breakerSet{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     clock,
		states:    make(map[string]*breakerState),
	}
}

// Allow reports whether the provider may be called. An open breaker whose
// cooldown has elapsed closes fully and resets its failure count.
func (b *breakerSet) Allow(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.states[name]
	if !ok || !s.open {
		return true
	}
	if b.clock.Now().Sub(s.lastFailure) >= b.cooldown {
		s.open = false
		s.failures = 0
		return true
	}
	return false
}

// RecordFailure increments the consecutive-failure count and opens the
// breaker at the threshold. Returns true when this failure opened it.
func (b *breakerSet) RecordFailure(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.states[name]
	if !ok {
		s = &breakerState{}
		b.states[name] = s
	}
	s.failures++
	s.lastFailure = b.clock.Now()
	if !s.open && s.failures >= b.threshold {
		s.open = true
		return true
	}
	return false
}

// Reset clears the provider's failure count after a successful call.
func (b *breakerSet) Reset(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[name]; ok {
		s.failures = 0
		s.open = false
	}
}

// Failures returns the current consecutive-failure count (for diagnostics).
func (b *breakerSet) Failures(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[name]; ok {
		return s.failures
	}
	return 0
}
