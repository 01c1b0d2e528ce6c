package provider

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/danielsht/flightclaims/internal/flight"
)

// SkipReason explains why the chain did not use a provider's data.
type SkipReason string

const (
	SkipBreakerOpen  SkipReason = "breaker-open"
	SkipCannotHandle SkipReason = "cannot-handle"
	SkipNoData       SkipReason = "no-data"
)

// Attempt is the audit record for one provider within a resolution call.
type Attempt struct {
	Provider   string        `json:"provider"`
	Success    bool          `json:"success"`
	FromCache  bool          `json:"from_cache,omitempty"`
	SkipReason SkipReason    `json:"skip_reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	HasData    bool          `json:"has_data"`
}

// ChainConfig tunes the orchestrator. Zero values fall back to the defaults
// below.
type ChainConfig struct {
	CacheTTL         time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	MaxBackoff       time.Duration
	Clock            Clock
}

const (
	defaultCacheTTL         = 30 * time.Minute
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = 5 * time.Minute
	defaultMaxBackoff       = 10 * time.Second
)

// Chain resolves one flight lookup against an ordered list of providers,
// with a response cache and per-provider circuit breakers. It owns all
// shared mutable state; independent lookups may run concurrently.
type Chain struct {
	providers  []Provider
	cache      *responseCache
	breakers   *breakerSet
	clock      Clock
	maxBackoff time.Duration
}

// NewChain creates an orchestrator over the given providers, sorted by
// ascending priority.
func NewChain(cfg ChainConfig, providers ...Provider) *Chain {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = defaultBreakerThreshold
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaultBreakerCooldown
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}

	ordered := make([]Provider, len(providers))
	copy(ordered, providers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	return &Chain{
		providers:  ordered,
		cache:      newResponseCache(cfg.CacheTTL, cfg.Clock),
		breakers:   newBreakerSet(cfg.BreakerThreshold, cfg.BreakerCooldown, cfg.Clock),
		clock:      cfg.Clock,
		maxBackoff: cfg.MaxBackoff,
	}
}

// Resolve tries providers in priority order until one returns data. A nil
// flight with a full attempt log means no provider had a record; the caller
// cannot distinguish that from a systemic outage, so the attempt log is the
// only diagnostic trail.
func (c *Chain) Resolve(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, []Attempt) {
	key := flight.Key(flightNumber, date)

	if cached, ok := c.cache.Get(key); ok {
		log.Printf("[chain] cache hit for %s", key)
		return cached, []Attempt{{Provider: "cache", Success: true, FromCache: true, HasData: true}}
	}

	var attempts []Attempt
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			log.Printf("[chain] lookup %s cancelled: %v", key, err)
			return nil, attempts
		}

		if !c.breakers.Allow(p.Name()) {
			log.Printf("[chain] %s breaker open, skipping", p.Name())
			attempts = append(attempts, Attempt{Provider: p.Name(), SkipReason: SkipBreakerOpen})
			continue
		}
		if !p.CanHandle(flightNumber, date) {
			attempts = append(attempts, Attempt{Provider: p.Name(), SkipReason: SkipCannotHandle})
			continue
		}

		started := c.clock.Now()
		data, err := p.GetFlightData(ctx, flightNumber, date)
		elapsed := c.clock.Now().Sub(started)

		if err != nil {
			attempt := Attempt{Provider: p.Name(), Error: err.Error(), Duration: elapsed}
			attempts = append(attempts, attempt)
			log.Printf("[chain] %s failed for %s: %v", p.Name(), key, err)

			pe, ok := AsProviderError(err)
			if ok && pe.TripsBreaker() {
				if c.breakers.RecordFailure(p.Name()) {
					log.Printf("[chain] %s breaker opened after repeated failures", p.Name())
				}
			}
			if ok && pe.Kind == KindRateLimited {
				c.backoff(ctx, p.Name(), pe.RetryAfter)
			}
			continue
		}

		if data == nil {
			attempts = append(attempts, Attempt{Provider: p.Name(), Success: true, SkipReason: SkipNoData, Duration: elapsed})
			log.Printf("[chain] %s has no record of %s, trying next", p.Name(), key)
			continue
		}

		c.cache.Put(key, data)
		c.breakers.Reset(p.Name())
		attempts = append(attempts, Attempt{Provider: p.Name(), Success: true, HasData: true, Duration: elapsed})
		log.Printf("[chain] %s resolved %s (confidence %.2f)", p.Name(), key, data.Provider.Confidence)
		return data, attempts
	}

	log.Printf("[chain] no provider returned data for %s (%d attempts)", key, len(attempts))
	return nil, attempts
}

// backoff pauses before moving on to the next provider after a rate limit.
// The wait is capped so one throttled provider cannot stall the lookup.
func (c *Chain) backoff(ctx context.Context, name string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}
	wait := retryAfter
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	log.Printf("[chain] %s rate-limited, waiting %v before next provider", name, wait)
	c.clock.Sleep(ctx, wait)
}

// Statuses returns each provider's operational status keyed by name.
func (c *Chain) Statuses() map[string]Status {
	out := make(map[string]Status, len(c.providers))
	for _, p := range c.providers {
		out[p.Name()] = p.Status()
	}
	return out
}
