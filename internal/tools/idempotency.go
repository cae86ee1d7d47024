package tools

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultIdempotencyTTL balances protection against flapping retries versus
// blocking legitimate repeats.
const DefaultIdempotencyTTL = 5 * time.Minute

// cleanupThreshold bounds the cache between sweeps. Expiry is enforced
// lazily on access plus an amortized sweep once the cache grows past the
// threshold; there is no background timer.
const cleanupThreshold = 1024

type idempotencyEntry struct {
	at     time.Time
	result Result
}

// IdempotencyGuard suppresses duplicate side effects from retried calls.
// Two calls sharing a key within the TTL produce the side effect at most
// once; the second caller gets the recorded outcome back.
type IdempotencyGuard struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGuard{
		entries: make(map[string]idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup reports whether key was recorded within the TTL, returning the
// prior outcome if so. Expired entries are dropped on access.
func (g *IdempotencyGuard) Lookup(key string) (Result, bool) {
	if key == "" {
		return Result{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		return Result{}, false
	}
	if g.now().Sub(e.at) > g.ttl {
		delete(g.entries, key)
		return Result{}, false
	}
	return e.result, true
}

// Record stores the outcome for key. Called only after a successful dispatch
// decision so a failed attempt remains retryable.
func (g *IdempotencyGuard) Record(key string, result Result) {
	if key == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[key] = idempotencyEntry{at: g.now(), result: result}
	if len(g.entries) > cleanupThreshold {
		g.sweepLocked()
	}
}

func (g *IdempotencyGuard) sweepLocked() {
	cutoff := g.now().Add(-g.ttl)
	before := len(g.entries)
	for k, e := range g.entries {
		if e.at.Before(cutoff) {
			delete(g.entries, k)
		}
	}
	log.Debug().
		Int("before", before).
		Int("after", len(g.entries)).
		Msg("idempotency cache swept")
}

// SetClock overrides the time source. Tests only.
func (g *IdempotencyGuard) SetClock(now func() time.Time) { g.now = now }
