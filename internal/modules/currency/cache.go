package currency

import (
	"sort"
	"sync"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
)

// DefaultRateTTL is how long a resolved rate is reused
const DefaultRateTTL = time.Hour

// RateCache holds at most one rate per currency pair until it expires
type RateCache struct {
	mu      sync.RWMutex
	entries map[string]domain.ExchangeRate
	clock   domain.Clock
}

// NewRateCache creates an empty cache reading time from clock
func NewRateCache(clock domain.Clock) *RateCache {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &RateCache{
		entries: make(map[string]domain.ExchangeRate),
		clock:   clock,
	}
}

// Get returns the cached rate for a pair if it has not expired
func (c *RateCache) Get(from, to domain.Currency) (domain.ExchangeRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.entries[domain.PairKey(from, to)]
	if !ok || rate.Expired(c.clock.Now()) {
		return domain.ExchangeRate{}, false
	}
	return rate, true
}

// Put stores rate, replacing any previous entry for the pair
func (c *RateCache) Put(rate domain.ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[rate.Pair()] = rate
}

// Invalidate drops one pair
func (c *RateCache) Invalidate(from, to domain.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, domain.PairKey(from, to))
}

// Clear drops every entry
func (c *RateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]domain.ExchangeRate)
}

// Entries returns a snapshot of all entries, expired ones included, sorted by pair
func (c *RateCache) Entries() []domain.ExchangeRate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.ExchangeRate, 0, len(c.entries))
	for _, r := range c.entries {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair() < out[j].Pair() })
	return out
}
