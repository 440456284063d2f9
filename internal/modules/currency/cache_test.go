package currency

import (
	"testing"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
	testingutil "github.com/pricefolio/pricefolio/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCache_Expiry(t *testing.T) {
	clock := testingutil.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
	cache := NewRateCache(clock)

	cache.Put(domain.ExchangeRate{
		From: domain.CurrencyUSD, To: domain.CurrencyEUR, Rate: 0.92,
		ResolvedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour),
	})

	clock.Advance(59 * time.Minute)
	rate, ok := cache.Get(domain.CurrencyUSD, domain.CurrencyEUR)
	require.True(t, ok)
	assert.Equal(t, 0.92, rate.Rate)

	clock.Advance(2 * time.Minute)
	_, ok = cache.Get(domain.CurrencyUSD, domain.CurrencyEUR)
	assert.False(t, ok)

	// Expired entries stay visible in snapshots until replaced
	assert.Len(t, cache.Entries(), 1)
}

func TestRateCache_OneEntryPerPair(t *testing.T) {
	clock := testingutil.NewFakeClock(time.Now())
	cache := NewRateCache(clock)
	exp := clock.Now().Add(time.Hour)

	cache.Put(domain.ExchangeRate{From: "GBP", To: "EUR", Rate: 1.1, ExpiresAt: exp})
	cache.Put(domain.ExchangeRate{From: "GBP", To: "EUR", Rate: 1.2, ExpiresAt: exp})
	cache.Put(domain.ExchangeRate{From: "USD", To: "EUR", Rate: 0.9, ExpiresAt: exp})

	entries := cache.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "GBP:EUR", entries[0].Pair())
	assert.Equal(t, 1.2, entries[0].Rate)

	cache.Invalidate("GBP", "EUR")
	_, ok := cache.Get("GBP", "EUR")
	assert.False(t, ok)

	cache.Clear()
	assert.Empty(t, cache.Entries())
}
