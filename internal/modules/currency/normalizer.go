package currency

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultProviderTimeout bounds each rate provider call
const DefaultProviderTimeout = 8 * time.Second

// RateStore persists live rates so they can be reused when every provider fails
type RateStore interface {
	Save(ctx context.Context, rate domain.ExchangeRate, ttl time.Duration) error
	LastKnown(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error)
}

// Conversion is the outcome of converting an amount between currencies.
// When Unconverted is set, Amount is the input amount still in Currency.
type Conversion struct {
	Amount      float64         `json:"amount"`
	Original    float64         `json:"original_amount"`
	From        domain.Currency `json:"from"`
	Currency    domain.Currency `json:"currency"`
	Rate        float64         `json:"rate"`
	Source      string          `json:"source"`
	Unconverted bool            `json:"unconverted"`
}

// Options configure a Normalizer
type Options struct {
	Reporting       domain.Currency
	TTL             time.Duration
	ProviderTimeout time.Duration
	Clock           domain.Clock
	Store           RateStore // optional
}

// Normalizer resolves exchange rates with a tiered fallback and converts amounts:
// cache, live providers in order, last persisted rate, static table.
type Normalizer struct {
	providers []domain.RateProvider
	cache     *RateCache
	store     RateStore
	reporting domain.Currency
	ttl       time.Duration
	timeout   time.Duration
	clock     domain.Clock
	group     singleflight.Group
	log       zerolog.Logger
}

// NewNormalizer creates a normalizer over the given providers and cache
func NewNormalizer(providers []domain.RateProvider, cache *RateCache, opts Options, log zerolog.Logger) *Normalizer {
	if opts.Reporting == "" {
		opts.Reporting = domain.CurrencyEUR
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultRateTTL
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}
	if cache == nil {
		cache = NewRateCache(opts.Clock)
	}

	return &Normalizer{
		providers: providers,
		cache:     cache,
		store:     opts.Store,
		reporting: domain.NormalizeCurrency(string(opts.Reporting)),
		ttl:       opts.TTL,
		timeout:   opts.ProviderTimeout,
		clock:     opts.Clock,
		log:       log.With().Str("service", "currency_normalizer").Logger(),
	}
}

// ReportingCurrency returns the currency Convert targets
func (n *Normalizer) ReportingCurrency() domain.Currency {
	return n.reporting
}

// Cache exposes the in-memory rate cache
func (n *Normalizer) Cache() *RateCache {
	return n.cache
}

// FallbackChain lists rate sources in the order they are consulted
func (n *Normalizer) FallbackChain() []string {
	chain := []string{"cache"}
	for _, p := range n.providers {
		chain = append(chain, p.Name())
	}
	if n.store != nil {
		chain = append(chain, domain.RateSourcePersisted)
	}
	return append(chain, domain.RateSourceStatic)
}

// Rate returns the conversion factor from -> to.
// Returns domain.ErrRateUnavailable when no source knows the pair.
func (n *Normalizer) Rate(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	from, to = domain.NormalizeCurrency(string(from)), domain.NormalizeCurrency(string(to))
	if from == to {
		return n.identity(from), nil
	}

	if rate, ok := n.cache.Get(from, to); ok {
		return rate, nil
	}

	return n.resolveShared(ctx, from, to, false)
}

// Refresh resolves a pair from the sources, ignoring any cached entry
func (n *Normalizer) Refresh(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	from, to = domain.NormalizeCurrency(string(from)), domain.NormalizeCurrency(string(to))
	if from == to {
		return n.identity(from), nil
	}
	return n.resolveShared(ctx, from, to, true)
}

// resolveShared collapses concurrent resolutions of one pair into a single call
func (n *Normalizer) resolveShared(ctx context.Context, from, to domain.Currency, force bool) (domain.ExchangeRate, error) {
	key := domain.PairKey(from, to)
	if force {
		key = "refresh:" + key
	}

	// The shared resolution outlives any single caller; callers stop waiting when their ctx ends
	detached := context.WithoutCancel(ctx)

	ch := n.group.DoChan(key, func() (interface{}, error) {
		if !force {
			if rate, ok := n.cache.Get(from, to); ok {
				return rate, nil
			}
		}
		return n.resolve(detached, from, to)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.ExchangeRate{}, res.Err
		}
		return res.Val.(domain.ExchangeRate), nil
	case <-ctx.Done():
		return domain.ExchangeRate{}, fmt.Errorf("%w: %s: %w", domain.ErrRateUnavailable, key, ctx.Err())
	}
}

func (n *Normalizer) resolve(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	now := n.clock.Now()

	for _, provider := range n.providers {
		rate, err := n.fetch(ctx, provider, from, to)
		if err != nil {
			n.log.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Str("pair", domain.PairKey(from, to)).
				Msg("Rate provider failed")
			continue
		}

		rate = n.stamp(rate, from, to, provider.Name(), now)
		n.cache.Put(rate)
		n.persist(ctx, rate)
		return rate, nil
	}

	if n.store != nil {
		last, err := n.store.LastKnown(ctx, from, to)
		if err != nil {
			n.log.Warn().Err(err).Str("pair", domain.PairKey(from, to)).Msg("Failed to read persisted rate")
		} else if last != nil {
			n.log.Warn().
				Str("pair", domain.PairKey(from, to)).
				Float64("rate", last.Rate).
				Time("resolved_at", last.ResolvedAt).
				Str("source", domain.RateSourcePersisted).
				Msg("Using last known rate (providers failed)")
			rate := n.stamp(*last, from, to, domain.RateSourcePersisted, now)
			n.cache.Put(rate)
			return rate, nil
		}
	}

	if value, ok := StaticRate(from, to); ok {
		n.log.Warn().
			Str("pair", domain.PairKey(from, to)).
			Float64("rate", value).
			Str("source", domain.RateSourceStatic).
			Msg("Using static fallback rate")
		rate := n.stamp(domain.ExchangeRate{Rate: value}, from, to, domain.RateSourceStatic, now)
		n.cache.Put(rate)
		return rate, nil
	}

	return domain.ExchangeRate{}, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, domain.PairKey(from, to))
}

func (n *Normalizer) fetch(ctx context.Context, provider domain.RateProvider, from, to domain.Currency) (rate domain.ExchangeRate, err error) {
	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = domain.NewProviderError(provider.Name(), domain.ErrProviderUnavailable, "panic: %v", p)
		}
	}()

	rate, err = provider.FetchRate(callCtx, from, to)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	if !domain.ValidPrice(rate.Rate) {
		return domain.ExchangeRate{}, domain.NewProviderError(provider.Name(), domain.ErrInvalidQuote, "rate %v", rate.Rate)
	}
	return rate, nil
}

func (n *Normalizer) stamp(rate domain.ExchangeRate, from, to domain.Currency, source string, now time.Time) domain.ExchangeRate {
	rate.From = from
	rate.To = to
	rate.Source = source
	if rate.ResolvedAt.IsZero() || source != domain.RateSourcePersisted {
		rate.ResolvedAt = now
	}
	rate.ExpiresAt = now.Add(n.ttl)
	return rate
}

func (n *Normalizer) persist(ctx context.Context, rate domain.ExchangeRate) {
	if n.store == nil {
		return
	}
	if err := n.store.Save(ctx, rate, n.ttl); err != nil {
		n.log.Warn().Err(err).Str("pair", rate.Pair()).Msg("Failed to persist rate")
	}
}

func (n *Normalizer) identity(c domain.Currency) domain.ExchangeRate {
	now := n.clock.Now()
	return domain.ExchangeRate{
		From:       c,
		To:         c,
		Rate:       1.0,
		Source:     domain.RateSourceIdentity,
		ResolvedAt: now,
		ExpiresAt:  now.Add(n.ttl),
	}
}

// Convert converts amount from its currency into the reporting currency
func (n *Normalizer) Convert(ctx context.Context, amount float64, from domain.Currency) Conversion {
	return n.ConvertBetween(ctx, amount, from, n.reporting)
}

// ConvertBetween converts amount between two currencies. It never fails:
// when no rate is available the amount is returned unchanged with Unconverted set.
func (n *Normalizer) ConvertBetween(ctx context.Context, amount float64, from, to domain.Currency) Conversion {
	from, to = domain.NormalizeCurrency(string(from)), domain.NormalizeCurrency(string(to))
	result := Conversion{Original: amount, From: from}

	if from == to {
		result.Amount = amount
		result.Currency = to
		result.Rate = 1.0
		result.Source = domain.RateSourceIdentity
		return result
	}

	rate, err := n.Rate(ctx, from, to)
	if err == nil {
		converted := amount * rate.Rate
		if math.IsNaN(converted) || math.IsInf(converted, 0) {
			err = fmt.Errorf("%w: non-finite conversion of %v", domain.ErrRateUnavailable, amount)
		} else {
			result.Amount = converted
			result.Currency = to
			result.Rate = rate.Rate
			result.Source = rate.Source
			return result
		}
	}

	if !errors.Is(err, domain.ErrRateUnavailable) {
		err = fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}
	n.log.Warn().
		Err(err).
		Str("from", string(from)).
		Str("to", string(to)).
		Float64("amount", amount).
		Msg("Conversion failed, returning unconverted amount")

	result.Amount = amount
	result.Currency = from
	result.Unconverted = true
	return result
}

// SyncResult is the outcome of refreshing one pair
type SyncResult struct {
	Pair   string  `json:"pair"`
	Rate   float64 `json:"rate,omitempty"`
	Source string  `json:"source,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Sync refreshes every currency in currencies into the reporting currency.
// Returns an error only if every pair failed.
func (n *Normalizer) Sync(ctx context.Context, currencies []domain.Currency) ([]SyncResult, error) {
	var results []SyncResult
	failures := 0

	for _, c := range currencies {
		c = domain.NormalizeCurrency(string(c))
		if c == n.reporting {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := SyncResult{Pair: domain.PairKey(c, n.reporting)}
		rate, err := n.Refresh(ctx, c, n.reporting)
		if err != nil {
			res.Error = err.Error()
			failures++
		} else {
			res.Rate = rate.Rate
			res.Source = rate.Source
		}
		results = append(results, res)
	}

	if len(results) > 0 && failures == len(results) {
		return results, fmt.Errorf("%w: all %d pairs failed", domain.ErrRateUnavailable, failures)
	}
	return results, nil
}
