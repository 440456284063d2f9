// Package pricing resolves a current price for a ticker from an ordered chain
// of providers, falling back to a deterministic synthetic price.
package pricing

import (
	"context"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultProviderTimeout bounds each provider call
const DefaultProviderTimeout = 8 * time.Second

// Attempt records the outcome of one provider call
type Attempt struct {
	Provider   string `json:"provider"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
}

// Resolution is a resolved quote plus the provider attempts behind it
type Resolution struct {
	Quote    domain.PriceQuote `json:"quote"`
	Attempts []Attempt         `json:"attempts"`
}

// Synthetic reports whether no live provider answered
func (r Resolution) Synthetic() bool {
	return r.Quote.Source == domain.SourceSynthetic
}

// Resolver tries providers in priority order and stops at the first valid quote
type Resolver struct {
	providers []domain.PriceProvider
	detector  domain.CurrencyDetector
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewResolver creates a resolver. A non-positive timeout means DefaultProviderTimeout.
func NewResolver(providers []domain.PriceProvider, detector domain.CurrencyDetector, timeout time.Duration, log zerolog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Resolver{
		providers: providers,
		detector:  detector,
		timeout:   timeout,
		log:       log.With().Str("service", "price_resolver").Logger(),
		now:       time.Now,
	}
}

// Providers returns provider names in priority order
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns a price for ticker. It only fails with domain.ErrEmptyTicker:
// when every provider fails the quote is synthetic.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Resolution, error) {
	normalized, err := domain.NormalizeTicker(ticker)
	if err != nil {
		return Resolution{}, err
	}

	currency := r.detector.Detect(normalized)
	attempts := make([]Attempt, 0, len(r.providers))

	for _, provider := range r.providers {
		quote, attempt := r.try(ctx, provider, normalized)
		attempts = append(attempts, attempt)
		if attempt.Success {
			quote.Ticker = normalized
			quote.Currency = currency
			return Resolution{Quote: quote, Attempts: attempts}, nil
		}
	}

	r.log.Warn().
		Err(domain.ErrAllProvidersExhausted).
		Str("ticker", normalized).
		Int("attempts", len(attempts)).
		Str("source", domain.SourceSynthetic).
		Msg("Using synthetic price")

	return Resolution{
		Quote: domain.PriceQuote{
			Ticker:    normalized,
			Price:     SyntheticPrice(normalized),
			Currency:  currency,
			Source:    domain.SourceSynthetic,
			Timestamp: r.now(),
		},
		Attempts: attempts,
	}, nil
}

func (r *Resolver) try(ctx context.Context, provider domain.PriceProvider, ticker string) (domain.PriceQuote, Attempt) {
	name := provider.Name()
	attempt := Attempt{Provider: name}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := r.now()
	quote, err := r.call(callCtx, provider, ticker)
	attempt.DurationMs = r.now().Sub(start).Milliseconds()

	if err == nil && !domain.ValidPrice(quote.Price) {
		err = domain.NewProviderError(name, domain.ErrInvalidQuote, "price %v", quote.Price)
	}
	if err != nil {
		attempt.Error = err.Error()
		r.log.Warn().Err(err).Str("provider", name).Str("ticker", ticker).Msg("Price provider failed")
		return domain.PriceQuote{}, attempt
	}

	attempt.Success = true
	quote.Source = domain.LiveSource(name)
	if quote.Timestamp.IsZero() {
		quote.Timestamp = r.now()
	}

	r.log.Debug().Str("provider", name).Str("ticker", ticker).Float64("price", quote.Price).Msg("Resolved live price")
	return quote, attempt
}

// call runs one provider and converts a panic into an error
func (r *Resolver) call(ctx context.Context, provider domain.PriceProvider, ticker string) (quote domain.PriceQuote, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = domain.NewProviderError(provider.Name(), domain.ErrProviderUnavailable, "panic: %v", p)
		}
	}()
	return provider.FetchQuote(ctx, ticker)
}
