package clientdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
)

// RateStore persists resolved exchange rates in the exchange_rates table
type RateStore struct {
	repo *Repository
}

// NewRateStore creates a rate store on top of repo
func NewRateStore(repo *Repository) *RateStore {
	return &RateStore{repo: repo}
}

// Save records a live rate under its pair key
func (s *RateStore) Save(ctx context.Context, rate domain.ExchangeRate, ttl time.Duration) error {
	return s.repo.Store(ctx, TableExchangeRates, rate.Pair(), rate, ttl)
}

// LastKnown returns the most recently saved rate for a pair, fresh or not.
// Returns nil, nil when the pair was never saved.
func (s *RateStore) LastKnown(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error) {
	data, err := s.repo.Get(ctx, TableExchangeRates, domain.PairKey(from, to))
	if err != nil || data == nil {
		return nil, err
	}

	var rate domain.ExchangeRate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil, fmt.Errorf("failed to decode stored rate %s: %w", domain.PairKey(from, to), err)
	}
	if !domain.ValidPrice(rate.Rate) {
		return nil, nil
	}
	return &rate, nil
}

// Forget removes a pair
func (s *RateStore) Forget(ctx context.Context, from, to domain.Currency) error {
	return s.repo.Delete(ctx, TableExchangeRates, domain.PairKey(from, to))
}
