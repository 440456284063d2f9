package domain

import (
	"context"
	"time"
)

// PriceProvider fetches a current quote for a ticker from one external source.
// Implementations make a single outbound call and never retry.
type PriceProvider interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (PriceQuote, error)
}

// RateProvider fetches a conversion rate for one currency pair from one external source
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, from, to Currency) (ExchangeRate, error)
}

// LotRepository persists purchase lots. Every per-account call is scoped by owner.
type LotRepository interface {
	Create(ctx context.Context, lot PurchaseLot) error
	// GetByID returns ErrLotNotFound when the lot does not exist or belongs to another owner
	GetByID(ctx context.Context, owner, id string) (*PurchaseLot, error)
	// ListByTicker returns lots ordered by trade date then creation time
	ListByTicker(ctx context.Context, owner, ticker string) ([]PurchaseLot, error)
	ListByOwner(ctx context.Context, owner string) ([]PurchaseLot, error)
	// Tickers returns the distinct tickers the owner holds lots for, sorted
	Tickers(ctx context.Context, owner string) ([]string, error)
	Update(ctx context.Context, owner, id string, update LotUpdate, updatedAt time.Time) (*PurchaseLot, error)
	Delete(ctx context.Context, owner, id string) error
	// Stats aggregates lots across all owners, one entry per ticker
	Stats(ctx context.Context) ([]TickerStats, error)
	// OwnerCount returns the number of distinct owners with at least one lot
	OwnerCount(ctx context.Context) (int, error)
}

// Clock abstracts time for expiry-sensitive components
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CurrencyDetector infers the trading currency of a ticker
type CurrencyDetector interface {
	Detect(ticker string) Currency
}
