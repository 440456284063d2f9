// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Currency represents an ISO 4217 currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
	CurrencyHKD Currency = "HKD"
)

// NormalizeCurrency trims and upper-cases a currency code
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// Quote sources
const (
	SourceSynthetic  = "synthetic"
	sourceLivePrefix = "live:"
)

// LiveSource returns the source label of a quote served by the named provider
func LiveSource(provider string) string {
	return sourceLivePrefix + provider
}

// IsLiveSource reports whether a quote source came from a live provider
func IsLiveSource(source string) bool {
	return strings.HasPrefix(source, sourceLivePrefix)
}

// Rate sources that are not provider names
const (
	RateSourceIdentity  = "identity"
	RateSourcePersisted = "persisted"
	RateSourceStatic    = "static"
)

// NormalizeTicker trims and upper-cases a ticker.
// Returns ErrEmptyTicker when nothing is left.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", ErrEmptyTicker
	}
	return t, nil
}

// ValidPrice reports whether p is usable as a price: finite and strictly positive
func ValidPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// PriceQuote is a single observed price for a ticker
type PriceQuote struct {
	Timestamp time.Time `json:"timestamp"`
	Ticker    string    `json:"ticker"`
	Currency  Currency  `json:"currency"`
	Source    string    `json:"source"`
	Price     float64   `json:"price"`
}

// ExchangeRate is a resolved conversion factor between two currencies
type ExchangeRate struct {
	ResolvedAt time.Time `json:"resolved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	From       Currency  `json:"from"`
	To         Currency  `json:"to"`
	Source     string    `json:"source"`
	Rate       float64   `json:"rate"`
}

// Expired reports whether the rate is no longer usable at now
func (r ExchangeRate) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Pair returns the "FROM:TO" key of the rate
func (r ExchangeRate) Pair() string {
	return PairKey(r.From, r.To)
}

// PairKey builds the cache key for a currency pair
func PairKey(from, to Currency) string {
	return string(from) + ":" + string(to)
}

// PurchaseLot is one recorded purchase of a ticker by an account
type PurchaseLot struct {
	TradeDate     time.Time `json:"trade_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Ticker        string    `json:"ticker"`
	Shares        float64   `json:"shares"`
	PricePerShare float64   `json:"price_per_share"`
	Fees          float64   `json:"fees"`
}

// Cost returns shares * price per share, excluding fees
func (l PurchaseLot) Cost() float64 {
	return l.Shares * l.PricePerShare
}

// Validate checks the invariants of a lot before it is persisted
func (l PurchaseLot) Validate() error {
	if strings.TrimSpace(l.Owner) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidLot)
	}
	if _, err := NormalizeTicker(l.Ticker); err != nil {
		return fmt.Errorf("%w: ticker is required", ErrInvalidLot)
	}
	return validateAmounts(l.Shares, l.PricePerShare, l.Fees, l.TradeDate)
}

// LotUpdate replaces the mutable fields of a lot in one step
type LotUpdate struct {
	TradeDate     time.Time `json:"trade_date"`
	Shares        float64   `json:"shares"`
	PricePerShare float64   `json:"price_per_share"`
	Fees          float64   `json:"fees"`
}

// Validate checks the same amount invariants as PurchaseLot.Validate
func (u LotUpdate) Validate() error {
	return validateAmounts(u.Shares, u.PricePerShare, u.Fees, u.TradeDate)
}

// Apply returns lot with the update applied and UpdatedAt set to now
func (u LotUpdate) Apply(lot PurchaseLot, now time.Time) PurchaseLot {
	lot.Shares = u.Shares
	lot.PricePerShare = u.PricePerShare
	lot.TradeDate = u.TradeDate
	lot.Fees = u.Fees
	lot.UpdatedAt = now
	return lot
}

func validateAmounts(shares, price, fees float64, tradeDate time.Time) error {
	if !ValidPrice(shares) {
		return fmt.Errorf("%w: shares must be positive", ErrInvalidLot)
	}
	if !ValidPrice(price) {
		return fmt.Errorf("%w: price per share must be positive", ErrInvalidLot)
	}
	if fees < 0 || math.IsNaN(fees) || math.IsInf(fees, 0) {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidLot)
	}
	if tradeDate.IsZero() {
		return fmt.Errorf("%w: trade date is required", ErrInvalidLot)
	}
	return nil
}

// PortfolioSummary is the derived view of one ticker's lots. It is never persisted.
// Optional fields stay nil when no valid price is available.
type PortfolioSummary struct {
	CurrentPrice         *float64      `json:"current_price"`
	OriginalPrice        *float64      `json:"original_price"`
	TotalValue           *float64      `json:"total_value"`
	TotalProfit          *float64      `json:"total_profit"`
	ProfitPercentage     *float64      `json:"profit_percentage"`
	WeightedAveragePrice *float64      `json:"weighted_average_price"`
	Ticker               string        `json:"ticker"`
	PriceCurrency        Currency      `json:"price_currency"`
	OriginalCurrency     Currency      `json:"original_currency"`
	ReportingCurrency    Currency      `json:"reporting_currency"`
	PriceSource          string        `json:"price_source"`
	Warnings             []string      `json:"warnings"`
	Lots                 []PurchaseLot `json:"lots"`
	TotalShares          float64       `json:"total_shares"`
	TotalCost            float64       `json:"total_cost"`
	TotalFees            float64       `json:"total_fees"`
	PurchaseCount        int           `json:"purchase_count"`
	Unconverted          bool          `json:"unconverted"`
}

// TickerStats is an owner-agnostic rollup of all lots for one ticker
type TickerStats struct {
	Ticker        string  `json:"ticker"`
	OwnerCount    int     `json:"owner_count"`
	PurchaseCount int     `json:"purchase_count"`
	TotalShares   float64 `json:"total_shares"`
	AveragePrice  float64 `json:"average_price"`
	TotalFees     float64 `json:"total_fees"`
}
