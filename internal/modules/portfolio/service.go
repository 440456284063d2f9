// Package portfolio manages an account's purchase lots and builds per-ticker
// summaries valued in the reporting currency.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	"github.com/rs/zerolog"
)

var (
	_ domain.LotRepository = (*LotRepository)(nil)
	_ domain.LotRepository = (*PostgresLotRepository)(nil)
)

// PriceResolver resolves a current quote for a ticker
type PriceResolver interface {
	Resolve(ctx context.Context, ticker string) (pricing.Resolution, error)
}

// Converter converts amounts into the reporting currency
type Converter interface {
	Convert(ctx context.Context, amount float64, from domain.Currency) currency.Conversion
	ReportingCurrency() domain.Currency
}

// LotInput is the data needed to record a purchase
type LotInput struct {
	TradeDate     time.Time `json:"trade_date"`
	Ticker        string    `json:"ticker"`
	Shares        float64   `json:"shares"`
	PricePerShare float64   `json:"price_per_share"`
	Fees          float64   `json:"fees"`
}

// SummaryBatch holds the summaries of every ticker an account holds.
// Tickers whose summary failed are listed in Errors.
type SummaryBatch struct {
	Summaries []domain.PortfolioSummary `json:"summaries"`
	Errors    map[string]string         `json:"errors,omitempty"`
}

func (b *SummaryBatch) round() {
	for i := range b.Summaries {
		b.Summaries[i] = roundSummary(b.Summaries[i])
	}
}

// Service records lots and values them
type Service struct {
	repo        domain.LotRepository
	resolver    PriceResolver
	converter   Converter
	coordinator *analytics.Coordinator
	clock       domain.Clock
	newID       func() string
	log         zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	repo domain.LotRepository,
	resolver PriceResolver,
	converter Converter,
	coordinator *analytics.Coordinator,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Service{
		repo:        repo,
		resolver:    resolver,
		converter:   converter,
		coordinator: coordinator,
		clock:       clock,
		newID:       uuid.NewString,
		log:         log.With().Str("service", "portfolio").Logger(),
	}
}

// ReportingCurrency returns the currency summaries are valued in
func (s *Service) ReportingCurrency() domain.Currency {
	return s.converter.ReportingCurrency()
}

// AddLot validates and records a purchase for owner
func (s *Service) AddLot(ctx context.Context, owner string, in LotInput) (*domain.PurchaseLot, error) {
	ticker, err := domain.NormalizeTicker(in.Ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: ticker is required", domain.ErrInvalidLot)
	}

	now := s.clock.Now().UTC()
	lot := domain.PurchaseLot{
		ID:            s.newID(),
		Owner:         owner,
		Ticker:        ticker,
		Shares:        in.Shares,
		PricePerShare: in.PricePerShare,
		Fees:          in.Fees,
		TradeDate:     in.TradeDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := lot.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to record lot: %w", err)
	}
	return &lot, nil
}

// UpdateLot replaces shares, price, trade date and fees of one of owner's lots
func (s *Service) UpdateLot(ctx context.Context, owner, id string, update domain.LotUpdate) (*domain.PurchaseLot, error) {
	update.TradeDate = update.TradeDate.UTC()
	if err := update.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, owner, id, update, s.clock.Now().UTC())
}

// DeleteLot removes one of owner's lots
func (s *Service) DeleteLot(ctx context.Context, owner, id string) error {
	return s.repo.Delete(ctx, owner, id)
}

// ListLots returns all of owner's lots
func (s *Service) ListLots(ctx context.Context, owner string) ([]domain.PurchaseLot, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Summary values owner's lots of one ticker.
// Returns domain.ErrEmptyLotSet when owner holds no lot of ticker.
func (s *Service) Summary(ctx context.Context, owner, ticker string) (*domain.PortfolioSummary, error) {
	summary, err := s.summary(ctx, owner, ticker)
	if err != nil {
		return nil, err
	}
	rounded := roundSummary(*summary)
	return &rounded, nil
}

// Summaries values every ticker owner holds through the batch coordinator.
// A ticker that fails is reported in Errors and never aborts the batch.
func (s *Service) Summaries(ctx context.Context, owner string) (*SummaryBatch, error) {
	batch, err := s.summaries(ctx, owner)
	if err != nil {
		return nil, err
	}
	batch.round()
	return batch, nil
}

// Performance computes portfolio-wide totals, performers and risk for owner.
// Totals are summed from unrounded summaries and rounded once.
func (s *Service) Performance(ctx context.Context, owner string) (*analytics.Performance, *SummaryBatch, error) {
	batch, err := s.summaries(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	perf := analytics.ComputePerformance(batch.Summaries)
	batch.round()
	return &perf, batch, nil
}

func (s *Service) summary(ctx context.Context, owner, ticker string) (*domain.PortfolioSummary, error) {
	normalized, err := domain.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	lots, err := s.repo.ListByTicker(ctx, owner, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}
	if len(lots) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyLotSet, normalized)
	}

	res, err := s.resolver.Resolve(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return s.summarize(ctx, normalized, lots, res)
}

func (s *Service) summaries(ctx context.Context, owner string) (*SummaryBatch, error) {
	tickers, err := s.repo.Tickers(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickers: %w", err)
	}

	results := analytics.RunBatch(ctx, s.coordinator, tickers, func(ctx context.Context, ticker string) (*domain.PortfolioSummary, error) {
		return s.summary(ctx, owner, ticker)
	})

	batch := &SummaryBatch{Summaries: make([]domain.PortfolioSummary, 0, len(results))}
	for _, ticker := range tickers {
		r := results[ticker]
		if !r.Success {
			if batch.Errors == nil {
				batch.Errors = make(map[string]string)
			}
			batch.Errors[ticker] = r.Error
			continue
		}
		batch.Summaries = append(batch.Summaries, *r.Value)
	}

	sort.Slice(batch.Summaries, func(i, j int) bool {
		return batch.Summaries[i].Ticker < batch.Summaries[j].Ticker
	})
	return batch, nil
}

func (s *Service) summarize(ctx context.Context, ticker string, lots []domain.PurchaseLot, res pricing.Resolution) (*domain.PortfolioSummary, error) {
	reporting := s.converter.ReportingCurrency()
	quote := res.Quote

	summary := &domain.PortfolioSummary{
		Ticker:            ticker,
		OriginalCurrency:  quote.Currency,
		ReportingCurrency: reporting,
		PriceSource:       quote.Source,
		Warnings:          []string{},
		Lots:              lots,
	}

	if res.Synthetic() {
		summary.Warnings = append(summary.Warnings, "No live price available; showing a synthetic estimate")
	}

	var price *float64
	if domain.ValidPrice(quote.Price) {
		native := quote.Price
		summary.OriginalPrice = &native

		conv := s.converter.Convert(ctx, quote.Price, quote.Currency)
		if conv.Unconverted {
			// Value and profit stay empty rather than mixing currencies
			summary.Unconverted = true
			summary.PriceCurrency = quote.Currency
			summary.CurrentPrice = &native
			s.log.Warn().
				Str("ticker", ticker).
				Str("currency", string(quote.Currency)).
				Msg("Summary left unconverted")
			summary.Warnings = append(summary.Warnings, fmt.Sprintf(
				"No %s to %s exchange rate available; price shown in %s and value omitted",
				quote.Currency, reporting, quote.Currency))
		} else {
			converted := conv.Amount
			price = &converted
			summary.PriceCurrency = reporting
		}
	}

	totals, err := Aggregate(ticker, lots, price)
	if err != nil {
		return nil, err
	}

	if !summary.Unconverted {
		summary.CurrentPrice = totals.Price
	}
	summary.TotalShares = totals.TotalShares
	summary.TotalCost = totals.TotalCost
	summary.TotalFees = totals.TotalFees
	summary.WeightedAveragePrice = totals.WeightedAveragePrice
	summary.PurchaseCount = totals.PurchaseCount
	summary.TotalValue = totals.TotalValue
	summary.TotalProfit = totals.TotalProfit
	summary.ProfitPercentage = totals.ProfitPercentage

	return summary, nil
}

// roundSummary rounds the monetary fields and the percentage to two
// decimals. Shares are left at full precision.
func roundSummary(summary domain.PortfolioSummary) domain.PortfolioSummary {
	summary.OriginalPrice = roundPtr(summary.OriginalPrice)
	summary.CurrentPrice = roundPtr(summary.CurrentPrice)
	summary.TotalCost = Round(summary.TotalCost)
	summary.TotalFees = Round(summary.TotalFees)
	summary.WeightedAveragePrice = roundPtr(summary.WeightedAveragePrice)
	summary.TotalValue = roundPtr(summary.TotalValue)
	summary.TotalProfit = roundPtr(summary.TotalProfit)
	summary.ProfitPercentage = roundPtr(summary.ProfitPercentage)
	return summary
}
