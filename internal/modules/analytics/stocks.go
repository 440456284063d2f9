package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	"github.com/rs/zerolog"
)

// DefaultPopularLimit is how many tickers PopularTickers returns by default
const DefaultPopularLimit = 10

// PriceResolver resolves a current quote for a ticker
type PriceResolver interface {
	Resolve(ctx context.Context, ticker string) (pricing.Resolution, error)
}

// StockRow is one ticker's cross-account rollup with its current quote
type StockRow struct {
	domain.TickerStats
	CurrentPrice  *float64        `json:"current_price"`
	PriceCurrency domain.Currency `json:"price_currency,omitempty"`
	PriceSource   string          `json:"price_source,omitempty"`
}

// StockReport covers every ticker any account holds
type StockReport struct {
	Stocks            []StockRow `json:"stock_analytics"`
	TotalUniqueOwners int        `json:"total_unique_owners"`
}

// Service computes cross-account statistics
type Service struct {
	repo        domain.LotRepository
	resolver    PriceResolver
	coordinator *Coordinator
	log         zerolog.Logger
}

// NewService creates a new analytics service
func NewService(repo domain.LotRepository, resolver PriceResolver, coordinator *Coordinator, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		resolver:    resolver,
		coordinator: coordinator,
		log:         log.With().Str("service", "analytics").Logger(),
	}
}

// StockAnalytics returns per-ticker rollups ordered by owner count, with
// current prices resolved through the batch coordinator. A ticker whose
// price cannot be resolved keeps a nil price.
func (s *Service) StockAnalytics(ctx context.Context) (*StockReport, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker stats: %w", err)
	}
	owners, err := s.repo.OwnerCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count owners: %w", err)
	}

	sortByPopularity(stats)

	tickers := make([]string, len(stats))
	for i, st := range stats {
		tickers[i] = st.Ticker
	}
	quotes := RunBatch(ctx, s.coordinator, tickers, func(ctx context.Context, ticker string) (domain.PriceQuote, error) {
		res, err := s.resolver.Resolve(ctx, ticker)
		if err != nil {
			return domain.PriceQuote{}, err
		}
		return res.Quote, nil
	})

	report := &StockReport{Stocks: make([]StockRow, 0, len(stats)), TotalUniqueOwners: owners}
	for _, st := range stats {
		row := StockRow{TickerStats: st}
		if q, ok := quotes[st.Ticker]; ok && q.Success && domain.ValidPrice(q.Value.Price) {
			price := q.Value.Price
			row.CurrentPrice = &price
			row.PriceCurrency = q.Value.Currency
			row.PriceSource = q.Value.Source
		}
		report.Stocks = append(report.Stocks, row)
	}

	s.log.Debug().Int("tickers", len(report.Stocks)).Int("owners", owners).Msg("Stock analytics computed")
	return report, nil
}

// PopularTickers returns the tickers held by the most accounts.
// A non-positive limit means DefaultPopularLimit.
func (s *Service) PopularTickers(ctx context.Context, limit int) ([]domain.TickerStats, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker stats: %w", err)
	}

	sortByPopularity(stats)
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// sortByPopularity orders by owner count descending, then ticker
func sortByPopularity(stats []domain.TickerStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].OwnerCount != stats[j].OwnerCount {
			return stats[i].OwnerCount > stats[j].OwnerCount
		}
		return stats[i].Ticker < stats[j].Ticker
	})
}
