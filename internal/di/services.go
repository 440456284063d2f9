package di

import (
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/modules/portfolio"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	"github.com/rs/zerolog"
)

// InitializeServices builds providers and the services on top of them.
// Repositories must be initialized first.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	priceProviders, err := BuildPriceProviders(cfg.Providers, log)
	if err != nil {
		return err
	}
	rateProviders, err := BuildRateProviders(cfg.Providers, log)
	if err != nil {
		return err
	}
	container.PriceProviders = priceProviders
	container.RateProviders = rateProviders

	clock := domain.SystemClock{}

	container.Detector = currency.NewDetector()
	container.RateCache = currency.NewRateCache(clock)
	container.Normalizer = currency.NewNormalizer(rateProviders, container.RateCache, currency.Options{
		Reporting:       domain.Currency(cfg.ReportingCurrency),
		TTL:             cfg.Providers.RateCacheTTL,
		ProviderTimeout: cfg.Providers.ProviderTimeout,
		Clock:           clock,
		Store:           container.RateStore,
	}, log)

	container.Resolver = pricing.NewResolver(priceProviders, container.Detector, cfg.Providers.ProviderTimeout, log)
	container.Coordinator = analytics.NewCoordinator(cfg.Providers.BatchSpacing, log)

	container.PortfolioService = portfolio.NewService(
		container.LotRepo,
		container.Resolver,
		container.Normalizer,
		container.Coordinator,
		clock,
		log,
	)
	container.AnalyticsService = analytics.NewService(container.LotRepo, container.Resolver, container.Coordinator, log)

	log.Info().
		Int("price_providers", len(priceProviders)).
		Int("rate_providers", len(rateProviders)).
		Str("reporting_currency", cfg.ReportingCurrency).
		Msg("Services initialized")

	return nil
}
