package di

import (
	"fmt"

	"github.com/pricefolio/pricefolio/internal/clients/alphavantage"
	"github.com/pricefolio/pricefolio/internal/clients/currencyapi"
	"github.com/pricefolio/pricefolio/internal/clients/exchangerate"
	"github.com/pricefolio/pricefolio/internal/clients/finnhub"
	"github.com/pricefolio/pricefolio/internal/clients/fixer"
	"github.com/pricefolio/pricefolio/internal/clients/marketwatch"
	"github.com/pricefolio/pricefolio/internal/clients/yahoo"
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// BuildPriceProviders creates the price clients named in cfg.PriceProviders, in that order
func BuildPriceProviders(cfg *config.ProviderConfig, log zerolog.Logger) ([]domain.PriceProvider, error) {
	providers := make([]domain.PriceProvider, 0, len(cfg.PriceProviders))
	for _, name := range cfg.PriceProviders {
		switch name {
		case yahoo.Name:
			providers = append(providers, yahoo.NewClient(log))
		case alphavantage.Name:
			providers = append(providers, alphavantage.NewClient(cfg.AlphaVantageAPIKey, log))
		case marketwatch.Name:
			providers = append(providers, marketwatch.NewClient(log))
		case finnhub.Name:
			providers = append(providers, finnhub.NewClient(cfg.FinnhubAPIKey, log))
		default:
			return nil, fmt.Errorf("unknown price provider %q", name)
		}
	}
	return providers, nil
}

// BuildRateProviders creates the rate clients named in cfg.RateProviders, in that order
func BuildRateProviders(cfg *config.ProviderConfig, log zerolog.Logger) ([]domain.RateProvider, error) {
	providers := make([]domain.RateProvider, 0, len(cfg.RateProviders))
	for _, name := range cfg.RateProviders {
		switch name {
		case exchangerate.Name:
			providers = append(providers, exchangerate.NewClient(log))
		case fixer.Name:
			providers = append(providers, fixer.NewClient(cfg.FixerAPIKey, log))
		case currencyapi.Name:
			providers = append(providers, currencyapi.NewClient(cfg.CurrencyAPIKey, log))
		default:
			return nil, fmt.Errorf("unknown rate provider %q", name)
		}
	}
	return providers, nil
}
