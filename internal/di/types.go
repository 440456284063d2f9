// Package di wires databases, provider clients, services and jobs into a Container.
package di

import (
	"github.com/pricefolio/pricefolio/internal/clientdata"
	"github.com/pricefolio/pricefolio/internal/database"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/modules/portfolio"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	"github.com/pricefolio/pricefolio/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire and handed to the server and the scheduler.
type Container struct {
	// Databases. PostgresDB is set only when USE_SQLITE=false.
	PortfolioDB  *database.DB
	ClientDataDB *database.DB
	PostgresDB   *database.PostgresDB

	// Repositories
	LotRepo        domain.LotRepository
	ClientDataRepo *clientdata.Repository
	RateStore      *clientdata.RateStore

	// Providers, in configured priority order
	PriceProviders []domain.PriceProvider
	RateProviders  []domain.RateProvider

	// Services
	Detector         *currency.Detector
	RateCache        *currency.RateCache
	Normalizer       *currency.Normalizer
	Resolver         *pricing.Resolver
	Coordinator      *analytics.Coordinator
	PortfolioService *portfolio.Service
	AnalyticsService *analytics.Service
}

// JobInstances holds the background jobs registered with the scheduler
type JobInstances struct {
	RateSync       *currency.RateSyncJob
	Cleanup        *clientdata.CleanupJob
	WALCheckpoints *scheduler.CheckWALCheckpointsJob
	Databases      *scheduler.CheckDatabasesJob
}

// SQLiteDatabases returns the open SQLite databases
func (c *Container) SQLiteDatabases() []*database.DB {
	var out []*database.DB
	for _, db := range []*database.DB{c.PortfolioDB, c.ClientDataDB} {
		if db != nil {
			out = append(out, db)
		}
	}
	return out
}

// Close releases every database handle
func (c *Container) Close() {
	for _, db := range c.SQLiteDatabases() {
		_ = db.Close()
	}
	if c.PostgresDB != nil {
		c.PostgresDB.Close()
	}
}
