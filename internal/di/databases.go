package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates the databases.
// client_data.db is always SQLite; purchase lots live in portfolio.db or PostgreSQL.
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// client_data.db - persisted exchange rates, rebuildable
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    database.NameClientData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	if cfg.UseSQLite {
		// portfolio.db - purchase lots, maximum durability
		portfolioDB, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
			Profile: database.ProfileLedger,
			Name:    database.NamePortfolio,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
		}
		container.PortfolioDB = portfolioDB
	} else {
		pg, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize postgres database: %w", err)
		}
		container.PostgresDB = pg
		if err := pg.Migrate(ctx); err != nil {
			container.Close()
			return nil, err
		}
	}

	for _, db := range container.SQLiteDatabases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().
		Bool("sqlite", cfg.UseSQLite).
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}
