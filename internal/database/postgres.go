package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresPortfolioSchema mirrors schemas/portfolio_schema.sql with native types
const postgresPortfolioSchema = `
create table if not exists purchase_lots (
	id text primary key,
	owner text not null,
	ticker text not null,
	shares double precision not null check (shares > 0),
	price_per_share double precision not null check (price_per_share > 0),
	fees double precision not null default 0 check (fees >= 0),
	trade_date timestamptz not null,
	created_at timestamptz not null,
	updated_at timestamptz not null
);
create index if not exists idx_purchase_lots_owner_ticker on purchase_lots(owner, ticker);
create index if not exists idx_purchase_lots_ticker on purchase_lots(ticker);
`

// PostgresDB wraps a pgx connection pool
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL and verifies the connection
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Migrate creates the portfolio tables if they do not exist
func (d *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, postgresPortfolioSchema); err != nil {
		return fmt.Errorf("failed to apply postgres portfolio schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (d *PostgresDB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// Pool returns the underlying pgx pool
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// QuickCheck pings the database
func (d *PostgresDB) QuickCheck(ctx context.Context) error {
	return d.pool.Ping(ctx)
}
