package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// PostgresLotRepository stores purchase lots in PostgreSQL
type PostgresLotRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresLotRepository creates a lot repository on a pgx pool
func NewPostgresLotRepository(pool *pgxpool.Pool, log zerolog.Logger) *PostgresLotRepository {
	return &PostgresLotRepository{
		pool: pool,
		log:  log.With().Str("repo", "purchase_lot_pg").Logger(),
	}
}

func (r *PostgresLotRepository) Create(ctx context.Context, lot domain.PurchaseLot) error {
	_, err := r.pool.Exec(ctx,
		`insert into purchase_lots (`+lotColumns+`) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lot.ID, lot.Owner, lot.Ticker, lot.Shares, lot.PricePerShare, lot.Fees,
		lot.TradeDate, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}
	r.log.Info().Str("id", lot.ID).Str("ticker", lot.Ticker).Msg("Lot created")
	return nil
}

func (r *PostgresLotRepository) GetByID(ctx context.Context, owner, id string) (*domain.PurchaseLot, error) {
	row := r.pool.QueryRow(ctx,
		`select `+lotColumns+` from purchase_lots where id = $1 and owner = $2`, id, owner)

	lot, err := scanPgLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return &lot, nil
}

func (r *PostgresLotRepository) ListByTicker(ctx context.Context, owner, ticker string) ([]domain.PurchaseLot, error) {
	return r.list(ctx,
		`select `+lotColumns+` from purchase_lots where owner = $1 and ticker = $2 order by trade_date, created_at, id`,
		owner, ticker)
}

func (r *PostgresLotRepository) ListByOwner(ctx context.Context, owner string) ([]domain.PurchaseLot, error) {
	return r.list(ctx,
		`select `+lotColumns+` from purchase_lots where owner = $1 order by trade_date, created_at, id`,
		owner)
}

func (r *PostgresLotRepository) Tickers(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`select distinct ticker from purchase_lots where owner = $1 order by ticker`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	tickers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect tickers: %w", err)
	}
	return tickers, nil
}

func (r *PostgresLotRepository) Update(ctx context.Context, owner, id string, update domain.LotUpdate, updatedAt time.Time) (*domain.PurchaseLot, error) {
	var updated domain.PurchaseLot

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`select `+lotColumns+` from purchase_lots where id = $1 and owner = $2 for update`, id, owner)
		lot, err := scanPgLot(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLotNotFound
		}
		if err != nil {
			return err
		}

		updated = update.Apply(lot, updatedAt)
		_, err = tx.Exec(ctx, `
			update purchase_lots
			set shares = $1, price_per_share = $2, fees = $3, trade_date = $4, updated_at = $5
			where id = $6 and owner = $7`,
			updated.Shares, updated.PricePerShare, updated.Fees, updated.TradeDate, updated.UpdatedAt, id, owner,
		)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrLotNotFound) {
			return nil, domain.ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to update lot: %w", err)
	}

	r.log.Info().Str("id", id).Msg("Lot updated")
	return &updated, nil
}

func (r *PostgresLotRepository) Delete(ctx context.Context, owner, id string) error {
	tag, err := r.pool.Exec(ctx, `delete from purchase_lots where id = $1 and owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	r.log.Info().Str("id", id).Msg("Lot deleted")
	return nil
}

func (r *PostgresLotRepository) Stats(ctx context.Context) ([]domain.TickerStats, error) {
	rows, err := r.pool.Query(ctx, `
		select ticker,
			count(distinct owner)::int,
			count(*)::int,
			sum(shares),
			sum(shares * price_per_share) / sum(shares),
			sum(fees)
		from purchase_lots
		group by ticker
		order by ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker stats: %w", err)
	}

	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TickerStats, error) {
		var s domain.TickerStats
		err := row.Scan(&s.Ticker, &s.OwnerCount, &s.PurchaseCount, &s.TotalShares, &s.AveragePrice, &s.TotalFees)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect ticker stats: %w", err)
	}
	return stats, nil
}

func (r *PostgresLotRepository) OwnerCount(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `select count(distinct owner)::int from purchase_lots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}

func (r *PostgresLotRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.PurchaseLot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}

	lots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PurchaseLot, error) {
		return scanPgLot(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect lots: %w", err)
	}
	return lots, nil
}

func scanPgLot(row pgx.Row) (domain.PurchaseLot, error) {
	var lot domain.PurchaseLot
	err := row.Scan(
		&lot.ID,
		&lot.Owner,
		&lot.Ticker,
		&lot.Shares,
		&lot.PricePerShare,
		&lot.Fees,
		&lot.TradeDate,
		&lot.CreatedAt,
		&lot.UpdatedAt,
	)
	if err != nil {
		return domain.PurchaseLot{}, err
	}
	lot.TradeDate = lot.TradeDate.UTC()
	lot.CreatedAt = lot.CreatedAt.UTC()
	lot.UpdatedAt = lot.UpdatedAt.UTC()
	return lot, nil
}
