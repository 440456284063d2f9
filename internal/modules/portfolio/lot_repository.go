package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pricefolio/pricefolio/internal/database"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

const lotColumns = `id, owner, ticker, shares, price_per_share, fees, trade_date, created_at, updated_at`

// LotRepository stores purchase lots in the SQLite portfolio database.
// Times are stored as unix seconds.
type LotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLotRepository creates a new SQLite lot repository
func NewLotRepository(db *sql.DB, log zerolog.Logger) *LotRepository {
	return &LotRepository{
		db:  db,
		log: log.With().Str("repo", "purchase_lot").Logger(),
	}
}

// Create inserts a lot
func (r *LotRepository) Create(ctx context.Context, lot domain.PurchaseLot) error {
	query := `INSERT INTO purchase_lots (` + lotColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		lot.ID,
		lot.Owner,
		lot.Ticker,
		lot.Shares,
		lot.PricePerShare,
		lot.Fees,
		lot.TradeDate.Unix(),
		lot.CreatedAt.Unix(),
		lot.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}

	r.log.Info().Str("id", lot.ID).Str("ticker", lot.Ticker).Msg("Lot created")
	return nil
}

// GetByID returns one of owner's lots, or domain.ErrLotNotFound
func (r *LotRepository) GetByID(ctx context.Context, owner, id string) (*domain.PurchaseLot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots WHERE id = ? AND owner = ?`

	lot, err := scanLot(r.db.QueryRowContext(ctx, query, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return &lot, nil
}

// ListByTicker returns owner's lots for ticker ordered by trade date
func (r *LotRepository) ListByTicker(ctx context.Context, owner, ticker string) ([]domain.PurchaseLot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots
		WHERE owner = ? AND ticker = ?
		ORDER BY trade_date, created_at, id`
	return r.list(ctx, query, owner, ticker)
}

// ListByOwner returns all of owner's lots ordered by trade date
func (r *LotRepository) ListByOwner(ctx context.Context, owner string) ([]domain.PurchaseLot, error) {
	query := `SELECT ` + lotColumns + ` FROM purchase_lots
		WHERE owner = ?
		ORDER BY trade_date, created_at, id`
	return r.list(ctx, query, owner)
}

// Tickers returns the distinct tickers owner holds at least one lot of
func (r *LotRepository) Tickers(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ticker FROM purchase_lots WHERE owner = ? ORDER BY ticker`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}
	return tickers, nil
}

// Update replaces the mutable fields of a lot in a single transaction
func (r *LotRepository) Update(ctx context.Context, owner, id string, update domain.LotUpdate, updatedAt time.Time) (*domain.PurchaseLot, error) {
	var updated domain.PurchaseLot

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + lotColumns + ` FROM purchase_lots WHERE id = ? AND owner = ?`
		lot, err := scanLot(tx.QueryRowContext(ctx, query, id, owner))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrLotNotFound
		}
		if err != nil {
			return err
		}

		updated = update.Apply(lot, updatedAt)
		_, err = tx.ExecContext(ctx, `
			UPDATE purchase_lots
			SET shares = ?, price_per_share = ?, fees = ?, trade_date = ?, updated_at = ?
			WHERE id = ? AND owner = ?`,
			updated.Shares,
			updated.PricePerShare,
			updated.Fees,
			updated.TradeDate.Unix(),
			updated.UpdatedAt.Unix(),
			id,
			owner,
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

// Delete removes one of owner's lots
func (r *LotRepository) Delete(ctx context.Context, owner, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM purchase_lots WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrLotNotFound
	}

	r.log.Info().Str("id", id).Msg("Lot deleted")
	return nil
}

// Stats returns per-ticker rollups across every owner
func (r *LotRepository) Stats(ctx context.Context) ([]domain.TickerStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker,
			COUNT(DISTINCT owner),
			COUNT(*),
			SUM(shares),
			SUM(shares * price_per_share) / SUM(shares),
			SUM(fees)
		FROM purchase_lots
		GROUP BY ticker
		ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.TickerStats
	for rows.Next() {
		var s domain.TickerStats
		if err := rows.Scan(&s.Ticker, &s.OwnerCount, &s.PurchaseCount, &s.TotalShares, &s.AveragePrice, &s.TotalFees); err != nil {
			return nil, fmt.Errorf("failed to scan ticker stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticker stats: %w", err)
	}
	return stats, nil
}

// OwnerCount returns the number of distinct owners
func (r *LotRepository) OwnerCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT owner) FROM purchase_lots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}

func (r *LotRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.PurchaseLot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.PurchaseLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}
	return lots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLot(row rowScanner) (domain.PurchaseLot, error) {
	var lot domain.PurchaseLot
	var tradeDate, createdAt, updatedAt int64

	err := row.Scan(
		&lot.ID,
		&lot.Owner,
		&lot.Ticker,
		&lot.Shares,
		&lot.PricePerShare,
		&lot.Fees,
		&tradeDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.PurchaseLot{}, err
	}

	lot.TradeDate = time.Unix(tradeDate, 0).UTC()
	lot.CreatedAt = time.Unix(createdAt, 0).UTC()
	lot.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return lot, nil
}
