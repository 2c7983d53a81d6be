package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gamma-omg/tradexchange/internal/market"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("no candles stored")

// Store caches candle history per pair and period, so that a run does not
// refetch the same history from the exchange.
type Store struct {
	log *slog.Logger
	db  *sql.DB
}

func Open(log *slog.Logger, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Debug("candle store opened", slog.String("path", path))
	return &Store{log: log, db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			pair   TEXT    NOT NULL,
			period INTEGER NOT NULL,
			epoch  INTEGER NOT NULL,
			open   REAL    NOT NULL,
			high   REAL    NOT NULL,
			low    REAL    NOT NULL,
			close  REAL    NOT NULL,
			volume REAL    NOT NULL,
			PRIMARY KEY (pair, period, epoch)
		);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts the candles in one transaction. Candles already stored under
// the same epoch are replaced.
func (s *Store) Save(ctx context.Context, pair string, period int64, candles []market.Candle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (pair, period, epoch, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, pair, period, c.Epoch, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert candle %d: %w", c.Epoch, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}

	s.log.Debug("candles saved", slog.String("pair", pair), slog.Int64("period", period), slog.Int("count", len(candles)))
	return nil
}

// Load returns the candles in [start, end] ordered by epoch. A zero bound is
// open.
func (s *Store) Load(ctx context.Context, pair string, period, start, end int64) ([]market.Candle, error) {
	if end == 0 {
		end = math.MaxInt64
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT epoch, open, high, low, close, volume
		FROM candles
		WHERE pair = ? AND period = ? AND epoch >= ? AND epoch <= ?
		ORDER BY epoch ASC
	`, pair, period, start, end)
	if err != nil {
		return nil, fmt.Errorf("sqlite query candles: %w", err)
	}
	defer rows.Close()

	var candles []market.Candle
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.Epoch, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite read candles: %w", err)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, pair, period)
	}

	return candles, nil
}
