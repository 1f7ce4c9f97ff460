package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"marketlens/internal/market"
)

// SQLiteBarStore persists bars across runs.
type SQLiteBarStore struct {
	db *sql.DB
}

const barsSchema = `
CREATE TABLE IF NOT EXISTS daily_bars (
	symbol TEXT NOT NULL,
	ts     INTEGER NOT NULL,
	open   REAL NOT NULL,
	high   REAL NOT NULL,
	low    REAL NOT NULL,
	close  REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (symbol, ts)
);
CREATE INDEX IF NOT EXISTS idx_daily_bars_symbol_ts ON daily_bars(symbol, ts);
`

// NewSQLite opens (and if needed bootstraps) the bar database at path.
func NewSQLite(path string) (*SQLiteBarStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open bar db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(barsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap bar db: %w", err)
	}
	return &SQLiteBarStore{db: db}, nil
}

func (s *SQLiteBarStore) Put(ctx context.Context, symbol string, bars market.Series) error {
	if symbol == "" {
		return errors.New("symbol is required")
	}
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_bars
		(symbol, ts, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Timestamp.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteBarStore) Get(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, open, high, low, close, volume
		FROM daily_bars WHERE symbol = ? AND ts BETWEEN ? AND ? ORDER BY ts`,
		symbol, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out market.Series
	for rows.Next() {
		var ts int64
		var b market.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteBarStore) Close() error { return s.db.Close() }
