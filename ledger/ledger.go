// Package ledger persists settled micropayments: nonce replay protection
// plus per-route revenue metering. Content data is never stored here.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrDuplicateNonce reports an attempt to settle an already-settled nonce.
var ErrDuplicateNonce = errors.New("nonce already settled")

// Settlement is one settled payment.
type Settlement struct {
	Nonce     string
	Payer     string
	Route     string
	Amount    int64
	SettledAt int64
}

// Totals summarizes the ledger for health reporting.
type Totals struct {
	Settlements int64 `json:"settlements"`
	Revenue     int64 `json:"revenue"`
}

type Ledger struct {
	db *sql.DB
}

func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// WAL mode allows concurrent readers with a single writer.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("ledger ready", "path", path)
	return &Ledger{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settlements (
			nonce      TEXT PRIMARY KEY,
			payer      TEXT NOT NULL,
			route      TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			settled_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_settlements_route ON settlements(route);
	`)
	return err
}

func (l *Ledger) Close() error { return l.db.Close() }

// Seen reports whether a nonce has already been settled.
func (l *Ledger) Seen(ctx context.Context, nonce string) (bool, error) {
	row := l.db.QueryRowContext(ctx, `SELECT 1 FROM settlements WHERE nonce = ?`, nonce)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Record inserts a settlement. A nonce collision returns ErrDuplicateNonce,
// so concurrent replays race on the primary key rather than on a check.
func (l *Ledger) Record(ctx context.Context, s Settlement) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO settlements (nonce, payer, route, amount, settled_at) VALUES (?, ?, ?, ?, ?)`,
		s.Nonce, s.Payer, s.Route, s.Amount, s.SettledAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateNonce
	}
	return err
}

// Totals returns settlement count and revenue summed over all routes.
func (l *Ledger) Totals(ctx context.Context) (Totals, error) {
	row := l.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM settlements`)
	var t Totals
	if err := row.Scan(&t.Settlements, &t.Revenue); err != nil {
		return Totals{}, err
	}
	return t, nil
}
