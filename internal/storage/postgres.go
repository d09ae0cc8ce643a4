package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// PostgresBackend keeps the collection as rows of the trades table
// (see db/migrations). A save replaces every row in one transaction.
// type, user_id, symbol and price are JSONB so any client value is kept.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an open database handle.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Read(ctx context.Context) ([]models.Trade, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, type, user_id, symbol, shares, price FROM trades ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trades := []models.Trade{}
	for rows.Next() {
		var (
			t                          models.Trade
			typ, userID, symbol, price []byte
		)
		if err := rows.Scan(&t.ID, &typ, &userID, &symbol, &t.Shares, &price); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Type = append([]byte(nil), typ...)
		t.UserID = append([]byte(nil), userID...)
		t.Symbol = append([]byte(nil), symbol...)
		t.Price = append([]byte(nil), price...)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return trades, nil
}

// Write deletes every row and bulk-loads the collection with COPY.
func (b *PostgresBackend) Write(ctx context.Context, trades []models.Trade) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear trades: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"trades",
		"position",
		"id",
		"type",
		"user_id",
		"symbol",
		"shares",
		"price",
	))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare copy: %w", err)
	}

	for i, t := range trades {
		if _, err := stmt.ExecContext(ctx, i+1, t.ID,
			jsonb(t.Type), jsonb(t.UserID), jsonb(t.Symbol), t.Shares, jsonb(t.Price)); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("copy trade %d: %w", t.ID, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// jsonb renders a raw value for a JSONB column; a missing value is stored as null.
func jsonb(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}
