package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/source"

	_ "modernc.org/sqlite"
)

// occurredLayout keeps occurred_at lexically ordered so BETWEEN works on text.
const occurredLayout = "2006-01-02 15:04:05"

const (
	minOccurredAt = "0001-01-01 00:00:00"
	maxOccurredAt = "9999-12-31 23:59:59"
)

var (
	_ source.TransactionSource = (*SQLiteRepository)(nil)
	_ source.TransactionWriter = (*SQLiteRepository)(nil)
)

// SQLiteRepository stores transactions in a local SQLite database. Timestamps
// are written as wall-clock text and read back in loc.
type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, loc: time.Local}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database still answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Find implements source.TransactionSource. Bounds are inclusive; the stored
// text has second precision, so the end is truncated to the second.
func (r *SQLiteRepository) Find(ctx context.Context, userID string, rg core.DateRange) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, category, description, type, occurred_at
		FROM transactions
		WHERE user_id = ? AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at, id`,
		userID,
		r.boundText(rg.Start),
		r.boundText(rg.End),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx         core.Transaction
			txType     string
			occurredAt string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Category, &tx.Description, &txType, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(txType)
		tx.Date, err = time.ParseInLocation(occurredLayout, occurredAt, r.loc)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad occurred_at %q: %w", tx.ID, occurredAt, err)
		}
		out = append(out, tx.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// boundText formats a range bound in r.loc. Bounds that fall outside the
// four-digit years after the zone shift are clamped, otherwise the text
// comparison would order "10000-..." before "2025-...".
func (r *SQLiteRepository) boundText(t time.Time) string {
	local := t.In(r.loc)
	switch {
	case local.Year() < 1:
		return minOccurredAt
	case local.Year() > 9999:
		return maxOccurredAt
	}
	return local.Format(occurredLayout)
}

// Add implements source.TransactionWriter.
func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) (string, error) {
	ids, err := r.AddBatch(ctx, []core.Transaction{tx})
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", ids[0],
		"user_id", tx.UserID,
		"amount", tx.Amount,
		"category", tx.Category)
	return ids[0], nil
}

// AddBatch inserts all transactions in a single database transaction. Either
// every row is stored or none is.
func (r *SQLiteRepository) AddBatch(ctx context.Context, txs []core.Transaction) ([]string, error) {
	prepared := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx = tx.Normalize()
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		prepared[i] = tx
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, category, description, type, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, len(prepared))
	for i, tx := range prepared {
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.UserID, tx.Amount, tx.Category, tx.Description, string(tx.Type),
			tx.Date.In(r.loc).Format(occurredLayout),
		); err != nil {
			return nil, fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
		ids[i] = tx.ID
	}

	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}
