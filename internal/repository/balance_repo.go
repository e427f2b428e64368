package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wakala/attendance/internal/domain"
)

// BalanceRepo is the per-worker running balance. Every increment is
// journalled as a balance entry; the worker row holds the running total.
type BalanceRepo struct {
	db *sql.DB
}

func NewBalanceRepo(db *sql.DB) *BalanceRepo {
	return &BalanceRepo{db: db}
}

// Increment adds amount to the worker's balance and journals it against
// workDate. Read, update and journal happen in one transaction.
func (r *BalanceRepo) Increment(ctx context.Context, workerID, workDate string, amount decimal.Decimal) (*domain.BalanceEntry, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	var current string
	err = sqlTx.QueryRowContext(ctx, "SELECT balance FROM workers WHERE id = ?", workerID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}

	entry := &domain.BalanceEntry{
		ID:           uuid.NewString(),
		WorkerID:     workerID,
		WorkDate:     workDate,
		Amount:       amount,
		BalanceAfter: parseDecimal(current).Add(amount),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := sqlTx.ExecContext(ctx,
		"UPDATE workers SET balance = ? WHERE id = ?",
		entry.BalanceAfter.String(), workerID,
	); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx,
		`INSERT INTO balance_entries (id, worker_id, work_date, amount, balance_after, created_at)
		VALUES (?,?,?,?,?,?)`,
		entry.ID, entry.WorkerID, entry.WorkDate, entry.Amount.String(),
		entry.BalanceAfter.String(), entry.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert balance entry: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return entry, nil
}

// CreditedFor sums what has been credited for one worker and date.
func (r *BalanceRepo) CreditedFor(ctx context.Context, workerID, workDate string) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT amount FROM balance_entries WHERE worker_id = ? AND work_date = ?",
		workerID, workDate,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan: %w", err)
		}
		sum = sum.Add(parseDecimal(amount))
	}
	return sum, rows.Err()
}

// Balance returns the worker's running balance.
func (r *BalanceRepo) Balance(ctx context.Context, workerID string) (decimal.Decimal, error) {
	var balance string
	err := r.db.QueryRowContext(ctx, "SELECT balance FROM workers WHERE id = ?", workerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, domain.ErrWorkerNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return parseDecimal(balance), nil
}

// Entries returns the most recent journal lines for a worker, newest first.
func (r *BalanceRepo) Entries(ctx context.Context, workerID string, limit int) ([]domain.BalanceEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, worker_id, work_date, amount, balance_after, created_at
		FROM balance_entries WHERE worker_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		workerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var entries []domain.BalanceEntry
	for rows.Next() {
		var e domain.BalanceEntry
		var amount, after, createdAt string
		if err := rows.Scan(&e.ID, &e.WorkerID, &e.WorkDate, &amount, &after, &createdAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Amount = parseDecimal(amount)
		e.BalanceAfter = parseDecimal(after)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
