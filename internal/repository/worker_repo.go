package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wakala/attendance/internal/domain"
)

// WorkerRepo is the workforce directory. The attendance core only reads it;
// Save and BulkInsert exist for seeding and the admin endpoint.
type WorkerRepo struct {
	db *sql.DB
}

func NewWorkerRepo(db *sql.DB) *WorkerRepo {
	return &WorkerRepo{db: db}
}

const workerColumns = "id, name, fingerprint_id, daily_wage, balance, created_at"

// Save inserts a worker or updates its directory attributes. The balance is
// never touched here.
func (r *WorkerRepo) Save(ctx context.Context, w *domain.Worker) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (id, name, fingerprint_id, daily_wage, balance, created_at)
		VALUES (?,?,?,?,'0',?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			fingerprint_id = excluded.fingerprint_id,
			daily_wage = excluded.daily_wage`,
		w.ID, w.Name, nullString(w.FingerprintID), w.DailyWage.String(),
		w.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save worker: %w", err)
	}
	return nil
}

// BulkInsert adds workers that do not exist yet and returns how many were new.
func (r *WorkerRepo) BulkInsert(ctx context.Context, workers []domain.Worker) (int, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO workers (id, name, fingerprint_id, daily_wage, balance, created_at)
		VALUES (?,?,?,?,'0',?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range workers {
		w := &workers[i]
		res, err := stmt.ExecContext(ctx, w.ID, w.Name, nullString(w.FingerprintID), w.DailyWage.String(), now)
		if err != nil {
			return inserted, fmt.Errorf("insert worker %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *WorkerRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workers").Scan(&count)
	return count, err
}

// GetByID returns domain.ErrWorkerNotFound when no worker has the id.
func (r *WorkerRepo) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workerColumns+" FROM workers WHERE id = ?", id)
	return scanWorker(row)
}

// Resolve maps a spreadsheet identifier to a worker. A biometric
// fingerprint id wins over an internal id when both could match.
func (r *WorkerRepo) Resolve(ctx context.Context, identifier string) (*domain.Worker, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrWorkerNotFound
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workerColumns+` FROM workers
		WHERE fingerprint_id = ? OR id = ?
		ORDER BY CASE WHEN fingerprint_id = ? THEN 0 ELSE 1 END
		LIMIT 1`,
		identifier, identifier, identifier,
	)
	return scanWorker(row)
}

// ResolveFingerprint maps a biometric terminal id to a worker.
func (r *WorkerRepo) ResolveFingerprint(ctx context.Context, fingerprint string) (*domain.Worker, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, domain.ErrWorkerNotFound
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+workerColumns+" FROM workers WHERE fingerprint_id = ?", fingerprint)
	return scanWorker(row)
}

func (r *WorkerRepo) List(ctx context.Context) ([]domain.Worker, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+workerColumns+" FROM workers ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var workers []domain.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		workers = append(workers, *w)
	}
	return workers, rows.Err()
}

// --- helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanWorker(s scanner) (*domain.Worker, error) {
	var w domain.Worker
	var fingerprint sql.NullString
	var wage, balance, createdAt string

	err := s.Scan(&w.ID, &w.Name, &fingerprint, &wage, &balance, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}

	w.FingerprintID = fingerprint.String
	w.DailyWage = parseDecimal(wage)
	w.Balance = parseDecimal(balance)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &w, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
