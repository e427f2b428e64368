package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wakala/attendance/internal/domain"
)

// ImportRepo keeps an audit trail of ingestion calls.
type ImportRepo struct {
	db *sql.DB
}

func NewImportRepo(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

func (r *ImportRepo) Insert(ctx context.Context, b *domain.ImportBatch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_batches
		(id, source, file_name, file_hash, date1904, processed, failed, ingested_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		b.ID, string(b.Source), nullString(b.FileName), nullString(b.FileHash),
		b.Date1904, b.Processed, b.Failed, b.IngestedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert import batch: %w", err)
	}
	return nil
}

// CountByHash reports how many times a file with this hash was ingested
// before. Re-ingestion is allowed; the count is only used for warnings.
func (r *ImportRepo) CountByHash(ctx context.Context, hash string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM import_batches WHERE file_hash = ?", hash,
	).Scan(&count)
	return count, err
}

func (r *ImportRepo) List(ctx context.Context, limit int) ([]domain.ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, file_name, file_hash, date1904, processed, failed, ingested_at
		FROM import_batches ORDER BY ingested_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []domain.ImportBatch
	for rows.Next() {
		var b domain.ImportBatch
		var source, ingestedAt string
		var fileName, fileHash sql.NullString
		if err := rows.Scan(&b.ID, &source, &fileName, &fileHash, &b.Date1904,
			&b.Processed, &b.Failed, &ingestedAt); err != nil {
			return nil, err
		}
		b.Source = domain.ImportSource(source)
		b.FileName = fileName.String
		b.FileHash = fileHash.String
		b.IngestedAt, _ = time.Parse(time.RFC3339, ingestedAt)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
