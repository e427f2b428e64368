package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
//
// The pool is capped at one connection: SQLite has a single writer anyway,
// and an in-memory database is private to the connection that created it.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fingerprint_id TEXT UNIQUE,
			daily_wage TEXT NOT NULL DEFAULT '0',
			balance TEXT NOT NULL DEFAULT '0',
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS attendance_records (
			worker_id TEXT NOT NULL,
			work_date TEXT NOT NULL,
			check_in TEXT NOT NULL,
			check_out TEXT,
			overtime_hours TEXT,
			source TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (worker_id, work_date),
			FOREIGN KEY (worker_id) REFERENCES workers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_work_date ON attendance_records(work_date)`,

		`CREATE TABLE IF NOT EXISTS balance_entries (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			work_date TEXT NOT NULL,
			amount TEXT NOT NULL,
			balance_after TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (worker_id) REFERENCES workers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_entries_worker_date ON balance_entries(worker_id, work_date)`,

		`CREATE TABLE IF NOT EXISTS import_batches (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			file_name TEXT,
			file_hash TEXT,
			date1904 INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_batches_hash ON import_batches(file_hash)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
