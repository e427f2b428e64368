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

// AttendanceRepo is the attendance ledger: one record per worker and
// calendar date, where the date is taken in the reporting timezone.
type AttendanceRepo struct {
	db  *sql.DB
	loc *time.Location
}

func NewAttendanceRepo(db *sql.DB, loc *time.Location) *AttendanceRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceRepo{db: db, loc: loc}
}

const attendanceColumns = "worker_id, work_date, check_in, check_out, overtime_hours, source, updated_at"

// FindByWorkerAndDate returns the record for the calendar day containing
// date, or nil when there is none.
func (r *AttendanceRepo) FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance_records WHERE worker_id = ? AND work_date = ?",
		workerID, domain.DateKey(date, r.loc),
	)
	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return rec, nil
}

// Upsert writes rec, replacing check-in, check-out and overtime of an
// existing record for the same key. It is a single statement, so concurrent
// writers to one key never mix fields from different rows.
func (r *AttendanceRepo) Upsert(ctx context.Context, rec *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	out := *rec
	out.UpdatedAt = time.Now().UTC()
	if out.Source == "" {
		out.Source = domain.SourceUpload
	}

	var overtime any
	if out.OvertimeHours != nil {
		overtime = out.OvertimeHours.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_records
		(worker_id, work_date, check_in, check_out, overtime_hours, source, updated_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(worker_id, work_date) DO UPDATE SET
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			overtime_hours = excluded.overtime_hours,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		out.WorkerID, out.DateKey(r.loc), out.CheckIn.Format(time.RFC3339),
		formatNullableTime(out.CheckOut), overtime, string(out.Source),
		out.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &out, nil
}

type AttendanceFilter struct {
	WorkerID string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (r *AttendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]domain.AttendanceRecord, int, error) {
	where, args := r.buildWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT " + attendanceColumns + " FROM attendance_records" + where +
		" ORDER BY work_date DESC, worker_id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var recs []domain.AttendanceRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, total, rows.Err()
}

// --- helpers ---

func (r *AttendanceRepo) buildWhere(f AttendanceFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.WorkerID != "" {
		clauses = append(clauses, "worker_id = ?")
		args = append(args, f.WorkerID)
	}
	if f.From != nil {
		clauses = append(clauses, "work_date >= ?")
		args = append(args, domain.DateKey(*f.From, r.loc))
	}
	if f.To != nil {
		clauses = append(clauses, "work_date <= ?")
		args = append(args, domain.DateKey(*f.To, r.loc))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *AttendanceRepo) scan(s scanner) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	var workDate, checkIn, source, updatedAt string
	var checkOut, overtime sql.NullString

	err := s.Scan(&rec.WorkerID, &workDate, &checkIn, &checkOut, &overtime, &source, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.WorkDate, _ = time.ParseInLocation(domain.DateLayout, workDate, r.loc)
	rec.CheckIn = r.parseTime(checkIn)
	rec.Source = domain.RecordSource(source)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if checkOut.Valid {
		t := r.parseTime(checkOut.String)
		rec.CheckOut = &t
	}
	if overtime.Valid {
		d, err := decimal.NewFromString(overtime.String)
		if err == nil {
			rec.OvertimeHours = &d
		}
	}
	return &rec, nil
}

func (r *AttendanceRepo) parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t.In(r.loc)
}
