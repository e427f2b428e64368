package ingestion

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/payroll"
	"github.com/wakala/attendance/internal/temporal"
)

// Directory resolves input identifiers to workers.
type Directory interface {
	Resolve(ctx context.Context, identifier string) (*domain.Worker, error)
	ResolveFingerprint(ctx context.Context, fingerprint string) (*domain.Worker, error)
}

// Ledger is the keyed attendance store.
type Ledger interface {
	Upsert(ctx context.Context, rec *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
}

// ImportLog keeps one audit row per ingestion call.
type ImportLog interface {
	Insert(ctx context.Context, b *domain.ImportBatch) error
	CountByHash(ctx context.Context, hash string) (int, error)
}

// UnresolvedPolicy decides what happens to a row whose identifier matches no
// worker.
type UnresolvedPolicy int

const (
	// UnresolvedReport records the row as failed in the batch report.
	UnresolvedReport UnresolvedPolicy = iota
	// UnresolvedSkip drops the row and only logs it.
	UnresolvedSkip
)

// Options tunes row normalization. Unresolved applies to uploads; terminal
// syncs always skip unknown fingerprints.
type Options struct {
	Validation temporal.ValidationMode
	Location   *time.Location
	Unresolved UnresolvedPolicy
}

// Service runs attendance batches through extract, validate, transform and
// load, one row at a time.
type Service struct {
	directory  Directory
	ledger     Ledger
	payroll    *payroll.Service
	imports    ImportLog
	validation temporal.ValidationMode
	loc        *time.Location
	unresolved UnresolvedPolicy
}

// NewService creates a new ingestion service.
func NewService(directory Directory, ledger Ledger, pay *payroll.Service, imports ImportLog, opts Options) *Service {
	if opts.Validation == "" {
		opts.Validation = temporal.ValidationLenient
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		directory:  directory,
		ledger:     ledger,
		payroll:    pay,
		imports:    imports,
		validation: opts.Validation,
		loc:        opts.Location,
		unresolved: opts.Unresolved,
	}
}

// pipeline describes how one kind of batch treats its rows.
type pipeline struct {
	source     domain.RecordSource
	epoch      temporal.EpochMode
	resolve    func(ctx context.Context, id string) (*domain.Worker, error)
	unresolved UnresolvedPolicy
	credit     bool
}

// skips reports whether err is an unknown identifier the pipeline drops
// instead of reporting.
func (p pipeline) skips(err error) bool {
	return p.unresolved == UnresolvedSkip && errors.Is(err, domain.ErrWorkerNotFound)
}

// IngestUpload decodes a spreadsheet upload and ingests every row. date1904
// overrides the workbook's own epoch flag when non-nil. Only an unreadable
// or empty upload, a missing required column, or a cancelled context fail
// the call; everything else is reported per row.
func (s *Service) IngestUpload(ctx context.Context, data []byte, filename string, date1904 *bool) (*domain.IngestionReport, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(data))

	upload, err := ReadUpload(data, filename)
	if err != nil {
		return nil, err
	}
	if date1904 != nil {
		upload.Date1904 = *date1904
	}

	if n, err := s.imports.CountByHash(ctx, hash); err != nil {
		log.Printf("[ingestion] WARNING: hash lookup failed: %v", err)
	} else if n > 0 {
		log.Printf("[ingestion] WARNING: %s was ingested %d time(s) before (mode=%s)",
			filename, n, s.payroll.Mode())
	}

	report, err := s.IngestRows(ctx, upload.Rows, temporal.EpochFromFlag(upload.Date1904))
	if err != nil {
		return nil, err
	}

	s.audit(ctx, &domain.ImportBatch{
		Source:    upload.Source,
		FileName:  filename,
		FileHash:  hash,
		Date1904:  upload.Date1904,
		Processed: report.ProcessedCount,
		Failed:    report.FailedCount,
	})

	log.Printf("[ingestion] Ingested %s: %d processed, %d failed (epoch %s)",
		filename, report.ProcessedCount, report.FailedCount, temporal.EpochFromFlag(upload.Date1904))

	return report, nil
}

// IngestRows processes already extracted rows in order. Each row either
// counts as processed or adds one entry to the report's errors, except rows
// for unknown workers when the service skips them.
func (s *Service) IngestRows(ctx context.Context, rows []RawRow, epoch temporal.EpochMode) (*domain.IngestionReport, error) {
	p := pipeline{
		source:     domain.SourceUpload,
		epoch:      epoch,
		resolve:    s.directory.Resolve,
		unresolved: s.unresolved,
		credit:     true,
	}

	report := &domain.IngestionReport{Errors: []domain.RowFailure{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := s.processRow(ctx, p, row)
		if err == nil {
			report.ProcessedCount++
			continue
		}
		if p.skips(err) {
			log.Printf("[ingestion] skipping row %d: unknown worker %q", row.Line, row.Identifier)
			continue
		}

		var rowErr *domain.RowError
		if !errors.As(err, &rowErr) {
			rowErr = &domain.RowError{Row: row.Line, WorkerID: row.Identifier, Kind: domain.ErrUnexpectedRow, Err: err}
		}
		log.Printf("[ingestion] %v", rowErr)
		report.FailedCount++
		report.Errors = append(report.Errors, rowErr.Failure())
	}
	return report, nil
}

// processRow takes one row through all stages. Every failure comes back as
// a *domain.RowError; a panic is recovered into ErrUnexpectedRow.
func (s *Service) processRow(ctx context.Context, p pipeline, row RawRow) (err error) {
	id := strings.TrimSpace(row.Identifier)
	fail := func(kind, cause error) error {
		return &domain.RowError{Row: row.Line, WorkerID: id, Kind: kind, Err: cause}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail(domain.ErrUnexpectedRow, fmt.Errorf("panic: %v", r))
		}
	}()

	// Validate.
	if id == "" || isBlank(row.Date) || isBlank(row.CheckIn) {
		return fail(domain.ErrIncompleteRow, nil)
	}

	worker, err := p.resolve(ctx, id)
	if errors.Is(err, domain.ErrWorkerNotFound) {
		return fail(domain.ErrWorkerNotFound, nil)
	}
	if err != nil {
		return fail(domain.ErrUnexpectedRow, err)
	}

	// Transform.
	rec, err := s.normalize(p, row)
	if err != nil {
		return fail(domain.ErrMalformedTemporalValue, err)
	}
	rec.WorkerID = worker.ID

	// Load.
	saved, err := s.ledger.Upsert(ctx, rec)
	if err != nil {
		return fail(domain.ErrUnexpectedRow, err)
	}
	if !p.credit {
		return nil
	}
	if _, err := s.payroll.Credit(ctx, worker, saved); err != nil {
		return fail(domain.ErrUnexpectedRow, err)
	}
	return nil
}

func (s *Service) normalize(p pipeline, row RawRow) (*domain.AttendanceRecord, error) {
	date, err := temporal.NormalizeDate(row.Date, p.epoch, s.loc)
	if err != nil {
		return nil, err
	}
	in, err := temporal.NormalizeTimeOfDay(row.CheckIn, s.validation, s.loc)
	if err != nil {
		return nil, fmt.Errorf("check-in: %w", err)
	}

	var out *temporal.TimeOfDay
	if !isBlank(row.CheckOut) {
		o, err := temporal.NormalizeTimeOfDay(row.CheckOut, s.validation, s.loc)
		if err != nil {
			return nil, fmt.Errorf("check-out: %w", err)
		}
		out = &o
	}

	checkIn, checkOut := temporal.Combine(date, in, out)
	rec := &domain.AttendanceRecord{
		WorkDate: date,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Source:   p.source,
	}
	if checkOut != nil {
		ot := payroll.OvertimeHours(checkIn, *checkOut)
		rec.OvertimeHours = &ot
	}
	return rec, nil
}

// audit stores the batch row. A failure here never fails the ingestion.
func (s *Service) audit(ctx context.Context, b *domain.ImportBatch) {
	b.ID = uuid.NewString()
	b.IngestedAt = time.Now().UTC()
	if err := s.imports.Insert(ctx, b); err != nil {
		log.Printf("[ingestion] WARNING: could not record import batch: %v", err)
	}
}
