package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/temporal"
)

var validate = validator.New()

// TerminalRecord is one punch record pushed by a biometric terminal. Date and
// times accept the same encodings as spreadsheet cells.
type TerminalRecord struct {
	Fingerprint string `json:"fingerprint" validate:"required"`
	Date        any    `json:"date" validate:"required"`
	CheckIn     any    `json:"checkIn" validate:"required"`
	CheckOut    any    `json:"checkOut,omitempty"`
}

// TerminalSummary counts what a terminal sync did. It is logged, never
// returned to the terminal.
type TerminalSummary struct {
	Received       int `json:"received"`
	Upserted       int `json:"upserted"`
	SkippedUnknown int `json:"skipped_unknown"`
	SkippedInvalid int `json:"skipped_invalid"`
}

// SyncTerminal upserts terminal records without touching balances. Records
// for unknown fingerprints or with unusable date/time values are skipped. A
// store failure aborts the sync and is returned.
func (s *Service) SyncTerminal(ctx context.Context, records []TerminalRecord) (*TerminalSummary, error) {
	p := pipeline{
		source:     domain.SourceTerminal,
		epoch:      temporal.Epoch1900,
		resolve:    s.directory.ResolveFingerprint,
		unresolved: UnresolvedSkip,
		credit:     false,
	}

	sum := &TerminalSummary{Received: len(records)}
	for i, tr := range records {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := validate.Struct(tr); err != nil {
			log.Printf("[terminal] skipping record %d: %v", i, err)
			sum.SkippedInvalid++
			continue
		}

		row := RawRow{Line: i + 1, Identifier: tr.Fingerprint, Date: tr.Date, CheckIn: tr.CheckIn, CheckOut: tr.CheckOut}
		err := s.processRow(ctx, p, row)
		switch {
		case err == nil:
			sum.Upserted++
		case p.skips(err):
			log.Printf("[terminal] skipping unknown fingerprint %q", tr.Fingerprint)
			sum.SkippedUnknown++
		case errors.Is(err, domain.ErrUnexpectedRow):
			return sum, fmt.Errorf("terminal record %d: %w", i, err)
		default:
			log.Printf("[terminal] skipping record %d: %v", i, err)
			sum.SkippedInvalid++
		}
	}

	s.audit(ctx, &domain.ImportBatch{
		Source:    domain.ImportTerminal,
		Processed: sum.Upserted,
		Failed:    sum.SkippedUnknown + sum.SkippedInvalid,
	})

	log.Printf("[terminal] Synced %d records: %d upserted, %d unknown, %d invalid",
		sum.Received, sum.Upserted, sum.SkippedUnknown, sum.SkippedInvalid)
	return sum, nil
}
