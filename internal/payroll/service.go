package payroll

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wakala/attendance/internal/domain"
)

// AccrualMode decides how re-ingested shifts are credited.
type AccrualMode string

const (
	// AccrualUnconditional credits the full accrual for every processed row,
	// even when the same worker and date were credited before.
	AccrualUnconditional AccrualMode = "unconditional"
	// AccrualDelta credits only the difference between the new accrual and
	// what has already been credited for the same worker and date.
	AccrualDelta AccrualMode = "delta"
)

// ParseAccrualMode accepts "unconditional" or "delta"; empty means
// unconditional.
func ParseAccrualMode(s string) (AccrualMode, error) {
	switch AccrualMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AccrualUnconditional:
		return AccrualUnconditional, nil
	case AccrualDelta:
		return AccrualDelta, nil
	}
	return "", fmt.Errorf("unknown accrual mode %q", s)
}

// BalanceAccount is the per-worker running balance.
type BalanceAccount interface {
	Increment(ctx context.Context, workerID, workDate string, amount decimal.Decimal) (*domain.BalanceEntry, error)
	CreditedFor(ctx context.Context, workerID, workDate string) (decimal.Decimal, error)
}

// Service credits shift accruals to worker balances.
type Service struct {
	balances BalanceAccount
	mode     AccrualMode
	loc      *time.Location
}

// NewService creates a new accrual crediting service.
func NewService(balances BalanceAccount, mode AccrualMode, loc *time.Location) *Service {
	if mode == "" {
		mode = AccrualUnconditional
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{balances: balances, mode: mode, loc: loc}
}

// Mode returns the configured accrual mode.
func (s *Service) Mode() AccrualMode { return s.mode }

// Credit computes the accrual for rec and applies it to the worker's balance.
// Records without a check-out, and workers without a positive wage, are not
// credited. The returned amount is what was actually added.
func (s *Service) Credit(ctx context.Context, w *domain.Worker, rec *domain.AttendanceRecord) (decimal.Decimal, error) {
	if rec.CheckOut == nil || !w.DailyWage.IsPositive() {
		return decimal.Zero, nil
	}

	accrual := ComputeAccrual(rec.CheckIn, *rec.CheckOut, w.DailyWage)
	amount := accrual.Amount
	workDate := rec.DateKey(s.loc)

	if s.mode == AccrualDelta {
		prior, err := s.balances.CreditedFor(ctx, w.ID, workDate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("load prior accrual: %w", err)
		}
		amount = amount.Sub(prior)
		if amount.IsZero() {
			return decimal.Zero, nil
		}
	}

	entry, err := s.balances.Increment(ctx, w.ID, workDate, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("increment balance: %w", err)
	}

	log.Printf("[payroll] Credited %s to %s for %s (hours=%s, overtime=%s, balance=%s)",
		amount, w.ID, workDate, accrual.HoursWorked.StringFixed(2),
		accrual.OvertimeHours.StringFixed(2), entry.BalanceAfter)

	return amount, nil
}
