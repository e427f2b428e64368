package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/attendance/internal/domain"
	"github.com/wakala/attendance/internal/payroll"
)

var checkIn = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// CALCULATOR
// =============================================================================

func TestComputeAccrual_Tiers(t *testing.T) {
	wage := dec("800")
	tests := []struct {
		name     string
		worked   time.Duration
		amount   string
		overtime string
	}{
		{"exactly eight hours", 8 * time.Hour, "800", "0"},
		{"one hour overtime", 9 * time.Hour, "950", "1"},
		{"ninety minutes overtime", 9*time.Hour + 30*time.Minute, "1025", "1.5"},
		{"seven hours is a full day", 7 * time.Hour, "800", "0"},
		{"six and a half hours is a full day", 6*time.Hour + 30*time.Minute, "800", "0"},
		{"five hours is pro rata", 5 * time.Hour, "500", "0"},
		{"just under the full-day threshold", 6*time.Hour + 29*time.Minute, "648", "0"},
		{"zero hours", 0, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := payroll.ComputeAccrual(checkIn, checkIn.Add(tt.worked), wage)
			assert.True(t, dec(tt.amount).Equal(a.Amount), "amount: want %s got %s", tt.amount, a.Amount)
			assert.True(t, dec(tt.overtime).Equal(a.OvertimeHours), "overtime: want %s got %s", tt.overtime, a.OvertimeHours)
		})
	}
}

func TestComputeAccrual_NegativeSpanIsZero(t *testing.T) {
	a := payroll.ComputeAccrual(checkIn, checkIn.Add(-2*time.Hour), dec("800"))
	assert.True(t, a.HoursWorked.IsZero())
	assert.True(t, a.Amount.IsZero())
}

func TestComputeAccrual_RoundsToWholeUnit(t *testing.T) {
	// 8h30m at 1000/day: 1000 + 0.5h * 125 * 1.5 = 1093.75
	a := payroll.ComputeAccrual(checkIn, checkIn.Add(8*time.Hour+30*time.Minute), dec("1000"))
	assert.Equal(t, "1094", a.Amount.String())

	// 5h10m at 800/day: 5.1666h * 100 = 516.67
	a = payroll.ComputeAccrual(checkIn, checkIn.Add(5*time.Hour+10*time.Minute), dec("800"))
	assert.Equal(t, "517", a.Amount.String())
}

func TestOvertimeHours_Unrounded(t *testing.T) {
	ot := payroll.OvertimeHours(checkIn, checkIn.Add(8*time.Hour+15*time.Minute))
	assert.Equal(t, "0.25", ot.String())
}

// =============================================================================
// CREDITING SERVICE
// =============================================================================

type fakeBalances struct {
	entries []domain.BalanceEntry
	failOn  error
}

func (f *fakeBalances) Increment(_ context.Context, workerID, workDate string, amount decimal.Decimal) (*domain.BalanceEntry, error) {
	if f.failOn != nil {
		return nil, f.failOn
	}
	total := amount
	for _, e := range f.entries {
		if e.WorkerID == workerID {
			total = total.Add(e.Amount)
		}
	}
	e := domain.BalanceEntry{WorkerID: workerID, WorkDate: workDate, Amount: amount, BalanceAfter: total}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeBalances) CreditedFor(_ context.Context, workerID, workDate string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range f.entries {
		if e.WorkerID == workerID && e.WorkDate == workDate {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func shift(hours time.Duration) *domain.AttendanceRecord {
	out := checkIn.Add(hours)
	return &domain.AttendanceRecord{
		WorkerID: "w1",
		WorkDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		CheckIn:  checkIn,
		CheckOut: &out,
	}
}

func TestService_Credit_Unconditional_CreditsEveryTime(t *testing.T) {
	balances := &fakeBalances{}
	svc := payroll.NewService(balances, payroll.AccrualUnconditional, time.UTC)
	w := &domain.Worker{ID: "w1", DailyWage: dec("800")}

	for i := 0; i < 2; i++ {
		amount, err := svc.Credit(context.Background(), w, shift(9*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "950", amount.String())
	}
	require.Len(t, balances.entries, 2)
	assert.Equal(t, "1900", balances.entries[1].BalanceAfter.String())
	assert.Equal(t, "2024-03-01", balances.entries[0].WorkDate)
}

func TestService_Credit_Delta_CreditsDifferenceOnly(t *testing.T) {
	balances := &fakeBalances{}
	svc := payroll.NewService(balances, payroll.AccrualDelta, time.UTC)
	w := &domain.Worker{ID: "w1", DailyWage: dec("800")}
	ctx := context.Background()

	amount, err := svc.Credit(ctx, w, shift(9*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "950", amount.String())

	amount, err = svc.Credit(ctx, w, shift(9*time.Hour))
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Len(t, balances.entries, 1)

	// A corrected, shorter shift produces a negative adjustment.
	amount, err = svc.Credit(ctx, w, shift(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "-450", amount.String())
	assert.Equal(t, "500", balances.entries[1].BalanceAfter.String())
}

func TestService_Credit_SkipsWithoutCheckoutOrWage(t *testing.T) {
	balances := &fakeBalances{}
	svc := payroll.NewService(balances, payroll.AccrualUnconditional, time.UTC)
	ctx := context.Background()

	open := shift(0)
	open.CheckOut = nil
	amount, err := svc.Credit(ctx, &domain.Worker{ID: "w1", DailyWage: dec("800")}, open)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	amount, err = svc.Credit(ctx, &domain.Worker{ID: "w1", DailyWage: decimal.Zero}, shift(9*time.Hour))
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	assert.Empty(t, balances.entries)
}

func TestService_Credit_PropagatesStoreError(t *testing.T) {
	boom := errors.New("disk full")
	svc := payroll.NewService(&fakeBalances{failOn: boom}, payroll.AccrualUnconditional, time.UTC)

	_, err := svc.Credit(context.Background(), &domain.Worker{ID: "w1", DailyWage: dec("800")}, shift(8*time.Hour))
	assert.ErrorIs(t, err, boom)
}

func TestParseAccrualMode(t *testing.T) {
	m, err := payroll.ParseAccrualMode("")
	require.NoError(t, err)
	assert.Equal(t, payroll.AccrualUnconditional, m)

	m, err = payroll.ParseAccrualMode("Delta")
	require.NoError(t, err)
	assert.Equal(t, payroll.AccrualDelta, m)

	_, err = payroll.ParseAccrualMode("sometimes")
	assert.Error(t, err)
}
