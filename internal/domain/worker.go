package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Worker is the directory view of an employee as seen by the attendance core.
// Only DailyWage is read and only Balance is written (through increments).
type Worker struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	FingerprintID string          `json:"fingerprint_id,omitempty"`
	DailyWage     decimal.Decimal `json:"daily_wage"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BalanceEntry is one increment applied to a worker's running balance.
type BalanceEntry struct {
	ID           string          `json:"id"`
	WorkerID     string          `json:"worker_id"`
	WorkDate     string          `json:"work_date"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
