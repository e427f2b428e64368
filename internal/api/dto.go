package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/wakala/attendance/internal/domain"
)

var validate = validator.New()

// CreateWorkerRequest maintains a directory entry.
type CreateWorkerRequest struct {
	ID            string          `json:"id" validate:"required,max=64"`
	Name          string          `json:"name" validate:"required,max=200"`
	FingerprintID string          `json:"fingerprint_id" validate:"omitempty,max=64"`
	DailyWage     decimal.Decimal `json:"daily_wage"`
}

func (r CreateWorkerRequest) toDomain() *domain.Worker {
	return &domain.Worker{
		ID:            r.ID,
		Name:          r.Name,
		FingerprintID: r.FingerprintID,
		DailyWage:     r.DailyWage,
	}
}

// BalanceResponse is the running balance with its most recent journal lines.
type BalanceResponse struct {
	WorkerID string                `json:"worker_id"`
	Balance  decimal.Decimal       `json:"balance"`
	Entries  []domain.BalanceEntry `json:"entries"`
}

// TerminalResponse is all a terminal gets back.
type TerminalResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
