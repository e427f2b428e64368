package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and wire format of a calendar date.
const DateLayout = "2006-01-02"

type RecordSource string

const (
	SourceUpload   RecordSource = "upload"
	SourceTerminal RecordSource = "terminal"
)

// AttendanceRecord is one worker's clock activity for one calendar date.
// (WorkerID, WorkDate) is unique.
type AttendanceRecord struct {
	WorkerID      string           `json:"worker_id"`
	WorkDate      time.Time        `json:"work_date"`
	CheckIn       time.Time        `json:"check_in"`
	CheckOut      *time.Time       `json:"check_out,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	Source        RecordSource     `json:"source"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DateKey returns the calendar-day key of the record in loc.
func (r *AttendanceRecord) DateKey(loc *time.Location) string {
	return DateKey(r.WorkDate, loc)
}

// DateKey formats t as a calendar date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
