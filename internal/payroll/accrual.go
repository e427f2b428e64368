package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	fullShiftHours  = decimal.NewFromInt(8)
	minFullDayHours = decimal.RequireFromString("6.5")
	overtimeFactor  = decimal.RequireFromString("1.5")
	secondsPerHour  = decimal.NewFromInt(3600)
)

// Accrual is the pay earned for one shift.
type Accrual struct {
	HoursWorked   decimal.Decimal
	OvertimeHours decimal.Decimal
	Amount        decimal.Decimal
}

// HoursBetween returns the worked duration in hours; non-positive spans are
// zero.
func HoursBetween(checkIn, checkOut time.Time) decimal.Decimal {
	secs := int64(checkOut.Sub(checkIn) / time.Second)
	if secs <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(secs).Div(secondsPerHour)
}

// OvertimeHours is max(0, hours-8) on the unrounded duration.
func OvertimeHours(checkIn, checkOut time.Time) decimal.Decimal {
	return overtime(HoursBetween(checkIn, checkOut))
}

func overtime(hours decimal.Decimal) decimal.Decimal {
	if hours.LessThanOrEqual(fullShiftHours) {
		return decimal.Zero
	}
	return hours.Sub(fullShiftHours)
}

// ComputeAccrual applies the tiered day-rate policy:
//
//	hours >= 8        wage + (hours-8) * wage/8 * 1.5
//	6.5 <= hours < 8  wage
//	hours < 6.5       hours * wage/8
//
// The amount is rounded to a whole currency unit.
func ComputeAccrual(checkIn, checkOut time.Time, dailyWage decimal.Decimal) Accrual {
	hours := HoursBetween(checkIn, checkOut)
	hourly := dailyWage.Div(fullShiftHours)

	var amount decimal.Decimal
	switch {
	case hours.GreaterThanOrEqual(fullShiftHours):
		amount = dailyWage.Add(hours.Sub(fullShiftHours).Mul(hourly).Mul(overtimeFactor))
	case hours.GreaterThanOrEqual(minFullDayHours):
		amount = dailyWage
	default:
		amount = hours.Mul(hourly)
	}

	return Accrual{
		HoursWorked:   hours,
		OvertimeHours: overtime(hours),
		Amount:        amount.Round(0),
	}
}
