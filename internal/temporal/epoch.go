package temporal

import (
	"fmt"
	"math"
	"time"

	"github.com/wakala/attendance/internal/domain"
)

// EpochMode selects the spreadsheet serial-date system of a workbook.
type EpochMode int

const (
	// Epoch1900 counts 1900-01-01 as serial 1 and keeps the phantom
	// 1900-02-29 (serial 60) inherited from Lotus 1-2-3.
	Epoch1900 EpochMode = iota
	// Epoch1904 counts 1904-01-01 as serial 0.
	Epoch1904
)

// EpochFromFlag maps a workbook's date1904 property to an EpochMode.
func EpochFromFlag(date1904 bool) EpochMode {
	if date1904 {
		return Epoch1904
	}
	return Epoch1900
}

func (m EpochMode) String() string {
	if m == Epoch1904 {
		return "1904"
	}
	return "1900"
}

const (
	phantomLeapDay = 60
	// 9999-12-31 in the 1900 system.
	maxSerial1900 = 2958465
	epochShift    = 1462
)

var (
	base1900Early = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	base1900      = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	base1904      = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// serialDate decodes the integer part of a serial into a calendar date in loc.
func serialDate(serial float64, epoch EpochMode, loc *time.Location) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("%w: serial %v", domain.ErrMalformedTemporalValue, serial)
	}
	days := int(math.Floor(serial))

	var d time.Time
	switch epoch {
	case Epoch1904:
		if days < 0 || days > maxSerial1900-epochShift {
			return time.Time{}, fmt.Errorf("%w: serial %v out of range", domain.ErrMalformedTemporalValue, serial)
		}
		d = base1904.AddDate(0, 0, days)
	default:
		if days < 1 || days > maxSerial1900 {
			return time.Time{}, fmt.Errorf("%w: serial %v out of range", domain.ErrMalformedTemporalValue, serial)
		}
		if days == phantomLeapDay {
			return time.Time{}, fmt.Errorf("%w: serial 60 is the nonexistent 1900-02-29", domain.ErrMalformedTemporalValue)
		}
		if days < phantomLeapDay {
			d = base1900Early.AddDate(0, 0, days)
		} else {
			d = base1900.AddDate(0, 0, days)
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

// ToSerial encodes the calendar date of t as a whole serial number.
func ToSerial(t time.Time, epoch EpochMode) float64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if epoch == Epoch1904 {
		return math.Round(d.Sub(base1904).Hours() / 24)
	}
	if d.Before(time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		return math.Round(d.Sub(base1900Early).Hours() / 24)
	}
	return math.Round(d.Sub(base1900).Hours() / 24)
}
