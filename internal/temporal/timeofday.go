package temporal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wakala/attendance/internal/domain"
)

// ValidationMode controls what happens to out-of-range clock components.
type ValidationMode string

const (
	// ValidationLenient clamps components into 0-23 / 0-59 / 0-59.
	ValidationLenient ValidationMode = "lenient"
	// ValidationStrict rejects out-of-range components.
	ValidationStrict ValidationMode = "strict"
)

// ParseValidationMode accepts "lenient" or "strict"; empty means lenient.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch ValidationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ValidationLenient:
		return ValidationLenient, nil
	case ValidationStrict:
		return ValidationStrict, nil
	}
	return "", fmt.Errorf("unknown time validation mode %q", s)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On places t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, date.Location())
}

var (
	clockPattern       = regexp.MustCompile(`^(\d+)(?::(\d+))?(?::(\d+)(?:\.\d+)?)?\s*([AaPp][Mm])?$`)
	dottedClockPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{2})(?:\.(\d{2}))?$`)

	datetimeLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

const secondsPerDay = 86400

// NormalizeTimeOfDay converts a raw cell value into a TimeOfDay. Accepted
// encodings are a numeric fraction of a day (the integer part of a full
// date-time serial is ignored), an "H:M[:S]" or "H.MM" string with optional
// AM/PM, and a native or string timestamp. Timestamps are read as wall
// clock time in loc, the same zone NormalizeDate uses for the calendar day.
func NormalizeTimeOfDay(raw any, mode ValidationMode, loc *time.Location) (TimeOfDay, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch v := raw.(type) {
	case nil:
		return TimeOfDay{}, fmt.Errorf("%w: empty time", domain.ErrMalformedTemporalValue)
	case time.Time:
		return wallClock(v, loc), nil
	case *time.Time:
		if v == nil {
			return TimeOfDay{}, fmt.Errorf("%w: empty time", domain.ErrMalformedTemporalValue)
		}
		return NormalizeTimeOfDay(*v, mode, loc)
	case string:
		return parseClockString(v, mode, loc)
	}

	f, ok := asFloat(raw)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: unsupported time value %T", domain.ErrMalformedTemporalValue, raw)
	}
	return fractionOfDay(f)
}

func fractionOfDay(f float64) (TimeOfDay, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return TimeOfDay{}, fmt.Errorf("%w: time fraction %v", domain.ErrMalformedTemporalValue, f)
	}
	frac := f - math.Floor(f)
	// The epsilon absorbs binary representation error (8:00 is stored as
	// 0.33333333333333331) without ever carrying into the next day.
	secs := int(math.Floor(frac*secondsPerDay + 1e-6))
	if secs >= secondsPerDay {
		secs = secondsPerDay - 1
	}
	return TimeOfDay{Hour: secs / 3600, Minute: secs % 3600 / 60, Second: secs % 60}, nil
}

func wallClock(t time.Time, loc *time.Location) TimeOfDay {
	t = t.In(loc)
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func parseClockString(s string, mode ValidationMode, loc *time.Location) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, fmt.Errorf("%w: empty time", domain.ErrMalformedTemporalValue)
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		h, mi, sec := component(m[1]), component(m[2]), component(m[3])

		switch strings.ToLower(m[4]) {
		case "pm":
			if h < 12 {
				h += 12
			}
		case "am":
			if h == 12 {
				h = 0
			}
		}
		return clamp(TimeOfDay{Hour: h, Minute: mi, Second: sec}, mode, s)
	}

	// "17.30" as typed next to dotted D.M.YYYY dates.
	if m := dottedClockPattern.FindStringSubmatch(s); m != nil {
		return clamp(TimeOfDay{Hour: component(m[1]), Minute: component(m[2]), Second: component(m[3])}, mode, s)
	}

	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return wallClock(t, loc), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: unrecognised time %q", domain.ErrMalformedTemporalValue, s)
}

// component parses one clock field; an absent field is zero.
func component(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Digit runs that overflow int are simply out of range.
		return math.MaxInt32
	}
	return n
}

func clamp(t TimeOfDay, mode ValidationMode, src string) (TimeOfDay, error) {
	inRange := t.Hour <= 23 && t.Minute <= 59 && t.Second <= 59
	if inRange {
		return t, nil
	}
	if mode == ValidationStrict {
		return TimeOfDay{}, fmt.Errorf("%w: time %q out of range", domain.ErrMalformedTemporalValue, src)
	}
	return TimeOfDay{
		Hour:   min(t.Hour, 23),
		Minute: min(t.Minute, 59),
		Second: min(t.Second, 59),
	}, nil
}

// Combine anchors check-in and optional check-out to date. A check-out that
// lands strictly before check-in is moved to the following day.
func Combine(date time.Time, in TimeOfDay, out *TimeOfDay) (time.Time, *time.Time) {
	checkIn := in.On(date)
	if out == nil {
		return checkIn, nil
	}
	checkOut := out.On(date)
	if checkOut.Before(checkIn) {
		checkOut = checkOut.AddDate(0, 0, 1)
	}
	return checkIn, &checkOut
}
