package temporal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wakala/attendance/internal/domain"
)

var (
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dmyPattern     = regexp.MustCompile(`^(\d{1,2})([/.\-])(\d{1,2})([/.\-])(\d{4})$`)

	fallbackDateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02",
		"02 Jan 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"Mon, 02 Jan 2006",
	}
)

// NormalizeDate converts a raw cell value into a calendar date (midnight in
// loc). Encodings are tried in order: native time, numeric serial,
// YYYY-MM-DD, day-first D/M/YYYY (also with - or . separators), then a set
// of generic layouts.
func NormalizeDate(raw any, epoch EpochMode, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", domain.ErrMalformedTemporalValue)
		}
		return truncateToDate(v, loc), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: empty date", domain.ErrMalformedTemporalValue)
		}
		return NormalizeDate(*v, epoch, loc)
	case string:
		return parseDateString(v, loc)
	}

	if f, ok := asFloat(raw); ok {
		return serialDate(f, epoch, loc)
	}
	return time.Time{}, fmt.Errorf("%w: unsupported date value %T", domain.ErrMalformedTemporalValue, raw)
}

func parseDateString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", domain.ErrMalformedTemporalValue)
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), loc, s)
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		return buildDate(atoi(m[5]), atoi(m[3]), atoi(m[1]), loc, s)
	}

	for _, layout := range fallbackDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return truncateToDate(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", domain.ErrMalformedTemporalValue, s)
}

// buildDate rejects dates that time.Date would silently normalise, such as
// 31/02/2024.
func buildDate(year, month, day int, loc *time.Location, src string) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrMalformedTemporalValue, src)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrMalformedTemporalValue, src)
	}
	return t, nil
}

func truncateToDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
