package normalizer

import (
	"fmt"
	"strconv"
	"time"
)

// DatePattern names a date layout used by a statement format.
type DatePattern string

const (
	DatePatternISO          DatePattern = "YYYY-MM-DD"
	DatePatternDayMonth     DatePattern = "DD Mon"
	DatePatternDayMonthYear DatePattern = "DD Mon YYYY"
	DatePatternDMYSlash     DatePattern = "DD/MM/YYYY"
)

// ReasonUnparseableDate is the diagnostic reason for a date that fits no layout.
const ReasonUnparseableDate = "unparseable-date"

// lookbackYears bounds the search for a year-less date (covers 29 Feb).
const lookbackYears = 8

var patternLayouts = map[DatePattern][]string{
	DatePatternISO:          {"2006-01-02"},
	DatePatternDayMonth:     {"2 Jan", "2 January"},
	DatePatternDayMonthYear: {"2 Jan 2006", "2 January 2006"},
	DatePatternDMYSlash:     {"2/1/2006"},
}

// DateError is returned when raw text cannot be read as a date.
type DateError struct {
	Reason string
	Raw    string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Raw)
}

func (e *DateError) Unwrap() error { return ErrUnparseableDate }

// Valid reports whether p is a supported pattern.
func (p DatePattern) Valid() bool {
	_, ok := patternLayouts[p]
	return ok
}

// yearless reports whether the pattern omits the year.
func (p DatePattern) yearless() bool {
	return p == DatePatternDayMonth
}

// NormalizeDate parses raw using pattern and returns midnight UTC of that day.
//
// Year-less dates take the year of now, or the previous year when the result
// would fall after now, so a December statement read in January lands in the
// right year.
func NormalizeDate(raw string, pattern DatePattern, now time.Time) (time.Time, error) {
	cleaned := CleanDescription(raw)
	layouts, ok := patternLayouts[pattern]
	if cleaned == "" || !ok {
		return time.Time{}, &DateError{Reason: ReasonUnparseableDate, Raw: raw}
	}

	if !pattern.yearless() {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, cleaned); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &DateError{Reason: ReasonUnparseableDate, Raw: raw}
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for year := today.Year(); year >= today.Year()-lookbackYears; year-- {
		withYear := cleaned + " " + strconv.Itoa(year)
		for _, layout := range layouts {
			t, err := time.Parse(layout+" 2006", withYear)
			if err != nil {
				continue
			}
			if !t.After(today) {
				return t, nil
			}
		}
	}
	return time.Time{}, &DateError{Reason: ReasonUnparseableDate, Raw: raw}
}

// NormalizeDateAny tries each pattern in order and returns the first match.
func NormalizeDateAny(raw string, patterns []DatePattern, now time.Time) (time.Time, error) {
	for _, p := range patterns {
		if t, err := NormalizeDate(raw, p, now); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateError{Reason: ReasonUnparseableDate, Raw: raw}
}
