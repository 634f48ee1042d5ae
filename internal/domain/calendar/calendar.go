// Package calendar holds the date arithmetic shared by the tournament and
// match normalizers.
package calendar

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01,
// counting 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

// DateLayout is the ISO calendar date used in query strings and snapshot keys.
const DateLayout = "2006-01-02"

// Fields are the calendar buckets derived from a date.
type Fields struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Week    int `json:"week"`
	Weekday int `json:"weekday"`
}

// Derive returns year, month, ISO week and a Monday=0 weekday.
func Derive(t time.Time) Fields {
	_, week := t.ISOWeek()
	return Fields{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Week:    week,
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}

// Day truncates t to midnight UTC of its wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Ordinal is the day count since 0001-01-01 (day 1) of t's wall-clock date.
func Ordinal(t time.Time) int64 {
	return Day(t).Unix()/86400 + unixEpochOrdinal
}

// DaysInclusive lists every calendar date in [start, end]. An inverted range
// yields nothing.
func DaysInclusive(start, end time.Time) []time.Time {
	from, to := Day(start), Day(end)
	if to.Before(from) {
		return nil
	}
	out := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

var providerLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// Parse accepts the timestamp shapes the provider emits. Values without a
// zone are read as UTC.
func Parse(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, crerr.New("empty timestamp")
	}
	for _, layout := range providerLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, crerr.Newf("unrecognized timestamp %q", value)
}
