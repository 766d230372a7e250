package dairy

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar day
// =============================================================================

// Date is a calendar day with no time-of-day component. All Dates are
// normalized to UTC midnight internally so values are directly comparable
// and usable as map keys; "which day" is decided by the caller's clock.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Today returns the current calendar day in local time. The whole
// application uses this one definition of "today"; reports and the daily
// dashboard must never disagree about which day it is.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }

// Arithmetic crosses month and year boundaries via time.AddDate.
func (d Date) AddDays(n int) Date { t := d.t.AddDate(0, 0, n); return NewDate(t.Year(), t.Month(), t.Day()) }
func (d Date) Next() Date         { return d.AddDays(1) }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format(dateLayout) }

// DaysInclusive counts the days in [d, end], matching how a bill's "N days"
// figure is shown. Returns 0 for an inverted range.
func (d Date) DaysInclusive(end Date) int {
	if d.After(end) {
		return 0
	}
	return int(end.t.Sub(d.t).Hours()/24) + 1
}

// EndOfMonth returns the last day of the given month.
func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return NewDate(t.Year(), t.Month(), t.Day())
}

// =============================================================================
// JSON - Dates travel as plain YYYY-MM-DD strings
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
