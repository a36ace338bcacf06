/*
calendar.go - Calendar days and fixed-zone day arithmetic

PURPOSE:
  The solver reasons about local calendar days, never raw instants. This file
  provides the Date value type (a year/month/day triple) and the Calendar,
  which pins the planning time zone and converts between epoch seconds and
  local days.

KEY CONCEPTS:
  - Date: a calendar day with total ordering and day arithmetic
  - Calendar: fixed *time.Location; DayBounds, EpochToDate
  - MondayOnOrBefore: week normalization (Monday is the week start)

DESIGN:
  The time zone is a configuration value carried by the Calendar, not process
  state. Day bounds are half-open: [start of day, start of next day).

SEE ALSO:
  - driver.go: iterates days with these utilities
  - planstore.go: uses Date as the ledger key
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day value type
// =============================================================================

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO-8601 date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &InputError{Field: "date", Reason: fmt.Sprintf("not an ISO date: %q", s)}
	}
	return DateOf(t), nil
}

// MustDate is for tests and literals; panics on malformed input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ordinal gives a total order and exact day arithmetic via the proleptic
// Gregorian calendar. Normalization through time.Date keeps it correct for
// out-of-range inputs too.
func (d Date) ordinal() int {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / 86400)
}

func (d Date) Before(other Date) bool { return d.ordinal() < other.ordinal() }
func (d Date) After(other Date) bool  { return d.ordinal() > other.ordinal() }
func (d Date) Equal(other Date) bool  { return d.ordinal() == other.ordinal() }

func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return DateOf(t)
}

// DaysBetween returns to - from in whole days (negative if to precedes from).
func DaysBetween(from, to Date) int {
	return to.ordinal() - from.ordinal()
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// MarshalText / UnmarshalText let Date serve directly as a JSON string
// and as a JSON map key (portable PlanStore form, PTO maps).
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CALENDAR - Fixed planning time zone
// =============================================================================

type Calendar struct {
	Loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Loc: loc}
}

// FixedOffsetCalendar builds a calendar from a whole-hour UTC offset, the
// shape the wire protocol uses.
func FixedOffsetCalendar(offsetHours int) Calendar {
	if offsetHours == 0 {
		return Calendar{Loc: time.UTC}
	}
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return Calendar{Loc: time.FixedZone(name, offsetHours*3600)}
}

// DayBounds returns the local-midnight epoch seconds bounding d,
// exclusive on the right.
func (c Calendar) DayBounds(d Date) (startTS, endTS int64) {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.Loc)
	end := start.AddDate(0, 0, 1)
	return start.Unix(), end.Unix()
}

// DayStart returns the local-midnight instant of d.
func (c Calendar) DayStart(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.Loc)
}

// EpochToDate returns the local calendar day containing ts.
func (c Calendar) EpochToDate(ts int64) Date {
	return DateOf(time.Unix(ts, 0).In(c.Loc))
}

// =============================================================================
// DAY SEQUENCES
// =============================================================================

// IterDays returns the inclusive day range [start, end]. Empty if end
// precedes start.
func IterDays(start, end Date) []Date {
	n := DaysBetween(start, end)
	if n < 0 {
		return nil
	}
	days := make([]Date, 0, n+1)
	for i := 0; i <= n; i++ {
		days = append(days, start.AddDays(i))
	}
	return days
}

// MondayOnOrBefore returns the Monday starting the week containing d.
func MondayOnOrBefore(d Date) Date {
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// MonthSpan returns the first and last day of a calendar month.
func MonthSpan(year int, month time.Month) (first, last Date) {
	first = NewDate(year, month, 1)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	last = DateOf(next.AddDate(0, 0, -1))
	return first, last
}
