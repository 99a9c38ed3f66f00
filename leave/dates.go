/*
dates.go - Calendar dates and date windows

PURPOSE:
  Leave requests are expressed in whole calendar dates with no time-of-day
  component. Date pins every value to UTC midnight so that comparisons and
  day counting never wobble across zones; any regional-calendar
  normalization happens before a Date is constructed.

KEY CONCEPTS:
  - Date: a single calendar day (UTC midnight internally)
  - Window: an inclusive [Start, End] date range
  - DaysBetween: signed whole-day distance, exclusive of the end

SEE ALSO:
  - window.go: request day counting built on these types
  - overlap.go: interval intersection on Window
*/
package leave

import (
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day. Construct with NewDate, DateOf, or ParseDate;
// comparisons normalize, so a Date built from a timestamp with a
// time-of-day component still compares by calendar day.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), t.UTC().Month(), t.UTC().Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar day. The evaluator itself never calls
// this; it exists for the scheduling and API layers.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) normalized() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool { return d.normalized().Before(o.normalized()) }
func (d Date) After(o Date) bool  { return d.normalized().After(o.normalized()) }
func (d Date) Equal(o Date) bool  { return d.normalized().Equal(o.normalized()) }
func (d Date) IsZero() bool       { return d.Time.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{Time: d.normalized().AddDate(0, 0, n)}
}

func (d Date) AddMonths(n int) Date {
	return Date{Time: d.normalized().AddDate(0, n, 0)}
}

func (d Date) Year() int        { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int         { return d.Time.Day() }

// MonthDay returns the (month, day) pair, the identity used for birthday
// matching across years.
func (d Date) MonthDay() (time.Month, int) {
	return d.Time.Month(), d.Time.Day()
}

// SameMonth reports whether two dates fall in the same calendar month of
// the same year.
func (d Date) SameMonth(o Date) bool {
	return d.Time.Year() == o.Time.Year() && d.Time.Month() == o.Time.Month()
}

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Time.Year(), d.Time.Month(), 1)
}

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date {
	return d.StartOfMonth().AddMonths(1).AddDays(-1)
}

func (d Date) String() string {
	return d.normalized().Format(DateLayout)
}

// DaysBetween returns the signed number of whole days from one date to
// another, exclusive of the end: DaysBetween(Mon, Tue) == 1.
func DaysBetween(from, to Date) int {
	return int(to.normalized().Sub(from.normalized()).Hours() / 24)
}

// =============================================================================
// WINDOW - Inclusive date range
// =============================================================================

type Window struct {
	Start Date
	End   Date
}

func (w Window) Valid() bool {
	return !w.End.Before(w.Start)
}

// Intersects reports whether two inclusive windows share at least one day.
func (w Window) Intersects(o Window) bool {
	return !w.Start.After(o.End) && !o.Start.After(w.End)
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}
