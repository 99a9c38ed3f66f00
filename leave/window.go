/*
window.go - Request day counting

A half-day request is 0.5 days, full stop; the half-day marker wins before
any range arithmetic. Everything else is the inclusive whole-day count of
[StartDate, EndDate].
*/
package leave

// DaysRequested computes the request's day count. An end date before the
// start date on a non-half-day request is the one malformed input this
// package refuses with a hard error.
func (r Request) DaysRequested() (Days, error) {
	if r.HalfDay {
		return NewDays(0.5), nil
	}
	if r.EndDate.Before(r.StartDate) {
		return Days{}, &InvalidRangeError{Start: r.StartDate, End: r.EndDate}
	}
	return DaysFromInt(DaysBetween(r.StartDate, r.EndDate) + 1), nil
}
