/*
accrual.go - Accrual schedules

PURPOSE:
  Turns a policy's rates into concrete grant events: monthly postings on
  the first of each month, and upfront annual grants on January 1st. The
  scheduler walks these events and appends the ones not yet posted, keyed
  idempotently, so re-running a window never double-grants.

SEE ALSO:
  - api/scheduler.go: the posting job driving these schedules
*/
package ledger

import (
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// AccrualEvent is one scheduled grant.
type AccrualEvent struct {
	At     leave.Date
	Amount leave.Days
	Reason string
}

// AccrualSchedule generates the grant events falling inside a date range.
type AccrualSchedule interface {
	GenerateAccruals(from, to leave.Date) []AccrualEvent
}

// =============================================================================
// MONTHLY ACCRUAL
// =============================================================================

// MonthlyAccrual grants a fixed number of days on the first of each month.
type MonthlyAccrual struct {
	Rate leave.Days
}

func (a MonthlyAccrual) GenerateAccruals(from, to leave.Date) []AccrualEvent {
	var events []AccrualEvent

	current := leave.NewDate(from.Year(), from.Month(), 1)
	for !current.After(to) {
		if !current.Before(from) {
			events = append(events, AccrualEvent{
				At:     current,
				Amount: a.Rate,
				Reason: "Monthly accrual",
			})
		}
		current = current.AddMonths(1)
	}
	return events
}

// =============================================================================
// YEARLY GRANT
// =============================================================================

// YearlyGrant posts a fixed number of days every January 1st.
type YearlyGrant struct {
	Days leave.Days
}

func (a YearlyGrant) GenerateAccruals(from, to leave.Date) []AccrualEvent {
	var events []AccrualEvent

	for year := from.Year(); ; year++ {
		at := leave.NewDate(year, time.January, 1)
		if at.After(to) {
			break
		}
		if !at.Before(from) {
			events = append(events, AccrualEvent{
				At:     at,
				Amount: a.Days,
				Reason: "Annual grant",
			})
		}
	}
	return events
}

// SchedulesFor maps a policy onto its accrual schedules. Special types and
// zero rates yield none.
func SchedulesFor(p policy.Policy) []AccrualSchedule {
	var schedules []AccrualSchedule
	if p.MonthlyRate > 0 {
		schedules = append(schedules, MonthlyAccrual{Rate: leave.NewDays(p.MonthlyRate)})
	}
	if p.AnnualDays > 0 {
		schedules = append(schedules, YearlyGrant{Days: leave.NewDays(p.AnnualDays)})
	}
	return schedules
}
