/*
balance.go - Balance math over ledger entries and request records

The ledger stores signed deltas; balances are sums, never stored state.
A balance can legitimately be negative: approving rate-covered days ahead
of the month's accrual posting overdraws the account until the grant
lands. The evaluator receives that signed figure as-is.
*/
package ledger

import (
	"github.com/warp/leave-engine/leave"
)

// Balance sums every entry's delta.
func Balance(entries []Entry) leave.Days {
	total := leave.ZeroDays()
	for _, e := range entries {
		total = total.Add(e.Delta)
	}
	return total
}

// BalanceAsOf sums deltas effective on or before the given date.
func BalanceAsOf(entries []Entry, asOf leave.Date) leave.Days {
	total := leave.ZeroDays()
	for _, e := range entries {
		if e.EffectiveAt.After(asOf) {
			continue
		}
		total = total.Add(e.Delta)
	}
	return total
}

// CompOffAvailable is the compensatory counter for evaluation input,
// floored at zero: the counter is earned and spent in whole credits and
// the evaluator's contract wants a non-negative figure.
func CompOffAvailable(entries []Entry) leave.Days {
	return Balance(entries).Max(leave.ZeroDays())
}

// MonthNonLopTaken sums the paid portion (days minus loss of pay) of
// approved ordinary leave starting in the reference date's calendar
// month. This figure consumes the monthly rate cap for subsequent
// requests in the same month.
func MonthNonLopTaken(records []RequestRecord, month leave.Date) leave.Days {
	taken := leave.ZeroDays()
	for _, r := range records {
		if r.Status != leave.StatusApproved {
			continue
		}
		if !r.Type.Ordinary() {
			continue
		}
		if !r.StartDate.SameMonth(month) {
			continue
		}
		taken = taken.Add(r.DaysCount.Sub(r.LossOfPay))
	}
	return taken
}
