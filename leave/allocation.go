/*
allocation.go - The balance / monthly-rate / loss-of-pay split

PURPOSE:
  Splits an ordinary leave request's day count across three buckets in a
  fixed priority order:

    1. Banked balance first. Accumulated entitlement is spent before
       anything else. A negative balance contributes zero; it is never
       borrowed against further here.
    2. Monthly accrual rate second. The rate is a cap on how many
       non-balance days can still be treated as paid this calendar month.
       Approved leave earlier in the month has already eaten part of that
       cap, which is what MonthNonLopTaken carries.
    3. Loss of pay last. Whatever neither bucket covers is unpaid. It is
       surfaced in the Decision, never silently dropped: payroll needs it.

  The priority order is fixed. There is no configuration point for it.

INVARIANTS:
  - FromBalance + FromMonthlyRate + LossOfPay == requested, exactly
  - all three buckets are >= 0
  - FromBalance <= max(0, RemainingBalance)
  - FromMonthlyRate <= max(0, MonthlyRate - MonthNonLopTaken)
*/
package leave

// Allocation is the three-way split of an ordinary request's day count.
type Allocation struct {
	FromBalance     Days
	FromMonthlyRate Days
	LossOfPay       Days
}

// Allocate splits the requested days against the context's balance and
// monthly rate. With a zero rate, everything beyond the banked balance is
// loss of pay.
func Allocate(requested Days, ctx Context) Allocation {
	zero := ZeroDays()

	fromBalance := ctx.RemainingBalance.Min(requested).Max(zero)

	remainingRate := ctx.MonthlyRate.Sub(ctx.MonthNonLopTaken).Max(zero)
	afterBalance := requested.Sub(fromBalance)
	fromRate := remainingRate.Min(afterBalance).Max(zero)

	lossOfPay := requested.Sub(fromBalance).Sub(fromRate)

	return Allocation{
		FromBalance:     fromBalance,
		FromMonthlyRate: fromRate,
		LossOfPay:       lossOfPay,
	}
}
