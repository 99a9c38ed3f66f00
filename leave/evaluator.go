/*
evaluator.go - The evaluation pipeline

PURPOSE:
  Evaluate is the package's single entry point. It composes the pieces in
  a fixed sequence:

    1. Day count (window.go), failing fast on a malformed range or type.
    2. Overlap detection (overlap.go). A collision rejects with
       duplicate_leave and the blocking record attached, before any
       type-specific rule runs.
    3. Special-type rules (special.go). Birthday and compensatory leave
       either reject with their specific reason or come back accepted with
       all cost buckets at zero.
    4. Allocation (allocation.go) for ordinary types, always accepted:
       loss of pay is an advisory on the decision, not a failure.

  The function is pure and idempotent. It reads the snapshot it is given,
  mutates nothing, performs no I/O, and is safe to call concurrently.
  Callers persist decisions; a caller that later writes the leave record
  must re-run this evaluation on a fresh snapshot inside the same
  transaction as the write, so two concurrent submissions cannot both pass
  the overlap check.
*/
package leave

import (
	"fmt"
)

// Evaluate produces the decision for one request against one context
// snapshot. The only errors are malformed input: an end date before the
// start date, or a type outside the enum. Every business outcome is a
// Decision.
func Evaluate(req Request, ctx Context) (Decision, error) {
	days, err := req.DaysRequested()
	if err != nil {
		return Decision{}, err
	}
	if !req.Type.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownLeaveType, string(req.Type))
	}

	if conflict := FindConflict(req, ctx.ActiveLeaves); conflict != nil {
		return Decision{
			Reason:        ReasonDuplicateLeave,
			DaysRequested: days,
			Conflict:      conflict,
		}, nil
	}

	if req.Type.Special() {
		if reason := ValidateSpecial(req, days, ctx); reason != "" {
			return Decision{Reason: reason, DaysRequested: days}, nil
		}
		return Decision{Accepted: true, DaysRequested: days}, nil
	}

	alloc := Allocate(days, ctx)
	return Decision{
		Accepted:        true,
		DaysRequested:   days,
		FromBalance:     alloc.FromBalance,
		FromMonthlyRate: alloc.FromMonthlyRate,
		LossOfPay:       alloc.LossOfPay,
	}, nil
}
