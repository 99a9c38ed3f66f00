/*
special.go - Birthday and compensatory-off eligibility

PURPOSE:
  Two leave types never reach the accrual allocator. Birthday leave is a
  single employer-paid day that must land on the employee's actual birthday.
  Compensatory off spends a separately banked counter earned by prior extra
  work. This file holds their eligibility rules; the cost of both is zero
  in the balance/rate/LOP accounting.

RULE ORDER (birthday):
  missing_birth_date, then not_birthday, then multi_day_not_allowed, then
  half_day_not_allowed. The order is observable through the returned reason
  when a request violates several rules at once.
*/
package leave

// ValidateSpecial checks the type-specific rules for birthday and
// compensatory-off requests and returns the rejection reason, or the empty
// reason when the request passes. Ordinary types always pass.
func ValidateSpecial(req Request, daysRequested Days, ctx Context) RejectionReason {
	switch req.Type {
	case TypeBirthday:
		return birthdayIneligibility(req, ctx)
	case TypeCompensatory:
		return compOffIneligibility(daysRequested, ctx)
	default:
		return ""
	}
}

func birthdayIneligibility(req Request, ctx Context) RejectionReason {
	if ctx.BirthDate == nil {
		return ReasonMissingBirthDate
	}
	birthMonth, birthDay := ctx.BirthDate.MonthDay()
	startMonth, startDay := req.StartDate.MonthDay()
	if startMonth != birthMonth || startDay != birthDay {
		return ReasonNotBirthday
	}
	if !req.StartDate.Equal(req.EndDate) {
		return ReasonMultiDayNotAllowed
	}
	if req.HalfDay {
		return ReasonHalfDayNotAllowed
	}
	return ""
}

// Comp-off never goes negative and never overdraws: a zero or exhausted
// counter rejects outright, it does not fall through to loss of pay.
func compOffIneligibility(daysRequested Days, ctx Context) RejectionReason {
	if !ctx.CompOffBalance.IsPositive() || daysRequested.GreaterThan(ctx.CompOffBalance) {
		return ReasonInsufficientCompOff
	}
	return ""
}
