/*
Package leave implements the leave cost evaluation core.

PURPOSE:
  This package decides what a proposed absence costs before anything is
  written down. Given a leave request and a snapshot of the employee's
  current leave state, Evaluate answers three questions: is the request
  legal, which existing request (if any) does it collide with, and how do
  the requested days split across banked balance, the monthly accrual
  rate, and loss of pay.

KEY CONCEPTS IN THIS FILE (types.go):
  - Request: the proposed absence (type, date window, half-day marker)
  - Context: read-only snapshot of balances and active leave records
  - Decision: the structured verdict with the three-way day split
  - TypeKey: closed enum of leave categories; dispatch is on the enum,
    never on display names

DESIGN PRINCIPLES:
  1. Purity: Evaluate reads the Context, mutates nothing, touches no
     clock and no store. Callers persist the Decision.
  2. Precision: day arithmetic uses decimal.Decimal via the Days type,
     so the split always sums exactly.
  3. One hard error: a malformed request (end before start, unknown
     type) returns an error; every business outcome, including full
     loss of pay, is a Decision.

USAGE:
  req := leave.Request{
      EmployeeID: "emp-001",
      Type:       leave.TypeAnnual,
      StartDate:  leave.NewDate(2026, time.March, 2),
      EndDate:    leave.NewDate(2026, time.March, 5),
  }
  decision, err := leave.Evaluate(req, ctx)

SEE ALSO:
  - allocation.go: the balance/rate/LOP split
  - overlap.go: collision detection against active leave
  - special.go: birthday and compensatory-off rules
*/
package leave

// =============================================================================
// IDENTIFIERS AND ENUMS
// =============================================================================

type EmployeeID string

// TypeKey is the leave category. The set is closed: evaluation branches on
// these constants and an unrecognized key is a caller error, not a silent
// fall-through.
type TypeKey string

const (
	TypeAnnual       TypeKey = "annual"
	TypeSick         TypeKey = "sick"
	TypeCasual       TypeKey = "casual"
	TypeCompensatory TypeKey = "compensatory"
	TypeBirthday     TypeKey = "birthday"
	TypeOther        TypeKey = "other"
)

func (k TypeKey) Valid() bool {
	switch k {
	case TypeAnnual, TypeSick, TypeCasual, TypeCompensatory, TypeBirthday, TypeOther:
		return true
	}
	return false
}

// Special leave types bypass the accrual allocator entirely: birthday leave
// is employer-absorbed, compensatory off draws on its own banked counter.
func (k TypeKey) Special() bool {
	return k == TypeBirthday || k == TypeCompensatory
}

// Ordinary leave types are costed by the allocator.
func (k TypeKey) Ordinary() bool {
	return k.Valid() && !k.Special()
}

// HalfDayPeriod tags which half of the day a 0.5-day absence covers.
type HalfDayPeriod string

const (
	FirstHalf  HalfDayPeriod = "first_half"
	SecondHalf HalfDayPeriod = "second_half"
)

// LeaveStatus is the lifecycle state of a persisted leave record.
type LeaveStatus string

const (
	StatusPending   LeaveStatus = "pending"
	StatusApproved  LeaveStatus = "approved"
	StatusRejected  LeaveStatus = "rejected"
	StatusCancelled LeaveStatus = "cancelled"
)

// Blocks reports whether a record in this status occupies its dates for
// overlap purposes.
func (s LeaveStatus) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// =============================================================================
// REQUEST - The proposed absence under evaluation
// =============================================================================

// Request is constructed by the caller for evaluation. Invariants the
// caller owns: StartDate <= EndDate, and half-day requests have
// StartDate == EndDate.
type Request struct {
	EmployeeID    EmployeeID
	Type          TypeKey
	StartDate     Date
	EndDate       Date
	HalfDay       bool
	HalfDayPeriod HalfDayPeriod
}

func (r Request) Window() Window {
	return Window{Start: r.StartDate, End: r.EndDate}
}

// =============================================================================
// CONTEXT - Read-only snapshot supplied by the data layer
// =============================================================================

// ActiveLeave is an existing leave record the request may collide with.
// Only pending and approved records block; the evaluator skips the rest.
type ActiveLeave struct {
	ID            string
	Type          TypeKey
	StartDate     Date
	EndDate       Date
	HalfDay       bool
	HalfDayPeriod HalfDayPeriod
	Status        LeaveStatus
}

func (l ActiveLeave) Window() Window {
	return Window{Start: l.StartDate, End: l.EndDate}
}

// Context is the employee's leave state at evaluation time. The evaluator
// never mutates it; a stale snapshot is the caller's concern (re-read and
// re-evaluate inside the same transaction as the eventual write).
type Context struct {
	// RemainingBalance is the banked entitlement. Signed: a negative value
	// means the employee is already overdrawn and contributes nothing to
	// the allocation.
	RemainingBalance Days

	// MonthlyRate is the accrual rate in days per month for the requested
	// type, 0 when the type does not accrue.
	MonthlyRate Days

	// MonthNonLopTaken is the paid portion (days minus loss-of-pay) of
	// already-approved ordinary leave starting in the request's calendar
	// month. It consumes the monthly rate cap.
	MonthNonLopTaken Days

	// CompOffBalance is the banked compensatory-off counter, never negative.
	CompOffBalance Days

	// BirthDate is nil when the employee has no birth date on file.
	BirthDate *Date

	// ActiveLeaves is ordered; overlap detection reports the first match.
	ActiveLeaves []ActiveLeave
}

// =============================================================================
// DECISION - The structured verdict
// =============================================================================

// RejectionReason enumerates why a request was turned down. Loss of pay is
// not among them: an ordinary request that lands entirely on LOP is still
// accepted, with the split as the advisory.
type RejectionReason string

const (
	ReasonDuplicateLeave      RejectionReason = "duplicate_leave"
	ReasonMissingBirthDate    RejectionReason = "missing_birth_date"
	ReasonNotBirthday         RejectionReason = "not_birthday"
	ReasonMultiDayNotAllowed  RejectionReason = "multi_day_not_allowed"
	ReasonHalfDayNotAllowed   RejectionReason = "half_day_not_allowed"
	ReasonInsufficientCompOff RejectionReason = "insufficient_comp_off_balance"
)

// Decision is the evaluator's output. For accepted ordinary leave the three
// buckets sum exactly to DaysRequested. For accepted birthday and
// compensatory leave all three buckets are zero: their cost is carried
// outside this accounting.
type Decision struct {
	Accepted        bool
	Reason          RejectionReason
	DaysRequested   Days
	FromBalance     Days
	FromMonthlyRate Days
	LossOfPay       Days

	// Conflict is the record that caused a duplicate_leave rejection.
	Conflict *ActiveLeave
}
