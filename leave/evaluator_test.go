/*
evaluator_test.go - End-to-end evaluation pipeline

Walks the full sequence (day count, overlap, special rules, allocation)
through the decisions a caller actually sees, and pins down purity: same
inputs, same decision, untouched context. Shared test helpers for the
package live at the bottom of this file.
*/
package leave_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// ORDINARY LEAVE DECISIONS
// =============================================================================

func TestEvaluate_BalanceCoversRequest(t *testing.T) {
	// GIVEN: Balance 5, rate 2, a 4-day annual request
	// WHEN: Evaluating
	// THEN: Accepted, 4/0/0

	req := annualReq(day(2026, time.March, 2), day(2026, time.March, 5))

	decision, err := leave.Evaluate(req, ordinaryCtx(5, 2, 0))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertAccepted(t, decision)
	assertDecisionSplit(t, decision, 4, 0, 0)
}

func TestEvaluate_SplitAcrossAllBuckets(t *testing.T) {
	// GIVEN: Balance 1, rate 2, a 4-day annual request
	// WHEN: Evaluating
	// THEN: Accepted, 1 from balance, 2 from rate, 1 loss of pay

	req := annualReq(day(2026, time.March, 2), day(2026, time.March, 5))

	decision, err := leave.Evaluate(req, ordinaryCtx(1, 2, 0))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertAccepted(t, decision)
	assertDecisionSplit(t, decision, 1, 2, 1)
}

func TestEvaluate_FullLossOfPayIsStillAccepted(t *testing.T) {
	// GIVEN: No balance, no rate, a 3-day request
	// WHEN: Evaluating
	// THEN: Accepted with 3 days loss of pay; LOP is an advisory, not a
	//       rejection

	req := annualReq(day(2026, time.March, 2), day(2026, time.March, 4))

	decision, err := leave.Evaluate(req, ordinaryCtx(0, 0, 0))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertAccepted(t, decision)
	assertDecisionSplit(t, decision, 0, 0, 3)
}

func TestEvaluate_ConservationOnAcceptedOrdinary(t *testing.T) {
	// GIVEN: An accepted ordinary decision
	// WHEN: Summing the three buckets
	// THEN: They equal the requested days exactly

	req := annualReq(day(2026, time.March, 2), day(2026, time.March, 9))

	decision, err := leave.Evaluate(req, ordinaryCtx(2.5, 1.5, 0.5))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	sum := decision.FromBalance.Add(decision.FromMonthlyRate).Add(decision.LossOfPay)
	if !sum.Equal(decision.DaysRequested) {
		t.Errorf("Buckets %s+%s+%s must sum to %s",
			decision.FromBalance, decision.FromMonthlyRate, decision.LossOfPay, decision.DaysRequested)
	}
}

// =============================================================================
// BIRTHDAY LEAVE DECISIONS
// =============================================================================

func TestEvaluate_BirthdayOnBirthdate(t *testing.T) {
	// GIVEN: Birth date 2000-05-10, a single full-day birthday request on
	//        2024-05-10
	// WHEN: Evaluating
	// THEN: Accepted with every bucket at zero; the day is employer-absorbed

	req := birthdayReq(day(2024, time.May, 10))
	ctx := ctxWithBirthDate(2000, time.May, 10)

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertAccepted(t, decision)
	if !decision.DaysRequested.Equal(d(1)) {
		t.Errorf("Expected 1 day requested, got %s", decision.DaysRequested)
	}
	assertDecisionSplit(t, decision, 0, 0, 0)
}

func TestEvaluate_BirthdayOnWrongDate(t *testing.T) {
	// GIVEN: Birth date 2000-05-10, a birthday request on 2024-05-11
	// WHEN: Evaluating
	// THEN: Rejected not_birthday

	req := birthdayReq(day(2024, time.May, 11))
	ctx := ctxWithBirthDate(2000, time.May, 10)

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertRejected(t, decision, leave.ReasonNotBirthday)
}

// =============================================================================
// COMPENSATORY-OFF DECISIONS
// =============================================================================

func TestEvaluate_CompOffWithinBalance(t *testing.T) {
	// GIVEN: 2 banked comp-off days, a 1-day compensatory request
	// WHEN: Evaluating
	// THEN: Accepted with zero buckets; the counter is decremented by the
	//       write path, not here

	req := compOffReq(day(2026, time.April, 6), day(2026, time.April, 6))
	ctx := leave.Context{CompOffBalance: d(2)}

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertAccepted(t, decision)
	assertDecisionSplit(t, decision, 0, 0, 0)
}

func TestEvaluate_CompOffBeyondBalance(t *testing.T) {
	// GIVEN: 1 banked comp-off day, a 2-day compensatory request
	// WHEN: Evaluating
	// THEN: Rejected insufficient_comp_off_balance

	req := compOffReq(day(2026, time.April, 6), day(2026, time.April, 7))
	ctx := leave.Context{CompOffBalance: d(1)}

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertRejected(t, decision, leave.ReasonInsufficientCompOff)
}

// =============================================================================
// OVERLAP AND SEQUENCING
// =============================================================================

func TestEvaluate_DuplicateLeave(t *testing.T) {
	// GIVEN: Approved leave 2024-06-10..12, a new single-day request on
	//        2024-06-11
	// WHEN: Evaluating
	// THEN: Rejected duplicate_leave with the blocking record attached

	ctx := ordinaryCtx(10, 2, 0)
	ctx.ActiveLeaves = []leave.ActiveLeave{
		approvedLeave("rec-1", day(2024, time.June, 10), day(2024, time.June, 12)),
	}
	req := annualReq(day(2024, time.June, 11), day(2024, time.June, 11))

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertRejected(t, decision, leave.ReasonDuplicateLeave)
	if decision.Conflict == nil {
		t.Fatal("Expected the conflicting record on the decision")
	}
	if decision.Conflict.ID != "rec-1" {
		t.Errorf("Expected conflict with rec-1, got %s", decision.Conflict.ID)
	}
}

func TestEvaluate_OverlapRunsBeforeSpecialRules(t *testing.T) {
	// GIVEN: A birthday request on the wrong date that also collides with
	//        approved leave
	// WHEN: Evaluating
	// THEN: duplicate_leave wins; overlap is checked before type rules

	ctx := ctxWithBirthDate(2000, time.May, 10)
	ctx.ActiveLeaves = []leave.ActiveLeave{
		approvedLeave("rec-1", day(2024, time.May, 11), day(2024, time.May, 11)),
	}
	req := birthdayReq(day(2024, time.May, 11))

	decision, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	assertRejected(t, decision, leave.ReasonDuplicateLeave)
}

// =============================================================================
// HARD ERRORS
// =============================================================================

func TestEvaluate_InvalidRange(t *testing.T) {
	// GIVEN: A full-day request with end before start
	// WHEN: Evaluating
	// THEN: Hard error, no decision; this input should never reach us

	req := annualReq(day(2026, time.March, 10), day(2026, time.March, 4))

	_, err := leave.Evaluate(req, ordinaryCtx(5, 2, 0))
	if err == nil {
		t.Fatal("Expected an error for a malformed range")
	}
	if !errors.Is(err, leave.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
}

func TestEvaluate_UnknownType(t *testing.T) {
	// GIVEN: A request with a type outside the enum
	// WHEN: Evaluating
	// THEN: Hard error

	req := leave.Request{
		EmployeeID: "emp-001",
		Type:       leave.TypeKey("sabbatical"),
		StartDate:  day(2026, time.March, 2),
		EndDate:    day(2026, time.March, 4),
	}

	_, err := leave.Evaluate(req, ordinaryCtx(5, 2, 0))
	if err == nil {
		t.Fatal("Expected an error for an unknown leave type")
	}
	if !errors.Is(err, leave.ErrUnknownLeaveType) {
		t.Errorf("Expected ErrUnknownLeaveType, got %v", err)
	}
}

// =============================================================================
// PURITY
// =============================================================================

func TestEvaluate_IdempotentAndNonMutating(t *testing.T) {
	// GIVEN: One request and one context
	// WHEN: Evaluating twice
	// THEN: Identical decisions, and the context snapshot is untouched

	ctx := ordinaryCtx(1, 2, 0.5)
	ctx.ActiveLeaves = []leave.ActiveLeave{
		approvedLeave("rec-1", day(2026, time.February, 2), day(2026, time.February, 3)),
	}
	req := annualReq(day(2026, time.March, 2), day(2026, time.March, 5))

	first, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("First evaluation failed: %v", err)
	}
	second, err := leave.Evaluate(req, ctx)
	if err != nil {
		t.Fatalf("Second evaluation failed: %v", err)
	}

	if first.Accepted != second.Accepted || first.Reason != second.Reason {
		t.Error("Repeated evaluation must produce the same verdict")
	}
	if !first.FromBalance.Equal(second.FromBalance) ||
		!first.FromMonthlyRate.Equal(second.FromMonthlyRate) ||
		!first.LossOfPay.Equal(second.LossOfPay) {
		t.Error("Repeated evaluation must produce the same split")
	}

	if !ctx.RemainingBalance.Equal(d(1)) || !ctx.MonthNonLopTaken.Equal(d(0.5)) {
		t.Error("Evaluation must not mutate the context")
	}
	if len(ctx.ActiveLeaves) != 1 || ctx.ActiveLeaves[0].ID != "rec-1" {
		t.Error("Evaluation must not mutate the active leave list")
	}
}

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(n float64) leave.Days {
	return leave.NewDays(n)
}

func day(year int, month time.Month, dayOfMonth int) leave.Date {
	return leave.NewDate(year, month, dayOfMonth)
}

func annualReq(start, end leave.Date) leave.Request {
	return leave.Request{
		EmployeeID: "emp-001",
		Type:       leave.TypeAnnual,
		StartDate:  start,
		EndDate:    end,
	}
}

func halfDayReq(date leave.Date, period leave.HalfDayPeriod) leave.Request {
	return leave.Request{
		EmployeeID:    "emp-001",
		Type:          leave.TypeCasual,
		StartDate:     date,
		EndDate:       date,
		HalfDay:       true,
		HalfDayPeriod: period,
	}
}

func birthdayReq(date leave.Date) leave.Request {
	return leave.Request{
		EmployeeID: "emp-001",
		Type:       leave.TypeBirthday,
		StartDate:  date,
		EndDate:    date,
	}
}

func compOffReq(start, end leave.Date) leave.Request {
	return leave.Request{
		EmployeeID: "emp-001",
		Type:       leave.TypeCompensatory,
		StartDate:  start,
		EndDate:    end,
	}
}

func approvedLeave(id string, start, end leave.Date) leave.ActiveLeave {
	return leave.ActiveLeave{
		ID:        id,
		Type:      leave.TypeAnnual,
		StartDate: start,
		EndDate:   end,
		Status:    leave.StatusApproved,
	}
}

func halfDayLeave(id string, date leave.Date, period leave.HalfDayPeriod, status leave.LeaveStatus) leave.ActiveLeave {
	return leave.ActiveLeave{
		ID:            id,
		Type:          leave.TypeCasual,
		StartDate:     date,
		EndDate:       date,
		HalfDay:       true,
		HalfDayPeriod: period,
		Status:        status,
	}
}

func ordinaryCtx(balance, rate, monthTaken float64) leave.Context {
	return leave.Context{
		RemainingBalance: d(balance),
		MonthlyRate:      d(rate),
		MonthNonLopTaken: d(monthTaken),
	}
}

func ctxWithBirthDate(year int, month time.Month, dayOfMonth int) leave.Context {
	birth := day(year, month, dayOfMonth)
	return leave.Context{BirthDate: &birth}
}

func assertAccepted(t *testing.T, decision leave.Decision) {
	t.Helper()
	if !decision.Accepted {
		t.Fatalf("Expected an accepted decision, got rejection %q", decision.Reason)
	}
	if decision.Reason != "" {
		t.Errorf("Accepted decision must carry no rejection reason, got %q", decision.Reason)
	}
}

func assertRejected(t *testing.T, decision leave.Decision, reason leave.RejectionReason) {
	t.Helper()
	if decision.Accepted {
		t.Fatal("Expected a rejected decision")
	}
	if decision.Reason != reason {
		t.Errorf("Expected rejection %q, got %q", reason, decision.Reason)
	}
}

func assertDecisionSplit(t *testing.T, decision leave.Decision, fromBalance, fromRate, lop float64) {
	t.Helper()
	if !decision.FromBalance.Equal(d(fromBalance)) {
		t.Errorf("Expected %v from balance, got %s", fromBalance, decision.FromBalance)
	}
	if !decision.FromMonthlyRate.Equal(d(fromRate)) {
		t.Errorf("Expected %v from monthly rate, got %s", fromRate, decision.FromMonthlyRate)
	}
	if !decision.LossOfPay.Equal(d(lop)) {
		t.Errorf("Expected %v loss of pay, got %s", lop, decision.LossOfPay)
	}
}
