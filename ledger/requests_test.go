package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/ledger/store"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*ledger.RequestService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return ledger.NewRequestService(mem, policy.DefaultSet()), mem
}

func seedEmployee(t *testing.T, mem *store.Memory, id string, birth *leave.Date) {
	t.Helper()
	err := mem.SaveEmployee(context.Background(), ledger.Employee{
		ID:        leave.EmployeeID(id),
		Name:      "Employee " + id,
		Email:     id + "@example.com",
		JoinDate:  leave.NewDate(2024, time.January, 1),
		BirthDate: birth,
	})
	require.NoError(t, err)
}

func grantDays(t *testing.T, mem *store.Memory, id string, typeKey leave.TypeKey, at leave.Date, days float64) {
	t.Helper()
	key := fmt.Sprintf("seed-%s-%s-%s", id, typeKey, at)
	err := mem.Append(context.Background(), ledger.Entry{
		ID:             ledger.EntryID(key),
		EmployeeID:     leave.EmployeeID(id),
		Type:           typeKey,
		EffectiveAt:    at,
		Delta:          leave.NewDays(days),
		Kind:           ledger.KindGrant,
		Reason:         "Seed grant",
		IdempotencyKey: key,
	})
	require.NoError(t, err)
}

func annualRange(id string, start, end leave.Date) leave.Request {
	return leave.Request{
		EmployeeID: leave.EmployeeID(id),
		Type:       leave.TypeAnnual,
		StartDate:  start,
		EndDate:    end,
	}
}

func singleDay(id string, typeKey leave.TypeKey, on leave.Date) leave.Request {
	return leave.Request{
		EmployeeID: leave.EmployeeID(id),
		Type:       typeKey,
		StartDate:  on,
		EndDate:    on,
	}
}

func datePtr(year int, month time.Month, day int) *leave.Date {
	d := leave.NewDate(year, month, day)
	return &d
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_AcceptedRequestPersistsAsPending(t *testing.T) {
	// GIVEN: An employee with 5 banked annual days
	// WHEN: Submitting a 2-day annual request
	// THEN: The decision is accepted and a pending record stores the split

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	rec, decision, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)), "family trip")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, decision.Accepted)
	assertDays(t, 2, decision.DaysRequested, "days requested")
	assertDays(t, 2, decision.FromBalance, "covered from balance")
	assertDays(t, 0, decision.LossOfPay, "no loss of pay")

	assert.Equal(t, leave.StatusPending, rec.Status)
	assert.Equal(t, "family trip", rec.Note)
	assertDays(t, 2, rec.FromBalance, "split stored on the record")

	stored, err := mem.GetRequest(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, stored.Status)
}

func TestSubmit_RejectionLeavesNoRecord(t *testing.T) {
	// GIVEN: A pending request covering June 10-12
	// WHEN: Submitting a new request for June 11
	// THEN: The overlap rejects it and nothing is persisted

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	first, _, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 10), leave.NewDate(2025, time.June, 12)), "")
	require.NoError(t, err)

	rec, decision, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")

	require.NoError(t, err)
	assert.Nil(t, rec, "rejected request must not persist")
	assert.False(t, decision.Accepted)
	assert.Equal(t, leave.ReasonDuplicateLeave, decision.Reason)
	require.NotNil(t, decision.Conflict)
	assert.Equal(t, first.ID, decision.Conflict.ID)

	all, err := mem.ListRequests(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, all, 1, "only the first request exists")
}

func TestSubmit_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Submit(context.Background(), singleDay("ghost", leave.TypeAnnual, leave.NewDate(2025, time.June, 2)), "")

	assert.ErrorIs(t, err, ledger.ErrEmployeeNotFound)
}

func TestSubmit_LossOfPayIsAcceptedNotRejected(t *testing.T) {
	// GIVEN: An employee with no balance and no accrual history
	// WHEN: Submitting a 3-day request
	// THEN: It is accepted with the uncovered days flagged as loss of pay

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	rec, decision, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 4)), "")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, decision.Accepted, "loss of pay never blocks a request")
	assertDays(t, 3, decision.DaysRequested, "days requested")
	assertDays(t, 0, decision.FromBalance, "nothing banked")
	assertDays(t, 1.5, decision.FromMonthlyRate, "monthly rate covers part")
	assertDays(t, 1.5, decision.LossOfPay, "remainder is unpaid")
}

// =============================================================================
// APPROVE TESTS
// =============================================================================

func TestApprove_PostsConsumptionForPaidDays(t *testing.T) {
	// GIVEN: A pending 2-day request fully covered by balance
	// WHEN: Approving it
	// THEN: One consumption entry posts and the balance drops by 2

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)), "")
	require.NoError(t, err)

	approved, decision, err := svc.Approve(ctx, pending.ID, "manager-1")

	require.NoError(t, err)
	assert.True(t, decision.Accepted)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, "manager-1", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	require.Len(t, entries, 2, "grant plus consumption")
	consumption := entries[1]
	assert.Equal(t, ledger.KindConsumption, consumption.Kind)
	assert.Equal(t, pending.ID, consumption.ReferenceID)
	assertDays(t, -2, consumption.Delta, "consumption delta")
	assertDays(t, 3, ledger.Balance(entries), "balance after approval")
}

func TestApprove_RecomputesSplitOnFreshState(t *testing.T) {
	// GIVEN: Two pending 2-day June requests submitted against a 3-day balance
	// WHEN: Approving them in sequence
	// THEN: The second approval ignores its stale submit-time split and
	//       settles on what is actually left

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 3)

	first, _, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)), "")
	require.NoError(t, err)
	second, submitDecision, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 9), leave.NewDate(2025, time.June, 10)), "")
	require.NoError(t, err)
	assertDays(t, 2, submitDecision.FromBalance, "submit-time advisory saw the full balance")

	_, _, err = svc.Approve(ctx, first.ID, "manager-1")
	require.NoError(t, err)

	_, decision, err := svc.Approve(ctx, second.ID, "manager-1")
	require.NoError(t, err)

	// Fresh snapshot: 1 banked day left, and June's approved 2 paid days
	// exhaust the 1.5/month rate.
	assert.True(t, decision.Accepted)
	assertDays(t, 1, decision.FromBalance, "only the remaining banked day")
	assertDays(t, 0, decision.FromMonthlyRate, "rate already consumed this month")
	assertDays(t, 1, decision.LossOfPay, "remainder is unpaid")

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	assertDays(t, 0, ledger.Balance(entries), "paid days fully drawn down")

	stored, err := mem.GetRequest(ctx, second.ID)
	require.NoError(t, err)
	assertDays(t, 1, stored.LossOfPay, "record carries the recomputed split")
}

func TestApprove_FlipsToRejectedWhenCompOffDrained(t *testing.T) {
	// GIVEN: Two pending comp-off requests backed by a single credit
	// WHEN: The first approval spends the credit
	// THEN: The second approval re-checks, fails, and the record flips to
	//       rejected instead of overdrawing the counter

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	_, err := svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.May, 31), leave.NewDays(1), "weekend release")
	require.NoError(t, err)

	first, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeCompensatory, leave.NewDate(2025, time.June, 6)), "")
	require.NoError(t, err)
	second, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeCompensatory, leave.NewDate(2025, time.June, 13)), "")
	require.NoError(t, err)

	_, _, err = svc.Approve(ctx, first.ID, "manager-1")
	require.NoError(t, err)

	rec, decision, err := svc.Approve(ctx, second.ID, "manager-1")

	require.NoError(t, err)
	assert.False(t, decision.Accepted)
	assert.Equal(t, leave.ReasonInsufficientCompOff, decision.Reason)
	assert.Equal(t, leave.StatusRejected, rec.Status)
	assert.Equal(t, string(leave.ReasonInsufficientCompOff), rec.RejectionReason)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeCompensatory)
	require.NoError(t, err)
	require.Len(t, entries, 2, "grant plus the first spend only")
	assertDays(t, 0, ledger.Balance(entries), "counter never goes negative")
}

func TestApprove_FlipsToRejectedWhenOverlapAppeared(t *testing.T) {
	// GIVEN: A pending request for June 11, then an imported approved
	//        record covering June 10-12 lands out of band
	// WHEN: Approving the pending request
	// THEN: The re-check finds the overlap and rejects it

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)

	imported := ledger.RequestRecord{
		ID:         "req-imported",
		EmployeeID: "emp-1",
		Type:       leave.TypeAnnual,
		StartDate:  leave.NewDate(2025, time.June, 10),
		EndDate:    leave.NewDate(2025, time.June, 12),
		Status:     leave.StatusApproved,
		DaysCount:  leave.NewDays(3),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, mem.SaveRequest(ctx, imported))

	rec, decision, err := svc.Approve(ctx, pending.ID, "manager-1")

	require.NoError(t, err)
	assert.False(t, decision.Accepted)
	assert.Equal(t, leave.ReasonDuplicateLeave, decision.Reason)
	require.NotNil(t, decision.Conflict)
	assert.Equal(t, "req-imported", decision.Conflict.ID)
	assert.Equal(t, leave.StatusRejected, rec.Status)
}

func TestApprove_DoesNotConflictWithItself(t *testing.T) {
	// GIVEN: A pending request and no other leave on the books
	// WHEN: Approving it
	// THEN: Its own record is not treated as an overlap

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)

	_, decision, err := svc.Approve(ctx, pending.ID, "manager-1")

	require.NoError(t, err)
	assert.True(t, decision.Accepted, "got %s", decision.Reason)
}

func TestApprove_RequiresPendingStatus(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, pending.ID, "manager-1")
	require.NoError(t, err)

	_, _, err = svc.Approve(ctx, pending.ID, "manager-2")
	assert.ErrorIs(t, err, ledger.ErrNotPending)

	_, _, err = svc.Approve(ctx, "req-missing", "manager-1")
	assert.ErrorIs(t, err, ledger.ErrRequestNotFound)
}

func TestApprove_BirthdayLeavePostsNothing(t *testing.T) {
	// GIVEN: A pending birthday request on the employee's birthday
	// WHEN: Approving it
	// THEN: The request is approved with no ledger movement at all

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", datePtr(2000, time.May, 10))

	pending, decision, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeBirthday, leave.NewDate(2025, time.May, 10)), "")
	require.NoError(t, err)
	assert.True(t, decision.Accepted)
	assertDays(t, 0, decision.FromBalance, "birthday leave costs nothing")
	assertDays(t, 0, decision.LossOfPay, "birthday leave costs nothing")

	approved, _, err := svc.Approve(ctx, pending.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeBirthday)
	require.NoError(t, err)
	assert.Empty(t, entries, "no entries for birthday leave")
}

// =============================================================================
// REJECT AND CANCEL TESTS
// =============================================================================

func TestReject_PendingRequest(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, pending.ID, "manager-1", "blackout week")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	assert.Equal(t, "manager-1", rejected.DecidedBy)
	assert.Equal(t, "blackout week", rejected.Note)

	_, err = svc.Reject(ctx, pending.ID, "manager-1", "")
	assert.ErrorIs(t, err, ledger.ErrNotPending)
}

func TestCancel_PendingLeavesLedgerUntouched(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, pending.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "seed grant only")
}

func TestCancel_ApprovedReversesTheConsumption(t *testing.T) {
	// GIVEN: An approved 2-day request that consumed banked days
	// WHEN: Cancelling it
	// THEN: A reversal entry restores the balance and history keeps both rows

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)), "")
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, pending.ID, "manager-1")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, pending.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	require.Len(t, entries, 3, "grant, consumption, reversal")
	reversal := entries[2]
	assert.Equal(t, ledger.KindReversal, reversal.Kind)
	assertDays(t, 2, reversal.Delta, "reversal gives the days back")
	assertDays(t, 5, ledger.Balance(entries), "balance restored")

	// The cancelled window no longer blocks new requests.
	again, decision, err := svc.Submit(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)), "")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.True(t, decision.Accepted)
}

func TestCancel_ApprovedCompOffRestoresTheCounter(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	_, err := svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.May, 31), leave.NewDays(1), "")
	require.NoError(t, err)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeCompensatory, leave.NewDate(2025, time.June, 6)), "")
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, pending.ID, "manager-1")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, pending.ID, "emp-1")
	require.NoError(t, err)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeCompensatory)
	require.NoError(t, err)
	assertDays(t, 1, ledger.CompOffAvailable(entries), "credit restored")
}

func TestCancel_SettledRequestIsFinal(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	pending, _, err := svc.Submit(ctx, singleDay("emp-1", leave.TypeAnnual, leave.NewDate(2025, time.June, 11)), "")
	require.NoError(t, err)
	_, err = svc.Reject(ctx, pending.ID, "manager-1", "")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, pending.ID, "emp-1")
	assert.ErrorIs(t, err, ledger.ErrNotCancellable)
}

// =============================================================================
// COMP-OFF GRANT AND ADJUSTMENT TESTS
// =============================================================================

func TestGrantCompOff_OncePerWorkedDay(t *testing.T) {
	// GIVEN: A credit already granted for May 31
	// WHEN: Granting the same worked day again
	// THEN: The duplicate key rejects it; a different day goes through

	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	_, err := svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.May, 31), leave.NewDays(1), "weekend release")
	require.NoError(t, err)

	_, err = svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.May, 31), leave.NewDays(1), "weekend release")
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)

	_, err = svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.June, 1), leave.NewDays(0.5), "")
	require.NoError(t, err)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeCompensatory)
	require.NoError(t, err)
	assertDays(t, 1.5, ledger.CompOffAvailable(entries), "both distinct grants count")
}

func TestGrantCompOff_Validation(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	_, err := svc.GrantCompOff(ctx, "emp-1", leave.NewDate(2025, time.May, 31), leave.NewDays(0), "")
	assert.Error(t, err, "zero grant rejected")

	_, err = svc.GrantCompOff(ctx, "ghost", leave.NewDate(2025, time.May, 31), leave.NewDays(1), "")
	assert.ErrorIs(t, err, ledger.ErrEmployeeNotFound)
}

func TestAdjust_PostsManualCorrection(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	entry, err := svc.Adjust(ctx, "emp-1", leave.TypeAnnual, leave.NewDays(-1), "payroll correction")
	require.NoError(t, err)
	assert.Equal(t, ledger.KindAdjustment, entry.Kind)

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	assertDays(t, 4, ledger.Balance(entries), "balance after correction")
}

func TestAdjust_Validation(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)

	_, err := svc.Adjust(ctx, "emp-1", leave.TypeKey("gardening"), leave.NewDays(1), "")
	assert.ErrorIs(t, err, leave.ErrUnknownLeaveType)

	_, err = svc.Adjust(ctx, "emp-1", leave.TypeAnnual, leave.NewDays(0), "")
	assert.Error(t, err, "zero delta rejected")
}

// =============================================================================
// WHAT-IF EVALUATION TESTS
// =============================================================================

func TestEvaluate_DoesNotPersistAnything(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, mem, "emp-1", nil)
	grantDays(t, mem, "emp-1", leave.TypeAnnual, leave.NewDate(2025, time.January, 1), 5)

	decision, err := svc.Evaluate(ctx, annualRange("emp-1", leave.NewDate(2025, time.June, 2), leave.NewDate(2025, time.June, 3)))

	require.NoError(t, err)
	assert.True(t, decision.Accepted)
	assertDays(t, 2, decision.FromBalance, "what-if split")

	all, err := mem.ListRequests(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, all, "evaluation writes nothing")

	entries, err := mem.Load(ctx, "emp-1", leave.TypeAnnual)
	require.NoError(t, err)
	assertDays(t, 5, ledger.Balance(entries), "balance untouched")
}
