/*
scheduler_test.go - Unit tests for accrual posting

Tests for:
- Backfill from the employee's join date
- Idempotent re-runs (periods post once)
- Annual upfront grants alongside monthly accruals
- Audit trail in accrual_runs
*/
package api

import (
	"context"
	"testing"
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
)

func TestPostAccruals_BackfillsFromJoinDate(t *testing.T) {
	// GIVEN: An employee who joined March 10
	// WHEN: Posting accruals as of June 1
	// THEN: April, May, and June post for each monthly policy; nothing earlier

	handler := setupTestHandler(t)
	ctx := context.Background()

	emp := ledger.Employee{
		ID:       "emp-acc",
		Name:     "Accrual Test",
		Email:    "acc@example.com",
		JoinDate: leave.NewDate(2025, time.March, 10),
	}
	if err := handler.Store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to save employee: %v", err)
	}

	asOf := leave.NewDate(2025, time.June, 1)
	summary, err := postAccruals(ctx, handler.Store, policy.DefaultSet(), asOf)
	if err != nil {
		t.Fatalf("postAccruals failed: %v", err)
	}

	// Annual (1.5/month) and casual (0.5/month) each post 3 months. Sick
	// grants on January 1st, which is before the join date.
	if summary.Posted != 6 {
		t.Errorf("Expected 6 postings, got %d", summary.Posted)
	}
	if summary.Failed != 0 {
		t.Errorf("Expected no failures, got %d", summary.Failed)
	}

	annual, err := handler.Store.Load(ctx, emp.ID, leave.TypeAnnual)
	if err != nil {
		t.Fatalf("Failed to load annual ledger: %v", err)
	}
	if len(annual) != 3 {
		t.Fatalf("Expected 3 annual grants, got %d", len(annual))
	}
	if got := ledger.Balance(annual).Float64(); got != 4.5 {
		t.Errorf("Expected annual balance 4.5, got %v", got)
	}
	if annual[0].Kind != ledger.KindGrant {
		t.Errorf("Expected grant entries, got %s", annual[0].Kind)
	}
	if !annual[0].EffectiveAt.Equal(leave.NewDate(2025, time.April, 1)) {
		t.Errorf("Expected first grant on April 1, got %s", annual[0].EffectiveAt)
	}

	casual, err := handler.Store.Load(ctx, emp.ID, leave.TypeCasual)
	if err != nil {
		t.Fatalf("Failed to load casual ledger: %v", err)
	}
	if got := ledger.Balance(casual).Float64(); got != 1.5 {
		t.Errorf("Expected casual balance 1.5, got %v", got)
	}

	sick, err := handler.Store.Load(ctx, emp.ID, leave.TypeSick)
	if err != nil {
		t.Fatalf("Failed to load sick ledger: %v", err)
	}
	if len(sick) != 0 {
		t.Errorf("Expected no sick grant before next January, got %d entries", len(sick))
	}
}

func TestPostAccruals_SecondRunSkips(t *testing.T) {
	// GIVEN: A completed accrual pass
	// WHEN: Running the same pass again
	// THEN: Every period is skipped and balances do not move

	handler := setupTestHandler(t)
	ctx := context.Background()

	emp := ledger.Employee{
		ID:       "emp-rerun",
		Name:     "Rerun Test",
		Email:    "rerun@example.com",
		JoinDate: leave.NewDate(2025, time.March, 10),
	}
	if err := handler.Store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to save employee: %v", err)
	}

	asOf := leave.NewDate(2025, time.June, 1)
	first, err := postAccruals(ctx, handler.Store, policy.DefaultSet(), asOf)
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}
	second, err := postAccruals(ctx, handler.Store, policy.DefaultSet(), asOf)
	if err != nil {
		t.Fatalf("Second pass failed: %v", err)
	}

	if second.Posted != 0 {
		t.Errorf("Expected no new postings, got %d", second.Posted)
	}
	if second.Skipped != first.Posted {
		t.Errorf("Expected %d skips, got %d", first.Posted, second.Skipped)
	}

	annual, err := handler.Store.Load(ctx, emp.ID, leave.TypeAnnual)
	if err != nil {
		t.Fatalf("Failed to load annual ledger: %v", err)
	}
	if got := ledger.Balance(annual).Float64(); got != 4.5 {
		t.Errorf("Expected balance unchanged at 4.5, got %v", got)
	}

	runs, err := handler.Store.ListAccrualRuns(ctx, 100)
	if err != nil {
		t.Fatalf("Failed to list accrual runs: %v", err)
	}
	if len(runs) != first.Posted {
		t.Errorf("Expected %d audit rows, got %d", first.Posted, len(runs))
	}
}

func TestPostAccruals_AnnualGrantInJanuary(t *testing.T) {
	// GIVEN: An employee who joined in November
	// WHEN: Posting accruals as of the following February
	// THEN: The sick policy's upfront grant lands on January 1st

	handler := setupTestHandler(t)
	ctx := context.Background()

	emp := ledger.Employee{
		ID:       "emp-jan",
		Name:     "January Test",
		Email:    "jan@example.com",
		JoinDate: leave.NewDate(2024, time.November, 15),
	}
	if err := handler.Store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to save employee: %v", err)
	}

	asOf := leave.NewDate(2025, time.February, 1)
	if _, err := postAccruals(ctx, handler.Store, policy.DefaultSet(), asOf); err != nil {
		t.Fatalf("postAccruals failed: %v", err)
	}

	sick, err := handler.Store.Load(ctx, emp.ID, leave.TypeSick)
	if err != nil {
		t.Fatalf("Failed to load sick ledger: %v", err)
	}
	if len(sick) != 1 {
		t.Fatalf("Expected 1 sick grant, got %d", len(sick))
	}
	if got := sick[0].Delta.Float64(); got != 6 {
		t.Errorf("Expected 6 days granted, got %v", got)
	}
	if !sick[0].EffectiveAt.Equal(leave.NewDate(2025, time.January, 1)) {
		t.Errorf("Expected grant on January 1, got %s", sick[0].EffectiveAt)
	}

	exists, err := handler.Store.Exists(ctx, "grant-emp-jan-sick-2025")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected yearly grant idempotency key to be recorded")
	}

	// December, January, and February monthly accruals for annual leave
	annual, err := handler.Store.Load(ctx, emp.ID, leave.TypeAnnual)
	if err != nil {
		t.Fatalf("Failed to load annual ledger: %v", err)
	}
	if got := ledger.Balance(annual).Float64(); got != 4.5 {
		t.Errorf("Expected annual balance 4.5, got %v", got)
	}
}

func TestAccrualKey_PeriodsDoNotCollide(t *testing.T) {
	// GIVEN: A monthly and a yearly schedule both posting on January 1st
	// WHEN: Deriving idempotency keys
	// THEN: The keys land in different namespaces

	jan1 := leave.NewDate(2025, time.January, 1)

	monthlyPeriod, monthlyKey := accrualKey("emp-1", leave.TypeAnnual, ledger.MonthlyAccrual{}, jan1)
	yearlyPeriod, yearlyKey := accrualKey("emp-1", leave.TypeAnnual, ledger.YearlyGrant{}, jan1)

	if monthlyPeriod != "2025-01" {
		t.Errorf("Expected monthly period 2025-01, got %s", monthlyPeriod)
	}
	if yearlyPeriod != "2025" {
		t.Errorf("Expected yearly period 2025, got %s", yearlyPeriod)
	}
	if monthlyKey == yearlyKey {
		t.Errorf("Expected distinct keys, both were %s", monthlyKey)
	}
	if monthlyKey != "accrual-emp-1-annual-2025-01" {
		t.Errorf("Unexpected monthly key %s", monthlyKey)
	}
	if yearlyKey != "grant-emp-1-annual-2025" {
		t.Errorf("Unexpected yearly key %s", yearlyKey)
	}
}

func TestPostAccruals_SkipsFutureJoiners(t *testing.T) {
	// GIVEN: An employee whose join date is after the as-of date
	// WHEN: Posting accruals
	// THEN: Nothing posts for them

	handler := setupTestHandler(t)
	ctx := context.Background()

	emp := ledger.Employee{
		ID:       "emp-future",
		Name:     "Future Test",
		Email:    "future@example.com",
		JoinDate: leave.NewDate(2025, time.September, 1),
	}
	if err := handler.Store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to save employee: %v", err)
	}

	summary, err := postAccruals(ctx, handler.Store, policy.DefaultSet(), leave.NewDate(2025, time.June, 1))
	if err != nil {
		t.Fatalf("postAccruals failed: %v", err)
	}
	if summary.Posted != 0 || summary.Skipped != 0 {
		t.Errorf("Expected nothing to post, got %+v", summary)
	}
}
