/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario seeds employees, policies,
	ledger grants, and requests that demonstrate one evaluator behavior.

AVAILABLE SCENARIOS:

	balance-covers:     Banked balance fully covers the request
	balance-plus-rate:  Split across balance, monthly rate, and LOP
	all-lop:            Non-accruing type, everything lands on LOP
	birthday:           Birthday leave on the recorded birth date
	birthday-mismatch:  Birthday leave away from the birth date
	overlap:            Approved leave blocking an overlapping request

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed the default policy catalog (loader may override a policy)
 3. Create employees with ledger grants
 4. Submit and decide requests through the real service

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "balance-plus-rate"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: Scenario route definitions
  - ledger/requests.go: The lifecycle the loaders drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "balance-covers",
		Name:        "Balance Covers Request",
		Description: "5 banked days against a 4-day request: paid entirely from balance",
		Category:    "allocation",
	},
	{
		ID:          "balance-plus-rate",
		Name:        "Balance Plus Monthly Rate",
		Description: "1 banked day, 2/month accrual, 4-day request: 1 from balance, 2 from rate, 1 unpaid",
		Category:    "allocation",
	},
	{
		ID:          "all-lop",
		Name:        "Everything Unpaid",
		Description: "Non-accruing leave type with no balance: the whole request is loss of pay",
		Category:    "allocation",
	},
	{
		ID:          "birthday",
		Name:        "Birthday Leave",
		Description: "Single full day on the recorded birth date, approved at zero cost",
		Category:    "special",
	},
	{
		ID:          "birthday-mismatch",
		Name:        "Birthday Mismatch",
		Description: "Submit birthday leave away from the birth date to see a not_birthday rejection",
		Category:    "special",
	},
	{
		ID:          "overlap",
		Name:        "Overlapping Requests",
		Description: "Approved June leave on file; overlapping submissions reject as duplicate_leave",
		Category:    "overlap",
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the scenario catalog.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario ID, empty
// when none has been loaded since the last reset.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]string{"scenario": current})
}

// LoadScenario wipes the database and loads one scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.seedDefaultPolicies(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed policies", err)
		return
	}
	h.setCurrentScenario("")

	var err error
	switch req.ScenarioID {
	case "balance-covers":
		err = h.loadBalanceCoversScenario(ctx)
	case "balance-plus-rate":
		err = h.loadBalancePlusRateScenario(ctx)
	case "all-lop":
		err = h.loadAllLopScenario(ctx)
	case "birthday":
		err = h.loadBirthdayScenario(ctx)
	case "birthday-mismatch":
		err = h.loadBirthdayMismatchScenario(ctx)
	case "overlap":
		err = h.loadOverlapScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setCurrentScenario(req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase wipes everything and restores the default policies.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.seedDefaultPolicies(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed policies", err)
		return
	}
	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadBalanceCoversScenario: 5 banked annual days, 4-day request. The
// whole request pays from balance: 4 / 0 / 0.
func (h *Handler) loadBalanceCoversScenario(ctx context.Context) error {
	year := time.Now().Year()

	emp := ledger.Employee{
		ID:       "emp-101",
		Name:     "Priya Sharma",
		Email:    "priya@example.com",
		JoinDate: leave.NewDate(year, time.January, 5),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	grant := scenarioGrant(emp.ID, leave.TypeAnnual, leave.NewDate(year, time.February, 1), 5, "balance-covers-grant")
	if err := h.Store.Append(ctx, grant); err != nil {
		return err
	}

	return h.submitScenarioRequest(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeAnnual,
		StartDate:  leave.NewDate(year, time.June, 10),
		EndDate:    leave.NewDate(year, time.June, 13),
	}, "Family trip")
}

// loadBalancePlusRateScenario: 1 banked day and a 2 days/month annual
// policy against a 4-day request. Split 1 / 2 / 1.
func (h *Handler) loadBalancePlusRateScenario(ctx context.Context) error {
	year := time.Now().Year()

	if err := h.overridePolicy(ctx, policy.Policy{
		Key:         leave.TypeAnnual,
		Name:        "Annual Leave",
		MonthlyRate: 2,
	}); err != nil {
		return err
	}

	emp := ledger.Employee{
		ID:       "emp-102",
		Name:     "Rahul Verma",
		Email:    "rahul@example.com",
		JoinDate: leave.NewDate(year-1, time.July, 1),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	grant := scenarioGrant(emp.ID, leave.TypeAnnual, leave.NewDate(year, time.February, 1), 1, "balance-plus-rate-grant")
	if err := h.Store.Append(ctx, grant); err != nil {
		return err
	}

	return h.submitScenarioRequest(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeAnnual,
		StartDate:  leave.NewDate(year, time.June, 10),
		EndDate:    leave.NewDate(year, time.June, 13),
	}, "Wedding week")
}

// loadAllLopScenario: a non-accruing type with nothing banked. The whole
// 3-day request is advisory loss of pay, still accepted.
func (h *Handler) loadAllLopScenario(ctx context.Context) error {
	year := time.Now().Year()

	emp := ledger.Employee{
		ID:       "emp-103",
		Name:     "Ananya Iyer",
		Email:    "ananya@example.com",
		JoinDate: leave.NewDate(year, time.March, 1),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	return h.submitScenarioRequest(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeOther,
		StartDate:  leave.NewDate(year, time.June, 10),
		EndDate:    leave.NewDate(year, time.June, 12),
	}, "Relocation")
}

// loadBirthdayScenario: birthday leave on the recorded birth date,
// approved with all buckets zero and no ledger movement.
func (h *Handler) loadBirthdayScenario(ctx context.Context) error {
	year := time.Now().Year()
	birth := leave.NewDate(1993, time.June, 15)

	emp := ledger.Employee{
		ID:        "emp-104",
		Name:      "Vikram Rao",
		Email:     "vikram@example.com",
		JoinDate:  leave.NewDate(year-2, time.April, 1),
		BirthDate: &birth,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	rec, decision, err := h.Service().Submit(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeBirthday,
		StartDate:  leave.NewDate(year, time.June, 15),
		EndDate:    leave.NewDate(year, time.June, 15),
	}, "Birthday off")
	if err != nil {
		return err
	}
	if !decision.Accepted || rec == nil {
		return fmt.Errorf("birthday request rejected: %s", decision.Reason)
	}

	_, _, err = h.Service().Approve(ctx, rec.ID, "hr-demo")
	return err
}

// loadBirthdayMismatchScenario seeds the employee and balances only; the
// demo is submitting birthday leave on any other date and reading the
// not_birthday rejection.
func (h *Handler) loadBirthdayMismatchScenario(ctx context.Context) error {
	year := time.Now().Year()
	birth := leave.NewDate(1990, time.March, 20)

	emp := ledger.Employee{
		ID:        "emp-105",
		Name:      "Meera Krishnan",
		Email:     "meera@example.com",
		JoinDate:  leave.NewDate(year-1, time.January, 10),
		BirthDate: &birth,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	grant := scenarioGrant(emp.ID, leave.TypeAnnual, leave.NewDate(year, time.February, 1), 3, "birthday-mismatch-grant")
	return h.Store.Append(ctx, grant)
}

// loadOverlapScenario: an approved June block plus a pending request.
// Submitting anything that touches June 10-12 rejects as duplicate_leave
// with the approved record attached.
func (h *Handler) loadOverlapScenario(ctx context.Context) error {
	year := time.Now().Year()

	emp := ledger.Employee{
		ID:       "emp-106",
		Name:     "Arjun Patel",
		Email:    "arjun@example.com",
		JoinDate: leave.NewDate(year-1, time.October, 1),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	grant := scenarioGrant(emp.ID, leave.TypeAnnual, leave.NewDate(year, time.February, 1), 5, "overlap-grant")
	if err := h.Store.Append(ctx, grant); err != nil {
		return err
	}

	rec, decision, err := h.Service().Submit(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeAnnual,
		StartDate:  leave.NewDate(year, time.June, 10),
		EndDate:    leave.NewDate(year, time.June, 12),
	}, "Conference")
	if err != nil {
		return err
	}
	if !decision.Accepted || rec == nil {
		return fmt.Errorf("overlap seed rejected: %s", decision.Reason)
	}
	if _, _, err := h.Service().Approve(ctx, rec.ID, "hr-demo"); err != nil {
		return err
	}

	// A second, non-overlapping pending request for texture.
	return h.submitScenarioRequest(ctx, leave.Request{
		EmployeeID: emp.ID,
		Type:       leave.TypeCasual,
		StartDate:  leave.NewDate(year, time.June, 20),
		EndDate:    leave.NewDate(year, time.June, 21),
	}, "Errands")
}

// =============================================================================
// LOADER HELPERS
// =============================================================================

func (h *Handler) submitScenarioRequest(ctx context.Context, req leave.Request, note string) error {
	rec, decision, err := h.Service().Submit(ctx, req, note)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("scenario request rejected: %s", decision.Reason)
	}
	return nil
}

// overridePolicy persists a scenario-specific policy and swaps it into
// the running evaluator.
func (h *Handler) overridePolicy(ctx context.Context, p policy.Policy) error {
	if err := h.Store.SavePolicy(ctx, policyRecord(p)); err != nil {
		return err
	}
	h.putPolicy(p)
	return nil
}

func scenarioGrant(empID leave.EmployeeID, typeKey leave.TypeKey, at leave.Date, days float64, key string) ledger.Entry {
	return ledger.Entry{
		ID:             ledger.EntryID("ent-" + uuid.NewString()),
		EmployeeID:     empID,
		Type:           typeKey,
		EffectiveAt:    at,
		Delta:          leave.NewDays(days),
		Kind:           ledger.KindGrant,
		Reason:         "Opening balance",
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC(),
	}
}
