/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP concerns (decoding,
  status codes, DTO mapping) and delegates the rules to ledger.RequestService
  and leave.Evaluate. No leave semantics live here.

HANDLER GROUPS:
  Health:      Health
  Employees:   ListEmployees, CreateEmployee, GetEmployee, GetBalances,
               GetLedger, ListEmployeeRequests
  Evaluation:  EvaluateRequest (pure what-if, writes nothing)
  Requests:    SubmitRequest, ListRequests, GetRequest, ApproveRequest,
               RejectRequest, CancelRequest
  Ledger:      GrantCompOff, CreateAdjustment, GetAllEntries
  Policies:    ListPolicies, CreatePolicy, GetPolicy, DeletePolicy
  Holidays:    ListHolidays, CreateHoliday, DeleteHoliday
  Accruals:    ListAccrualRuns, RunAccruals
  Scenarios:   see scenarios.go
  Reports:     see reports.go

ERROR MAPPING:
  not found sentinels            -> 404
  lifecycle/idempotency conflict -> 409
  invalid range, unknown type    -> 400
  anything else                  -> 500

POLICY RELOADS:
  The in-memory policy set and the request service are swapped together
  under h.mu whenever policies change, so in-flight requests keep the set
  they started with.

SEE ALSO:
  - dto.go: Request/response types
  - server.go: Route definitions
  - ledger/requests.go: The transactional lifecycle behind these handlers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
	"github.com/warp/leave-engine/store/sqlite"
)

// Handler holds the dependencies for all API handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *policy.Factory

	mu              sync.RWMutex
	policies        policy.Set
	service         *ledger.RequestService
	currentScenario string
}

// NewHandler creates a handler backed by the given store, starting from
// the default policy catalog. Call LoadPolicies to pick up stored ones.
func NewHandler(store *sqlite.Store) *Handler {
	set := policy.DefaultSet()
	return &Handler{
		Store:    store,
		Factory:  policy.NewFactory(),
		policies: set,
		service:  ledger.NewRequestService(store, set),
	}
}

// LoadPolicies primes the in-memory policy set from the store. A fresh
// database gets the default catalog persisted.
func (h *Handler) LoadPolicies(ctx context.Context) error {
	records, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return h.seedDefaultPolicies(ctx)
	}

	set := make(policy.Set, len(records))
	for _, rec := range records {
		p, err := h.Factory.ParsePolicy(rec.ConfigJSON)
		if err != nil {
			return fmt.Errorf("stored policy %s: %w", rec.Key, err)
		}
		set.Put(p)
	}
	h.swapPolicies(set)
	return nil
}

func (h *Handler) seedDefaultPolicies(ctx context.Context) error {
	set := policy.DefaultSet()
	for _, key := range set.Keys() {
		if err := h.Store.SavePolicy(ctx, policyRecord(set[key])); err != nil {
			return err
		}
	}
	h.swapPolicies(set)
	return nil
}

func policyRecord(p policy.Policy) sqlite.PolicyRecord {
	return sqlite.PolicyRecord{
		Key:        p.Key,
		Name:       p.Name,
		ConfigJSON: policy.ToJSON(p),
	}
}

// Service returns the request service bound to the current policy set.
func (h *Handler) Service() *ledger.RequestService {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.service
}

// PolicySet returns the current policy set. Treat it as read-only;
// mutations go through putPolicy/removePolicy, which swap a fresh copy.
func (h *Handler) PolicySet() policy.Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policies
}

func (h *Handler) swapPolicies(set policy.Set) {
	h.mu.Lock()
	h.policies = set
	h.service = ledger.NewRequestService(h.Store, set)
	h.mu.Unlock()
}

func (h *Handler) putPolicy(p policy.Policy) {
	h.mu.Lock()
	set := clonePolicySet(h.policies)
	set.Put(p)
	h.policies = set
	h.service = ledger.NewRequestService(h.Store, set)
	h.mu.Unlock()
}

func (h *Handler) removePolicy(key leave.TypeKey) {
	h.mu.Lock()
	set := clonePolicySet(h.policies)
	delete(set, key)
	h.policies = set
	h.service = ledger.NewRequestService(h.Store, set)
	h.mu.Unlock()
}

func clonePolicySet(set policy.Set) policy.Set {
	out := make(policy.Set, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

// allTypeKeys is the full enum in display order, independent of which
// types currently have a policy.
var allTypeKeys = []leave.TypeKey{
	leave.TypeAnnual, leave.TypeSick, leave.TypeCasual,
	leave.TypeCompensatory, leave.TypeBirthday, leave.TypeOther,
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or replaces an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	joinDate, err := leave.ParseDate(req.JoinDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid join_date", err)
		return
	}

	emp := ledger.Employee{
		ID:       leave.EmployeeID(req.ID),
		Name:     req.Name,
		Email:    req.Email,
		JoinDate: joinDate,
	}
	if req.BirthDate != "" {
		birth, err := leave.ParseDate(req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birth_date", err)
			return
		}
		emp.BirthDate = &birth
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee by ID.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetBalances returns the per-type balances plus the comp-off counter for
// one employee. Birthday leave carries no balance and is omitted.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		writeServiceError(w, "Failed to load employee", err)
		return
	}

	set := h.PolicySet()
	summary := BalanceSummaryDTO{
		EmployeeID: string(id),
		AsOf:       leave.Today().String(),
		Balances:   []TypeBalanceDTO{},
	}

	for _, key := range set.Keys() {
		p := set[key]
		entries, err := h.Store.Load(ctx, id, key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
			return
		}
		if key == leave.TypeCompensatory {
			summary.CompOffBalance = ledger.CompOffAvailable(entries).Float64()
			continue
		}
		if !key.Ordinary() {
			continue
		}
		summary.Balances = append(summary.Balances, TypeBalanceDTO{
			LeaveType:   string(key),
			PolicyName:  p.Name,
			Balance:     ledger.Balance(entries).Float64(),
			MonthlyRate: p.MonthlyRate,
			AnnualDays:  p.AnnualDays,
		})
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetLedger returns an employee's ledger entries, optionally filtered by
// leave type and effective date range.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		writeServiceError(w, "Failed to load employee", err)
		return
	}

	keys := allTypeKeys
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		key := leave.TypeKey(typeParam)
		if !key.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown leave type", nil)
			return
		}
		keys = []leave.TypeKey{key}
	}

	from := leave.NewDate(1, time.January, 1)
	to := leave.NewDate(9999, time.December, 31)
	ranged := false
	if q := r.URL.Query().Get("from"); q != "" {
		d, err := leave.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		from, ranged = d, true
	}
	if q := r.URL.Query().Get("to"); q != "" {
		d, err := leave.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		to, ranged = d, true
	}

	var entries []ledger.Entry
	for _, key := range keys {
		var batch []ledger.Entry
		var err error
		if ranged {
			batch, err = h.Store.LoadRange(ctx, id, key, from, to)
		} else {
			batch, err = h.Store.Load(ctx, id, key)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
			return
		}
		entries = append(entries, batch...)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].EffectiveAt.Equal(entries[j].EffectiveAt) {
			return entries[i].EffectiveAt.Before(entries[j].EffectiveAt)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployeeRequests returns an employee's requests, newest first.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		writeServiceError(w, "Failed to load employee", err)
		return
	}

	records, err := h.Store.ListRequests(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(records))
}

// =============================================================================
// EVALUATION HANDLER
// =============================================================================

// EvaluateRequest runs the cost evaluator without persisting anything.
// Rejections are a 200 with accepted=false; only malformed input and
// unknown employees are HTTP errors.
func (h *Handler) EvaluateRequest(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	domainReq, err := req.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	decision, err := h.Service().Evaluate(r.Context(), domainReq)
	if err != nil {
		writeServiceError(w, "Failed to evaluate request", err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// =============================================================================
// REQUEST LIFECYCLE HANDLERS
// =============================================================================

// SubmitRequest evaluates and, when accepted, persists a pending request.
// 201 with the stored request on acceptance, 200 with just the decision
// on rejection.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	domainReq, err := req.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	rec, decision, err := h.Service().Submit(r.Context(), domainReq, req.Note)
	if err != nil {
		writeServiceError(w, "Failed to submit request", err)
		return
	}

	resp := SubmitResponse{Decision: toDecisionDTO(decision)}
	status := http.StatusOK
	if rec != nil {
		dto := toRequestDTO(*rec)
		resp.Request = &dto
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// ListRequests returns requests in a given status, newest first.
// Defaults to pending, the approval queue.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	status := leave.StatusPending
	if q := r.URL.Query().Get("status"); q != "" {
		status = leave.LeaveStatus(q)
		switch status {
		case leave.StatusPending, leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled:
		default:
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
	}

	records, err := h.Store.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(records))
}

// GetRequest returns a single request by ID.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to load request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*rec))
}

// ApproveRequest re-evaluates a pending request and posts the consumption
// when it still passes. The response carries the fresh decision either
// way; a request that no longer passes comes back rejected.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var req DecideRequestDTO
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, decision, err := h.Service().Approve(r.Context(), chi.URLParam(r, "id"), req.DecidedBy)
	if err != nil {
		writeServiceError(w, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, DecideResponse{
		Decision: toDecisionDTO(decision),
		Request:  toRequestDTO(*rec),
	})
}

// RejectRequest turns down a pending request with a reviewer note.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var req DecideRequestDTO
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Service().Reject(r.Context(), chi.URLParam(r, "id"), req.DecidedBy, req.Note)
	if err != nil {
		writeServiceError(w, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*rec))
}

// CancelRequest withdraws a pending request, or reverses an approved one
// by posting compensating ledger entries.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	var req CancelRequestDTO
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Service().Cancel(r.Context(), chi.URLParam(r, "id"), req.CancelledBy)
	if err != nil {
		writeServiceError(w, "Failed to cancel request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*rec))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GrantCompOff credits the comp-off counter for an extra day worked.
func (h *Handler) GrantCompOff(w http.ResponseWriter, r *http.Request) {
	var req CompOffGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	workedOn, err := leave.ParseDate(req.WorkedOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid worked_on date", err)
		return
	}
	days := req.Days
	if days == 0 {
		days = 1
	}
	if days < 0 {
		writeError(w, http.StatusBadRequest, "days must be positive", nil)
		return
	}

	entry, err := h.Service().GrantCompOff(r.Context(), leave.EmployeeID(req.EmployeeID), workedOn, leave.NewDays(days), req.Reason)
	if err != nil {
		writeServiceError(w, "Failed to grant comp-off", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// CreateAdjustment posts a manual correction to one type's balance.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero", nil)
		return
	}

	entry, err := h.Service().Adjust(r.Context(), leave.EmployeeID(req.EmployeeID), leave.TypeKey(req.LeaveType), leave.NewDays(req.Delta), req.Reason)
	if err != nil {
		writeServiceError(w, "Failed to post adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// GetAllEntries returns the most recent ledger entries across all
// employees. Admin view for debugging and audits.
func (h *Handler) GetAllEntries(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	entries, err := h.Store.GetAllEntries(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns the active policy catalog.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	set := h.PolicySet()
	dtos := make([]PolicyDTO, 0, len(set))
	for _, key := range set.Keys() {
		dtos = append(dtos, toPolicyDTO(set[key]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy upserts the policy for one leave type and swaps it into
// the running evaluator.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Factory.FromJSON(policy.PolicyJSON{
		Key:         req.Key,
		Name:        req.Name,
		MonthlyRate: req.MonthlyRate,
		AnnualDays:  req.AnnualDays,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}

	if err := h.Store.SavePolicy(r.Context(), policyRecord(p)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}

	h.putPolicy(p)
	writeJSON(w, http.StatusCreated, toPolicyDTO(p))
}

// GetPolicy returns the policy for one leave type.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	key := leave.TypeKey(chi.URLParam(r, "key"))

	p, ok := h.PolicySet().Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "Policy not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(p))
}

// DeletePolicy removes a type's policy. The type stays requestable; it
// just stops accruing and evaluates with a zero monthly rate.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	key := leave.TypeKey(chi.URLParam(r, "key"))

	if _, ok := h.PolicySet().Get(key); !ok {
		writeError(w, http.StatusNotFound, "Policy not found", nil)
		return
	}
	if err := h.Store.DeletePolicy(r.Context(), key); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete policy", err)
		return
	}

	h.removePolicy(key)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holiday calendar for a year, with recurring
// holidays projected onto it.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = n
	}

	holidays, err := h.Store.ListHolidays(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, day := range holidays {
		dtos = append(dtos, toHolidayDTO(day))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to the calendar.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	date, err := leave.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	day := sqlite.Holiday{
		ID:        req.ID,
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}
	if day.ID == "" {
		day.ID = "hol-" + uuid.NewString()
	}

	if err := h.Store.SaveHoliday(r.Context(), day); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(day))
}

// DeleteHoliday removes a holiday by ID.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCRUAL HANDLERS
// =============================================================================

// ListAccrualRuns returns the scheduler's audit trail, newest first.
func (h *Handler) ListAccrualRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListAccrualRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accrual runs", err)
		return
	}

	dtos := make([]AccrualRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toAccrualRunDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunAccruals posts any accruals due through today. Safe to call
// repeatedly; already-posted periods are skipped by idempotency key.
func (h *Handler) RunAccruals(w http.ResponseWriter, r *http.Request) {
	asOf := leave.Today()
	summary, err := postAccruals(r.Context(), h.Store, h.PolicySet(), asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Accrual run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, AccrualRunSummaryDTO{
		AsOf:    asOf.String(),
		Posted:  summary.Posted,
		Skipped: summary.Skipped,
		Failed:  summary.Failed,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func toRequestDTOs(records []ledger.RequestRecord) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRequestDTO(rec))
	}
	return dtos
}

// decodeOptional decodes a JSON body, treating an empty body as the zero
// value. Approve and cancel work without one.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusForError(err), message, err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrEmployeeNotFound),
		errors.Is(err, ledger.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotPending),
		errors.Is(err, ledger.ErrNotCancellable),
		errors.Is(err, ledger.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	case errors.Is(err, leave.ErrInvalidRange),
		errors.Is(err, leave.ErrUnknownLeaveType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
