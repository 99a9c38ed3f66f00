/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Evaluation:
    EvaluateRequestDTO, DecisionDTO, ConflictDTO

  Request lifecycle:
    SubmitRequestDTO, RequestDTO, SubmitResponse, DecideRequestDTO,
    CancelRequestDTO

  Ledger:
    EntryDTO, CompOffGrantRequest, AdjustmentRequest

  Balance:
    BalanceSummaryDTO, TypeBalanceDTO

  Policy:
    PolicyDTO (wraps policy.PolicyJSON)

  Calendar:
    HolidayDTO

  Scheduler:
    AccrualRunDTO, AccrualRunSummaryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

CONVENTIONS:
  - snake_case JSON field names
  - Dates as "2006-01-02" strings
  - Day quantities cross the boundary as float64; decimals live inside

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - policy/factory.go: PolicyJSON type
*/
package api

import (
	"fmt"
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	JoinDate  string  `json:"join_date"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee. BirthDate is
// optional: without it birthday leave evaluates to missing_birth_date.
type CreateEmployeeRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	JoinDate  string `json:"join_date"`
	BirthDate string `json:"birth_date,omitempty"`
}

// =============================================================================
// EVALUATION TYPES
// =============================================================================

// EvaluateRequestDTO asks "what would this leave cost?" without writing
// anything.
type EvaluateRequestDTO struct {
	EmployeeID    string `json:"employee_id"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	HalfDay       bool   `json:"half_day,omitempty"`
	HalfDayPeriod string `json:"half_day_period,omitempty"`
}

// DecisionDTO is the evaluator's verdict: either an acceptance with the
// cost split, or a rejection with a machine-readable reason.
type DecisionDTO struct {
	Accepted        bool         `json:"accepted"`
	Reason          string       `json:"reason,omitempty"`
	DaysRequested   float64      `json:"days_requested"`
	FromBalance     float64      `json:"from_balance"`
	FromMonthlyRate float64      `json:"from_monthly_rate"`
	LossOfPay       float64      `json:"loss_of_pay"`
	Conflict        *ConflictDTO `json:"conflict,omitempty"`
}

// ConflictDTO identifies the existing leave that blocked a request.
type ConflictDTO struct {
	RequestID string `json:"request_id"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

// =============================================================================
// REQUEST LIFECYCLE TYPES
// =============================================================================

// SubmitRequestDTO creates a leave request.
type SubmitRequestDTO struct {
	EmployeeID    string `json:"employee_id"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	HalfDay       bool   `json:"half_day,omitempty"`
	HalfDayPeriod string `json:"half_day_period,omitempty"`
	Note          string `json:"note,omitempty"`
}

// RequestDTO represents a persisted leave request with its evaluated cost
// split.
type RequestDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	HalfDay         bool    `json:"half_day"`
	HalfDayPeriod   string  `json:"half_day_period,omitempty"`
	Status          string  `json:"status"`
	DaysCount       float64 `json:"days_count"`
	FromBalance     float64 `json:"from_balance"`
	FromMonthlyRate float64 `json:"from_monthly_rate"`
	LossOfPay       float64 `json:"loss_of_pay"`
	Note            string  `json:"note,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	DecidedBy       string  `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// SubmitResponse carries the decision and, when it was accepted, the
// persisted request. A rejected submission persists nothing.
type SubmitResponse struct {
	Decision DecisionDTO `json:"decision"`
	Request  *RequestDTO `json:"request,omitempty"`
}

// DecideResponse is returned by approve: the stored request after the
// decision plus the fresh evaluation that produced it.
type DecideResponse struct {
	Decision DecisionDTO `json:"decision"`
	Request  RequestDTO  `json:"request"`
}

// DecideRequestDTO carries reviewer identity for approve/reject.
type DecideRequestDTO struct {
	DecidedBy string `json:"decided_by"`
	Note      string `json:"note,omitempty"`
}

// CancelRequestDTO carries the canceller's identity.
type CancelRequestDTO struct {
	CancelledBy string `json:"cancelled_by"`
}

// =============================================================================
// LEDGER TYPES
// =============================================================================

// EntryDTO represents one signed ledger movement.
type EntryDTO struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	LeaveType      string  `json:"leave_type"`
	EffectiveAt    string  `json:"effective_at"`
	Delta          float64 `json:"delta"`
	Kind           string  `json:"kind"`
	ReferenceID    string  `json:"reference_id,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CompOffGrantRequest credits the compensatory-off counter for an extra
// day worked. Days defaults to 1 when omitted.
type CompOffGrantRequest struct {
	EmployeeID string  `json:"employee_id"`
	WorkedOn   string  `json:"worked_on"`
	Days       float64 `json:"days,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// AdjustmentRequest is a manual HR correction, signed either way.
type AdjustmentRequest struct {
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	Delta      float64 `json:"delta"`
	Reason     string  `json:"reason"`
}

// =============================================================================
// BALANCE TYPES
// =============================================================================

// BalanceSummaryDTO is the full balance picture for one employee.
type BalanceSummaryDTO struct {
	EmployeeID     string           `json:"employee_id"`
	AsOf           string           `json:"as_of"`
	Balances       []TypeBalanceDTO `json:"balances"`
	CompOffBalance float64          `json:"comp_off_balance"`
}

// TypeBalanceDTO is the balance for one leave type.
type TypeBalanceDTO struct {
	LeaveType   string  `json:"leave_type"`
	PolicyName  string  `json:"policy_name"`
	Balance     float64 `json:"balance"`
	MonthlyRate float64 `json:"monthly_rate"`
	AnnualDays  float64 `json:"annual_days"`
}

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyDTO represents a policy in API requests and responses. It shares
// the wire shape with policy.PolicyJSON.
type PolicyDTO struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	MonthlyRate float64 `json:"monthly_rate"`
	AnnualDays  float64 `json:"annual_days"`
}

// =============================================================================
// CALENDAR TYPES
// =============================================================================

// HolidayDTO represents a company holiday. The calendar is informational;
// day counting stays calendar-based.
type HolidayDTO struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// SCHEDULER TYPES
// =============================================================================

// AccrualRunDTO is one audited scheduler posting.
type AccrualRunDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	LeaveType   string  `json:"leave_type"`
	Period      string  `json:"period"`
	Granted     float64 `json:"granted"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// AccrualRunSummaryDTO reports one pass of the accrual poster.
type AccrualRunSummaryDTO struct {
	AsOf    string `json:"as_of"`
	Posted  int    `json:"posted"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// =============================================================================
// CONVERTERS - Domain types to DTOs
// =============================================================================

func toEmployeeDTO(emp ledger.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       string(emp.ID),
		Name:     emp.Name,
		Email:    emp.Email,
		JoinDate: emp.JoinDate.String(),
	}
	if emp.BirthDate != nil {
		dto.BirthDate = strPtr(emp.BirthDate.String())
	}
	return dto
}

func toDecisionDTO(d leave.Decision) DecisionDTO {
	dto := DecisionDTO{
		Accepted:        d.Accepted,
		Reason:          string(d.Reason),
		DaysRequested:   d.DaysRequested.Float64(),
		FromBalance:     d.FromBalance.Float64(),
		FromMonthlyRate: d.FromMonthlyRate.Float64(),
		LossOfPay:       d.LossOfPay.Float64(),
	}
	if d.Conflict != nil {
		dto.Conflict = &ConflictDTO{
			RequestID: d.Conflict.ID,
			LeaveType: string(d.Conflict.Type),
			StartDate: d.Conflict.StartDate.String(),
			EndDate:   d.Conflict.EndDate.String(),
			Status:    string(d.Conflict.Status),
		}
	}
	return dto
}

func toRequestDTO(rec ledger.RequestRecord) RequestDTO {
	dto := RequestDTO{
		ID:              rec.ID,
		EmployeeID:      string(rec.EmployeeID),
		LeaveType:       string(rec.Type),
		StartDate:       rec.StartDate.String(),
		EndDate:         rec.EndDate.String(),
		HalfDay:         rec.HalfDay,
		HalfDayPeriod:   string(rec.HalfDayPeriod),
		Status:          string(rec.Status),
		DaysCount:       rec.DaysCount.Float64(),
		FromBalance:     rec.FromBalance.Float64(),
		FromMonthlyRate: rec.FromMonthlyRate.Float64(),
		LossOfPay:       rec.LossOfPay.Float64(),
		Note:            rec.Note,
		RejectionReason: rec.RejectionReason,
		DecidedBy:       rec.DecidedBy,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.DecidedAt != nil {
		dto.DecidedAt = strPtr(rec.DecidedAt.Format(time.RFC3339))
	}
	return dto
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:             string(e.ID),
		EmployeeID:     string(e.EmployeeID),
		LeaveType:      string(e.Type),
		EffectiveAt:    e.EffectiveAt.String(),
		Delta:          e.Delta.Float64(),
		Kind:           string(e.Kind),
		ReferenceID:    e.ReferenceID,
		Reason:         e.Reason,
		IdempotencyKey: e.IdempotencyKey,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
}

func toPolicyDTO(p policy.Policy) PolicyDTO {
	return PolicyDTO{
		Key:         string(p.Key),
		Name:        p.Name,
		MonthlyRate: p.MonthlyRate,
		AnnualDays:  p.AnnualDays,
	}
}

func toHolidayDTO(h sqlite.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		Date:      h.Date.String(),
		Name:      h.Name,
		Recurring: h.Recurring,
	}
}

func toAccrualRunDTO(r sqlite.AccrualRun) AccrualRunDTO {
	dto := AccrualRunDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		LeaveType:  string(r.Type),
		Period:     r.Period,
		Granted:    r.Granted.Float64(),
		Status:     r.Status,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = strPtr(r.CompletedAt.Format(time.RFC3339))
	}
	return dto
}

// =============================================================================
// CONVERTERS - DTOs to domain types
// =============================================================================

// toRequest parses the wire fields into an evaluator input. Date parse
// failures and bad half-day periods are client errors.
func toRequest(employeeID, leaveType, startDate, endDate string, halfDay bool, halfDayPeriod string) (leave.Request, error) {
	start, err := leave.ParseDate(startDate)
	if err != nil {
		return leave.Request{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := leave.ParseDate(endDate)
	if err != nil {
		return leave.Request{}, fmt.Errorf("end_date: %w", err)
	}
	period := leave.HalfDayPeriod(halfDayPeriod)
	if halfDayPeriod != "" && period != leave.FirstHalf && period != leave.SecondHalf {
		return leave.Request{}, fmt.Errorf("half_day_period: unknown value %q", halfDayPeriod)
	}
	return leave.Request{
		EmployeeID:    leave.EmployeeID(employeeID),
		Type:          leave.TypeKey(leaveType),
		StartDate:     start,
		EndDate:       end,
		HalfDay:       halfDay,
		HalfDayPeriod: period,
	}, nil
}

func (d EvaluateRequestDTO) toRequest() (leave.Request, error) {
	return toRequest(d.EmployeeID, d.LeaveType, d.StartDate, d.EndDate, d.HalfDay, d.HalfDayPeriod)
}

func (d SubmitRequestDTO) toRequest() (leave.Request, error) {
	return toRequest(d.EmployeeID, d.LeaveType, d.StartDate, d.EndDate, d.HalfDay, d.HalfDayPeriod)
}

func strPtr(s string) *string {
	return &s
}
