/*
context.go - Evaluation snapshot assembly

PURPOSE:
  Builds the leave.Context the evaluator consumes, from persisted state:
  the requested type's ledger balance, the policy's monthly rate, the
  month's already-approved paid days, the compensatory counter, the
  employee's birth date, and the active leave list.

  Callers that re-evaluate an existing request pass its ID as the
  exclusion, so the record does not collide with itself. Everything is
  read through a ContextSource; run inside a transaction, the snapshot
  and the subsequent write are atomic.
*/
package ledger

import (
	"context"
	"fmt"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// BuildContext assembles the evaluation snapshot for one request.
// excludeRequestID removes that record from the active leave list; pass
// the empty string for a fresh submission.
func BuildContext(ctx context.Context, src ContextSource, req leave.Request, policies policy.Set, excludeRequestID string) (leave.Context, error) {
	emp, err := src.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return leave.Context{}, fmt.Errorf("build context for %s: %w", req.EmployeeID, err)
	}

	entries, err := src.Load(ctx, req.EmployeeID, req.Type)
	if err != nil {
		return leave.Context{}, fmt.Errorf("load %s ledger for %s: %w", req.Type, req.EmployeeID, err)
	}

	compEntries, err := src.Load(ctx, req.EmployeeID, leave.TypeCompensatory)
	if err != nil {
		return leave.Context{}, fmt.Errorf("load comp-off ledger for %s: %w", req.EmployeeID, err)
	}

	actives, err := src.ActiveRequests(ctx, req.EmployeeID)
	if err != nil {
		return leave.Context{}, fmt.Errorf("load active requests for %s: %w", req.EmployeeID, err)
	}
	activeLeaves := make([]leave.ActiveLeave, 0, len(actives))
	for _, rec := range actives {
		if rec.ID == excludeRequestID {
			continue
		}
		activeLeaves = append(activeLeaves, rec.ActiveLeave())
	}

	monthRecords, err := src.ApprovedInMonth(ctx, req.EmployeeID, req.StartDate.Year(), req.StartDate.Month())
	if err != nil {
		return leave.Context{}, fmt.Errorf("load month usage for %s: %w", req.EmployeeID, err)
	}

	var birth *leave.Date
	if emp.BirthDate != nil {
		b := *emp.BirthDate
		birth = &b
	}

	return leave.Context{
		RemainingBalance: Balance(entries),
		MonthlyRate:      policies.MonthlyRate(req.Type),
		MonthNonLopTaken: MonthNonLopTaken(monthRecords, req.StartDate),
		CompOffBalance:   CompOffAvailable(compEntries),
		BirthDate:        birth,
		ActiveLeaves:     activeLeaves,
	}, nil
}
