/*
requests.go - The transactional leave request lifecycle

PURPOSE:
  Drives a request from submission through decision, with the evaluation
  core re-run inside the same transaction as every write.

LIFECYCLE:
  Submit  -> evaluate on a fresh snapshot; persist pending with the
             advisory split, or return the rejection unpersisted.
  Approve -> re-evaluate on a fresh snapshot (never the cached submit
             result). A request that no longer passes flips to rejected
             with the fresh reason. One that passes flips to approved and
             appends the ledger movements: a consumption for the paid
             portion of ordinary leave, a comp-off spend for compensatory
             leave, nothing for birthday leave.
  Reject  -> reviewer turns a pending request down.
  Cancel  -> pending is withdrawn outright; approved is withdrawn with
             reversal entries giving back what approval consumed.

  Loss-of-pay days never touch the ledger. They stay on the request
  record, where payroll reads them.

IDEMPOTENCY:
  Entry keys derive from the request ID, so a replayed approval or
  cancellation cannot post twice even before the status check catches it.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// RequestService runs the request lifecycle over a transactional store.
type RequestService struct {
	store    TxRunner
	policies policy.Set
}

func NewRequestService(store TxRunner, policies policy.Set) *RequestService {
	return &RequestService{store: store, policies: policies}
}

// Evaluate runs a what-if evaluation on current state without writing
// anything.
func (s *RequestService) Evaluate(ctx context.Context, req leave.Request) (leave.Decision, error) {
	snapshot, err := BuildContext(ctx, s.store, req, s.policies, "")
	if err != nil {
		return leave.Decision{}, err
	}
	return leave.Evaluate(req, snapshot)
}

// Submit evaluates the request and persists it as pending when accepted.
// A rejected request is returned as its decision with no record written.
func (s *RequestService) Submit(ctx context.Context, req leave.Request, note string) (*RequestRecord, leave.Decision, error) {
	var rec *RequestRecord
	var decision leave.Decision

	err := s.store.WithTx(ctx, func(tx Tx) error {
		snapshot, err := BuildContext(ctx, tx, req, s.policies, "")
		if err != nil {
			return err
		}
		decision, err = leave.Evaluate(req, snapshot)
		if err != nil {
			return err
		}
		if !decision.Accepted {
			return nil
		}

		now := time.Now().UTC()
		rec = &RequestRecord{
			ID:              "req-" + uuid.NewString(),
			EmployeeID:      req.EmployeeID,
			Type:            req.Type,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			HalfDay:         req.HalfDay,
			HalfDayPeriod:   req.HalfDayPeriod,
			Status:          leave.StatusPending,
			DaysCount:       decision.DaysRequested,
			FromBalance:     decision.FromBalance,
			FromMonthlyRate: decision.FromMonthlyRate,
			LossOfPay:       decision.LossOfPay,
			Note:            note,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.SaveRequest(ctx, *rec)
	})
	if err != nil {
		return nil, leave.Decision{}, err
	}
	return rec, decision, nil
}

// Approve re-evaluates a pending request and settles it. The returned
// decision is the fresh one; when circumstances changed since submission
// the request comes back rejected, not approved on stale numbers.
func (s *RequestService) Approve(ctx context.Context, requestID, decidedBy string) (*RequestRecord, leave.Decision, error) {
	var rec *RequestRecord
	var decision leave.Decision

	err := s.store.WithTx(ctx, func(tx Tx) error {
		current, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != leave.StatusPending {
			return fmt.Errorf("%w: %s is %s", ErrNotPending, requestID, current.Status)
		}

		req := current.Request()
		snapshot, err := BuildContext(ctx, tx, req, s.policies, current.ID)
		if err != nil {
			return err
		}
		decision, err = leave.Evaluate(req, snapshot)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		current.DecidedBy = decidedBy
		current.DecidedAt = &now
		current.UpdatedAt = now

		if !decision.Accepted {
			current.Status = leave.StatusRejected
			current.RejectionReason = string(decision.Reason)
			rec = current
			return tx.SaveRequest(ctx, *current)
		}

		current.Status = leave.StatusApproved
		current.DaysCount = decision.DaysRequested
		current.FromBalance = decision.FromBalance
		current.FromMonthlyRate = decision.FromMonthlyRate
		current.LossOfPay = decision.LossOfPay
		rec = current

		if err := tx.SaveRequest(ctx, *current); err != nil {
			return err
		}
		if entries := approvalEntries(*current, now); len(entries) > 0 {
			return tx.AppendBatch(ctx, entries)
		}
		return nil
	})
	if err != nil {
		return nil, leave.Decision{}, err
	}
	return rec, decision, nil
}

// Reject turns a pending request down with a reviewer note.
func (s *RequestService) Reject(ctx context.Context, requestID, decidedBy, note string) (*RequestRecord, error) {
	var rec *RequestRecord

	err := s.store.WithTx(ctx, func(tx Tx) error {
		current, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != leave.StatusPending {
			return fmt.Errorf("%w: %s is %s", ErrNotPending, requestID, current.Status)
		}

		now := time.Now().UTC()
		current.Status = leave.StatusRejected
		current.DecidedBy = decidedBy
		current.DecidedAt = &now
		current.UpdatedAt = now
		if note != "" {
			current.Note = note
		}
		rec = current
		return tx.SaveRequest(ctx, *current)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Cancel withdraws a request. Cancelling an approved request reverses the
// ledger movements approval made; history stays append-only.
func (s *RequestService) Cancel(ctx context.Context, requestID, cancelledBy string) (*RequestRecord, error) {
	var rec *RequestRecord

	err := s.store.WithTx(ctx, func(tx Tx) error {
		current, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		switch current.Status {
		case leave.StatusPending:
			// Nothing was posted for a pending request; just flip it.
		case leave.StatusApproved:
			if entries := reversalEntries(*current, cancelledBy, now); len(entries) > 0 {
				if err := tx.AppendBatch(ctx, entries); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s is %s", ErrNotCancellable, requestID, current.Status)
		}

		current.Status = leave.StatusCancelled
		current.DecidedBy = cancelledBy
		current.DecidedAt = &now
		current.UpdatedAt = now
		rec = current
		return tx.SaveRequest(ctx, *current)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GrantCompOff credits the compensatory counter for an extra day worked.
// One grant per employee per worked date; a repeat is a duplicate key.
func (s *RequestService) GrantCompOff(ctx context.Context, employeeID leave.EmployeeID, workedOn leave.Date, days leave.Days, reason string) (*Entry, error) {
	if !days.IsPositive() {
		return nil, fmt.Errorf("comp-off grant must be positive, got %s", days)
	}
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Extra day worked"
	}

	entry := Entry{
		ID:             EntryID("ent-" + uuid.NewString()),
		EmployeeID:     employeeID,
		Type:           leave.TypeCompensatory,
		EffectiveAt:    workedOn,
		Delta:          days,
		Kind:           KindCompGrant,
		Reason:         reason,
		IdempotencyKey: fmt.Sprintf("comp-grant-%s-%s", employeeID, workedOn),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Adjust posts a manual HR correction to one type's balance.
func (s *RequestService) Adjust(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, delta leave.Days, reason string) (*Entry, error) {
	if !typeKey.Valid() {
		return nil, fmt.Errorf("%w: %q", leave.ErrUnknownLeaveType, string(typeKey))
	}
	if delta.IsZero() {
		return nil, fmt.Errorf("adjustment delta must be non-zero")
	}
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	entry := Entry{
		ID:             EntryID("ent-" + uuid.NewString()),
		EmployeeID:     employeeID,
		Type:           typeKey,
		EffectiveAt:    leave.Today(),
		Delta:          delta,
		Kind:           KindAdjustment,
		Reason:         reason,
		IdempotencyKey: "adjust-" + uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// =============================================================================
// ENTRY CONSTRUCTION
// =============================================================================

func approvalEntries(rec RequestRecord, now time.Time) []Entry {
	switch {
	case rec.Type == leave.TypeBirthday:
		return nil
	case rec.Type == leave.TypeCompensatory:
		return []Entry{{
			ID:             EntryID("ent-" + rec.ID + "-comp"),
			EmployeeID:     rec.EmployeeID,
			Type:           leave.TypeCompensatory,
			EffectiveAt:    rec.StartDate,
			Delta:          rec.DaysCount.Neg(),
			Kind:           KindCompSpend,
			ReferenceID:    rec.ID,
			Reason:         "Approved compensatory off",
			IdempotencyKey: rec.ID + "-comp-spend",
			CreatedAt:      now,
		}}
	default:
		paid := rec.FromBalance.Add(rec.FromMonthlyRate)
		if !paid.IsPositive() {
			return nil
		}
		return []Entry{{
			ID:             EntryID("ent-" + rec.ID + "-consume"),
			EmployeeID:     rec.EmployeeID,
			Type:           rec.Type,
			EffectiveAt:    rec.StartDate,
			Delta:          paid.Neg(),
			Kind:           KindConsumption,
			ReferenceID:    rec.ID,
			Reason:         "Approved leave",
			IdempotencyKey: rec.ID + "-consume",
			CreatedAt:      now,
		}}
	}
}

func reversalEntries(rec RequestRecord, cancelledBy string, now time.Time) []Entry {
	consumed := approvalEntries(rec, now)
	if len(consumed) == 0 {
		return nil
	}
	reversals := make([]Entry, 0, len(consumed))
	for _, orig := range consumed {
		reversals = append(reversals, Entry{
			ID:             orig.ID + "-reversal",
			EmployeeID:     orig.EmployeeID,
			Type:           orig.Type,
			EffectiveAt:    orig.EffectiveAt,
			Delta:          orig.Delta.Neg(),
			Kind:           KindReversal,
			ReferenceID:    string(orig.ID),
			Reason:         "Cancelled by " + cancelledBy,
			IdempotencyKey: orig.IdempotencyKey + "-reversal",
			CreatedAt:      now,
		})
	}
	return reversals
}
