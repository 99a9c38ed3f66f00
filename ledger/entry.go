/*
Package ledger is the system of record behind the evaluator.

PURPOSE:
  The evaluation core is pure: it reads a snapshot and returns a decision.
  This package is the caller the core's contract demands. It keeps an
  append-only ledger of day movements per employee and leave type, builds
  the evaluation snapshot from persisted records, and runs the one flow
  that must be transactional: re-evaluating a request and writing its
  outcome atomically, so two concurrent submissions cannot both pass the
  overlap check.

KEY CONCEPTS IN THIS FILE (entry.go):
  - Entry: an immutable signed day movement (grant, consumption, comp-off
    credit/spend, adjustment, reversal)
  - EntryKind: what a movement means; the balance math only reads Delta

DESIGN PRINCIPLES:
  1. Append-only: entries are never updated or deleted. Cancelling an
     approved request appends a reversal that references the original.
  2. Idempotency: every entry carries a unique key, so a retried accrual
     posting or approval cannot double-book days.
  3. Loss of pay never enters the ledger. Unpaid days are payroll
     metadata on the request record; the ledger tracks entitlement only.

SEE ALSO:
  - store.go: persistence interfaces and persisted records
  - requests.go: the transactional request lifecycle
  - context.go: snapshot assembly for the evaluator
*/
package ledger

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

type EntryID string

// EntryKind classifies a ledger movement.
type EntryKind string

const (
	// KindGrant is a scheduled accrual posting or an upfront annual grant.
	KindGrant EntryKind = "grant"

	// KindConsumption is the paid portion of an approved leave request.
	KindConsumption EntryKind = "consumption"

	// KindCompGrant credits the compensatory-off counter for an extra day
	// worked.
	KindCompGrant EntryKind = "comp_grant"

	// KindCompSpend debits the compensatory-off counter for an approved
	// compensatory request.
	KindCompSpend EntryKind = "comp_spend"

	// KindAdjustment is a manual HR correction, signed either way.
	KindAdjustment EntryKind = "adjustment"

	// KindReversal undoes a previous entry, referencing it by ID.
	KindReversal EntryKind = "reversal"
)

// Entry is one signed day movement. Comp-off entries use
// leave.TypeCompensatory as their Type, so one (employee, type) keyspace
// covers every counter.
type Entry struct {
	ID          EntryID
	EmployeeID  leave.EmployeeID
	Type        leave.TypeKey
	EffectiveAt leave.Date
	Delta       leave.Days
	Kind        EntryKind

	// ReferenceID links back to what caused the movement: a request ID
	// for consumptions and spends, the reversed entry's ID for reversals.
	ReferenceID string

	Reason         string
	IdempotencyKey string
	CreatedAt      time.Time
}
