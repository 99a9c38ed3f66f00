/*
errors.go - Error catalog for the ledger and request lifecycle

ERROR CATEGORIES:
  - Persistence conflicts: duplicate idempotency keys
  - Missing records: employee or request not found
  - Lifecycle violations: deciding a request that is not pending,
    cancelling one that is already settled

USAGE:
  if errors.Is(err, ledger.ErrNotPending) { ... }
*/
package ledger

import (
	"errors"
)

var (
	// ErrDuplicateIdempotencyKey means a write carried a key the store has
	// already seen. The original write stands; the retry is safe to drop.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already exists")

	// ErrEmployeeNotFound means the referenced employee has no record.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound means the referenced leave request has no record.
	ErrRequestNotFound = errors.New("request not found")

	// ErrNotPending means a decision was attempted on a request that has
	// already been decided or withdrawn.
	ErrNotPending = errors.New("request is not pending")

	// ErrNotCancellable means the request's status does not allow
	// cancellation.
	ErrNotCancellable = errors.New("request cannot be cancelled")
)
