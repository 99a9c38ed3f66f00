/*
store.go - Persistence interfaces and persisted records

PURPOSE:
  Defines the boundary between the leave domain and the database. The
  ledger side is append-only: no Update, no Delete, corrections are
  reversal entries. Request and employee records are upserted by ID.

APPEND-ONLY CONTRACT:
  Append / AppendBatch are the only ledger writes. A write whose
  idempotency key already exists fails with ErrDuplicateIdempotencyKey,
  and a batch is all-or-nothing.

TRANSACTIONS:
  TxRunner.WithTx runs a callback against a view that satisfies the same
  interfaces inside one database transaction. The request lifecycle uses
  it to re-evaluate and write atomically.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - ledger/store: in-memory store for tests

SEE ALSO:
  - requests.go: the service driving these interfaces
*/
package ledger

import (
	"context"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// LEDGER STORE - Append-only entry persistence
// =============================================================================

type Store interface {
	// Append persists one entry. Fails with ErrDuplicateIdempotencyKey on
	// a key the store has already seen.
	Append(ctx context.Context, e Entry) error

	// AppendBatch persists entries atomically: all or none.
	AppendBatch(ctx context.Context, entries []Entry) error

	// Load returns all entries for an employee and leave type, ordered by
	// EffectiveAt.
	Load(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]Entry, error)

	// LoadRange returns the entries with EffectiveAt in [from, to].
	LoadRange(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]Entry, error)

	// Exists reports whether an idempotency key has been used.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}

// =============================================================================
// REQUEST STORE - Leave request records
// =============================================================================

type RequestStore interface {
	// SaveRequest inserts or replaces a request record by ID.
	SaveRequest(ctx context.Context, rec RequestRecord) error

	// GetRequest returns the record or ErrRequestNotFound.
	GetRequest(ctx context.Context, id string) (*RequestRecord, error)

	// ListRequests returns every record for an employee, newest first.
	ListRequests(ctx context.Context, employeeID leave.EmployeeID) ([]RequestRecord, error)

	// ListByStatus returns all records in one status, newest first.
	ListByStatus(ctx context.Context, status leave.LeaveStatus) ([]RequestRecord, error)

	// ActiveRequests returns the employee's pending and approved records
	// ordered by start date then creation time. This ordering is what the
	// overlap detector's first-match rule runs over.
	ActiveRequests(ctx context.Context, employeeID leave.EmployeeID) ([]RequestRecord, error)

	// ApprovedInMonth returns the employee's approved records whose start
	// date falls in the given month.
	ApprovedInMonth(ctx context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]RequestRecord, error)
}

// RequestRecord is the persisted form of a leave request together with its
// evaluated cost split. The split on a pending record is the advisory
// computed at submission; approval recomputes it before any day moves.
type RequestRecord struct {
	ID            string
	EmployeeID    leave.EmployeeID
	Type          leave.TypeKey
	StartDate     leave.Date
	EndDate       leave.Date
	HalfDay       bool
	HalfDayPeriod leave.HalfDayPeriod
	Status        leave.LeaveStatus

	DaysCount       leave.Days
	FromBalance     leave.Days
	FromMonthlyRate leave.Days
	LossOfPay       leave.Days

	// Note is the requester's or reviewer's free text. RejectionReason is
	// the evaluator's enum when a request was auto-rejected at decision
	// time.
	Note            string
	RejectionReason string

	DecidedBy string
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Request rebuilds the evaluator input from the persisted record.
func (r RequestRecord) Request() leave.Request {
	return leave.Request{
		EmployeeID:    r.EmployeeID,
		Type:          r.Type,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		HalfDay:       r.HalfDay,
		HalfDayPeriod: r.HalfDayPeriod,
	}
}

// ActiveLeave converts the record into the evaluator's overlap input.
func (r RequestRecord) ActiveLeave() leave.ActiveLeave {
	return leave.ActiveLeave{
		ID:            r.ID,
		Type:          r.Type,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		HalfDay:       r.HalfDay,
		HalfDayPeriod: r.HalfDayPeriod,
		Status:        r.Status,
	}
}

// =============================================================================
// EMPLOYEE STORE - Directory records
// =============================================================================

type EmployeeStore interface {
	// SaveEmployee inserts or replaces an employee by ID.
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id leave.EmployeeID) (*Employee, error)

	// ListEmployees returns all employees ordered by ID.
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// Employee is the directory record. BirthDate is nil when not on file,
// which makes birthday leave unavailable until HR records it.
type Employee struct {
	ID        leave.EmployeeID
	Name      string
	Email     string
	JoinDate  leave.Date
	BirthDate *leave.Date
}

// =============================================================================
// COMPOSED VIEWS
// =============================================================================

// ContextSource is the read surface BuildContext needs. Both the plain
// store and its transactional view satisfy it.
type ContextSource interface {
	Load(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]Entry, error)
	ActiveRequests(ctx context.Context, employeeID leave.EmployeeID) ([]RequestRecord, error)
	ApprovedInMonth(ctx context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]RequestRecord, error)
	GetEmployee(ctx context.Context, id leave.EmployeeID) (*Employee, error)
}

// Tx is the combined read/write surface the request lifecycle works
// through, inside or outside a transaction.
type Tx interface {
	Store
	RequestStore
	EmployeeStore
}

// TxRunner is a Tx that can also run a callback atomically. Reads inside
// the callback observe the transaction's own writes.
type TxRunner interface {
	Tx

	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
