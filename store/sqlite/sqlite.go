/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.TxRunner (and the admin extras the API needs) on a
  single SQLite file. In production the same patterns apply to PostgreSQL,
  only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  ledger.Store:         Append-only entry persistence
  ledger.RequestStore:  Leave request records
  ledger.EmployeeStore: Directory records
  ledger.TxRunner:      Atomic evaluate-and-write callbacks

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements touch ledger_entries. Corrections are
  reversal entries, and a UNIQUE index on idempotency_key turns replays
  into ledger.ErrDuplicateIdempotencyKey.

KEY TABLES:
  ledger_entries: Immutable ledger of balance movements
  leave_requests: Request lifecycle rows with the evaluated cost split
  employees:      Directory records, birth_date nullable
  policies:       Leave type configuration as JSON
  holidays:       Informational calendar, never part of day counting
  accrual_runs:   Audit rows for scheduler grant postings

DATE STORAGE:
  Civil dates (effective_at, start_date, ...) are stored as YYYY-MM-DD
  strings, which sort chronologically. Row timestamps are RFC3339.

TRANSACTIONS:
  WithTx hands the callback a view whose reads and writes all go through
  the same open database transaction, so a re-evaluation sees exactly the
  state the subsequent write commits against.

CONCURRENCY:
  A sync.RWMutex serializes writers. SQLite runs in WAL mode so readers
  do not block on the single writer.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := ledger.NewRequestService(store, policies)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every query helper can
// run inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Ledger entries (append-only)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		effective_at TEXT NOT NULL,
		delta TEXT NOT NULL,
		kind TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	-- Balance calculation (hot path)
	CREATE INDEX IF NOT EXISTS idx_entries_employee_type_date
		ON ledger_entries(employee_id, leave_type, effective_at);

	-- Request tracking
	CREATE INDEX IF NOT EXISTS idx_entries_reference
		ON ledger_entries(reference_id) WHERE reference_id IS NOT NULL;

	CREATE INDEX IF NOT EXISTS idx_entries_idempotency
		ON ledger_entries(idempotency_key) WHERE idempotency_key IS NOT NULL;

	-- Leave requests with the evaluated cost split
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		half_day BOOLEAN NOT NULL DEFAULT FALSE,
		half_day_period TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		days_count TEXT NOT NULL,
		from_balance TEXT NOT NULL,
		from_monthly_rate TEXT NOT NULL,
		loss_of_pay TEXT NOT NULL,
		note TEXT,
		rejection_reason TEXT,
		decided_by TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	-- Overlap detection reads this ordering directly
	CREATE INDEX IF NOT EXISTS idx_requests_employee_status_start
		ON leave_requests(employee_id, status, start_date);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		join_date TEXT NOT NULL,
		birth_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Leave type configuration
	CREATE TABLE IF NOT EXISTS policies (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Holidays (informational calendar)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);

	-- Accrual runs (scheduler audit)
	CREATE TABLE IF NOT EXISTS accrual_runs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		period TEXT NOT NULL,
		granted TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		error TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, leave_type, period)
	);

	CREATE INDEX IF NOT EXISTS idx_accrual_runs_period
		ON accrual_runs(period);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER ENTRIES (ledger.Store interface)
// =============================================================================

// Append adds an entry to the ledger.
func (s *Store) Append(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEntry(ctx, s.db, e)
}

func (s *Store) appendEntry(ctx context.Context, db dbtx, e ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries
		(id, employee_id, leave_type, effective_at, delta, kind,
		 reference_id, reason, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		string(e.ID),
		string(e.EmployeeID),
		string(e.Type),
		e.EffectiveAt.String(),
		e.Delta.String(),
		string(e.Kind),
		nullString(e.ReferenceID),
		nullString(e.Reason),
		nullString(e.IdempotencyKey),
		createdAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// AppendBatch adds multiple entries atomically.
func (s *Store) AppendBatch(ctx context.Context, entries []ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Catch duplicate keys inside the batch before touching the database.
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IdempotencyKey != "" {
			if seen[e.IdempotencyKey] {
				return ledger.ErrDuplicateIdempotencyKey
			}
			seen[e.IdempotencyKey] = true
		}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, e := range entries {
		if err := s.appendEntry(ctx, sqlTx, e); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// Load returns all entries for an employee and leave type, ordered by
// effective date.
func (s *Store) Load(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadEntries(ctx, s.db, employeeID, typeKey)
}

func (s *Store) loadEntries(ctx context.Context, db dbtx, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]ledger.Entry, error) {
	query := `
		SELECT id, employee_id, leave_type, effective_at, delta, kind,
		       reference_id, reason, idempotency_key, created_at
		FROM ledger_entries
		WHERE employee_id = ? AND leave_type = ?
		ORDER BY effective_at ASC, created_at ASC
	`

	return queryEntries(ctx, db, query, string(employeeID), string(typeKey))
}

// LoadRange returns the entries with an effective date in [from, to].
func (s *Store) LoadRange(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadEntryRange(ctx, s.db, employeeID, typeKey, from, to)
}

func (s *Store) loadEntryRange(ctx context.Context, db dbtx, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]ledger.Entry, error) {
	query := `
		SELECT id, employee_id, leave_type, effective_at, delta, kind,
		       reference_id, reason, idempotency_key, created_at
		FROM ledger_entries
		WHERE employee_id = ? AND leave_type = ?
		  AND effective_at >= ? AND effective_at <= ?
		ORDER BY effective_at ASC, created_at ASC
	`

	return queryEntries(ctx, db, query, string(employeeID), string(typeKey), from.String(), to.String())
}

// Exists reports whether an idempotency key has been used.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.existsKey(ctx, s.db, idempotencyKey)
}

func (s *Store) existsKey(ctx context.Context, db dbtx, idempotencyKey string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_entries WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

// GetAllEntries returns the most recent entries across all employees, for
// the admin ledger view.
func (s *Store) GetAllEntries(ctx context.Context, limit int) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, effective_at, delta, kind,
		       reference_id, reason, idempotency_key, created_at
		FROM ledger_entries
		ORDER BY created_at DESC
		LIMIT ?
	`

	return queryEntries(ctx, s.db, query, limit)
}

func queryEntries(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e              ledger.Entry
		id             string
		employeeID     string
		leaveType      string
		effectiveAt    string
		delta          string
		kind           string
		referenceID    sql.NullString
		reason         sql.NullString
		idempotencyKey sql.NullString
		createdAt      string
	)

	err := rows.Scan(
		&id, &employeeID, &leaveType, &effectiveAt, &delta, &kind,
		&referenceID, &reason, &idempotencyKey, &createdAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.ID = ledger.EntryID(id)
	e.EmployeeID = leave.EmployeeID(employeeID)
	e.Type = leave.TypeKey(leaveType)
	e.EffectiveAt, _ = leave.ParseDate(effectiveAt)
	e.Delta = leave.MustParseDays(delta)
	e.Kind = ledger.EntryKind(kind)
	e.ReferenceID = referenceID.String
	e.Reason = reason.String
	e.IdempotencyKey = idempotencyKey.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return e, nil
}

// =============================================================================
// TRANSACTIONS (ledger.TxRunner interface)
// =============================================================================

// WithTx executes a function within a database transaction. The view the
// callback receives reads through the open transaction, so a re-evaluation
// sees exactly the state its writes commit against.
func (s *Store) WithTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txView{store: s, tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txView satisfies ledger.Tx against an open *sql.Tx. It never touches the
// store mutex; WithTx already holds it.
type txView struct {
	store *Store
	tx    *sql.Tx
}

func (v *txView) Append(ctx context.Context, e ledger.Entry) error {
	return v.store.appendEntry(ctx, v.tx, e)
}

func (v *txView) AppendBatch(ctx context.Context, entries []ledger.Entry) error {
	for _, e := range entries {
		if err := v.store.appendEntry(ctx, v.tx, e); err != nil {
			return err
		}
	}
	return nil
}

func (v *txView) Load(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]ledger.Entry, error) {
	return v.store.loadEntries(ctx, v.tx, employeeID, typeKey)
}

func (v *txView) LoadRange(ctx context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]ledger.Entry, error) {
	return v.store.loadEntryRange(ctx, v.tx, employeeID, typeKey, from, to)
}

func (v *txView) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	return v.store.existsKey(ctx, v.tx, idempotencyKey)
}

func (v *txView) SaveRequest(ctx context.Context, rec ledger.RequestRecord) error {
	return v.store.saveRequest(ctx, v.tx, rec)
}

func (v *txView) GetRequest(ctx context.Context, id string) (*ledger.RequestRecord, error) {
	return v.store.getRequest(ctx, v.tx, id)
}

func (v *txView) ListRequests(ctx context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	return v.store.listRequests(ctx, v.tx, employeeID)
}

func (v *txView) ListByStatus(ctx context.Context, status leave.LeaveStatus) ([]ledger.RequestRecord, error) {
	return v.store.listByStatus(ctx, v.tx, status)
}

func (v *txView) ActiveRequests(ctx context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	return v.store.activeRequests(ctx, v.tx, employeeID)
}

func (v *txView) ApprovedInMonth(ctx context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]ledger.RequestRecord, error) {
	return v.store.approvedInMonth(ctx, v.tx, employeeID, year, month)
}

func (v *txView) SaveEmployee(ctx context.Context, emp ledger.Employee) error {
	return v.store.saveEmployee(ctx, v.tx, emp)
}

func (v *txView) GetEmployee(ctx context.Context, id leave.EmployeeID) (*ledger.Employee, error) {
	return v.store.getEmployee(ctx, v.tx, id)
}

func (v *txView) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	return v.store.listEmployees(ctx, v.tx)
}

// =============================================================================
// REQUEST STORE (ledger.RequestStore interface)
// =============================================================================

const requestColumns = `id, employee_id, leave_type, start_date, end_date,
	half_day, half_day_period, status, days_count, from_balance,
	from_monthly_rate, loss_of_pay, note, rejection_reason,
	decided_by, decided_at, created_at, updated_at`

// SaveRequest inserts or replaces a request record by ID.
func (s *Store) SaveRequest(ctx context.Context, rec ledger.RequestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveRequest(ctx, s.db, rec)
}

func (s *Store) saveRequest(ctx context.Context, db dbtx, rec ledger.RequestRecord) error {
	query := `
		INSERT INTO leave_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			days_count = excluded.days_count,
			from_balance = excluded.from_balance,
			from_monthly_rate = excluded.from_monthly_rate,
			loss_of_pay = excluded.loss_of_pay,
			note = excluded.note,
			rejection_reason = excluded.rejection_reason,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at,
			updated_at = excluded.updated_at
	`

	var decidedAt *string
	if rec.DecidedAt != nil {
		v := rec.DecidedAt.Format(time.RFC3339)
		decidedAt = &v
	}

	_, err := db.ExecContext(ctx, query,
		rec.ID,
		string(rec.EmployeeID),
		string(rec.Type),
		rec.StartDate.String(),
		rec.EndDate.String(),
		rec.HalfDay,
		nullString(string(rec.HalfDayPeriod)),
		string(rec.Status),
		rec.DaysCount.String(),
		rec.FromBalance.String(),
		rec.FromMonthlyRate.String(),
		rec.LossOfPay.String(),
		nullString(rec.Note),
		nullString(rec.RejectionReason),
		nullString(rec.DecidedBy),
		decidedAt,
		rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

// GetRequest returns the record or ledger.ErrRequestNotFound.
func (s *Store) GetRequest(ctx context.Context, id string) (*ledger.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getRequest(ctx, s.db, id)
}

func (s *Store) getRequest(ctx context.Context, db dbtx, id string) (*ledger.RequestRecord, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE id = ?`

	records, err := queryRequests(ctx, db, query, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ledger.ErrRequestNotFound
	}
	return &records[0], nil
}

// ListRequests returns every record for an employee, newest first.
func (s *Store) ListRequests(ctx context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listRequests(ctx, s.db, employeeID)
}

func (s *Store) listRequests(ctx context.Context, db dbtx, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE employee_id = ?
		ORDER BY created_at DESC
	`

	return queryRequests(ctx, db, query, string(employeeID))
}

// ListByStatus returns all records in one status, newest first.
func (s *Store) ListByStatus(ctx context.Context, status leave.LeaveStatus) ([]ledger.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listByStatus(ctx, s.db, status)
}

func (s *Store) listByStatus(ctx context.Context, db dbtx, status leave.LeaveStatus) ([]ledger.RequestRecord, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE status = ?
		ORDER BY created_at DESC
	`

	return queryRequests(ctx, db, query, string(status))
}

// ActiveRequests returns pending and approved records ordered by start
// date then creation time.
func (s *Store) ActiveRequests(ctx context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeRequests(ctx, s.db, employeeID)
}

func (s *Store) activeRequests(ctx context.Context, db dbtx, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE employee_id = ? AND status IN ('pending', 'approved')
		ORDER BY start_date ASC, created_at ASC
	`

	return queryRequests(ctx, db, query, string(employeeID))
}

// ApprovedInMonth returns approved records whose start date falls in the
// given month.
func (s *Store) ApprovedInMonth(ctx context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]ledger.RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.approvedInMonth(ctx, s.db, employeeID, year, month)
}

func (s *Store) approvedInMonth(ctx context.Context, db dbtx, employeeID leave.EmployeeID, year int, month time.Month) ([]ledger.RequestRecord, error) {
	first := leave.NewDate(year, month, 1)
	next := first.AddMonths(1)

	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE employee_id = ? AND status = 'approved'
		  AND start_date >= ? AND start_date < ?
		ORDER BY start_date ASC, created_at ASC
	`

	return queryRequests(ctx, db, query, string(employeeID), first.String(), next.String())
}

func queryRequests(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.RequestRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var records []ledger.RequestRecord
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRequest(rows *sql.Rows) (ledger.RequestRecord, error) {
	var (
		rec             ledger.RequestRecord
		employeeID      string
		leaveType       string
		startDate       string
		endDate         string
		halfDayPeriod   sql.NullString
		status          string
		daysCount       string
		fromBalance     string
		fromMonthlyRate string
		lossOfPay       string
		note            sql.NullString
		rejectionReason sql.NullString
		decidedBy       sql.NullString
		decidedAt       sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := rows.Scan(
		&rec.ID, &employeeID, &leaveType, &startDate, &endDate,
		&rec.HalfDay, &halfDayPeriod, &status, &daysCount, &fromBalance,
		&fromMonthlyRate, &lossOfPay, &note, &rejectionReason,
		&decidedBy, &decidedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan request: %w", err)
	}

	rec.EmployeeID = leave.EmployeeID(employeeID)
	rec.Type = leave.TypeKey(leaveType)
	rec.StartDate, _ = leave.ParseDate(startDate)
	rec.EndDate, _ = leave.ParseDate(endDate)
	rec.HalfDayPeriod = leave.HalfDayPeriod(halfDayPeriod.String)
	rec.Status = leave.LeaveStatus(status)
	rec.DaysCount = leave.MustParseDays(daysCount)
	rec.FromBalance = leave.MustParseDays(fromBalance)
	rec.FromMonthlyRate = leave.MustParseDays(fromMonthlyRate)
	rec.LossOfPay = leave.MustParseDays(lossOfPay)
	rec.Note = note.String
	rec.RejectionReason = rejectionReason.String
	rec.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		t, _ := time.Parse(time.RFC3339, decidedAt.String)
		rec.DecidedAt = &t
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return rec, nil
}

// =============================================================================
// EMPLOYEE STORE (ledger.EmployeeStore interface)
// =============================================================================

// SaveEmployee inserts or replaces an employee by ID.
func (s *Store) SaveEmployee(ctx context.Context, emp ledger.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveEmployee(ctx, s.db, emp)
}

func (s *Store) saveEmployee(ctx context.Context, db dbtx, emp ledger.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, join_date, birth_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			join_date = excluded.join_date,
			birth_date = excluded.birth_date
	`

	var birthDate *string
	if emp.BirthDate != nil {
		v := emp.BirthDate.String()
		birthDate = &v
	}

	_, err := db.ExecContext(ctx, query,
		string(emp.ID),
		emp.Name,
		emp.Email,
		emp.JoinDate.String(),
		birthDate,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns the employee or ledger.ErrEmployeeNotFound.
func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (*ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEmployee(ctx, s.db, id)
}

func (s *Store) getEmployee(ctx context.Context, db dbtx, id leave.EmployeeID) (*ledger.Employee, error) {
	var (
		emp       ledger.Employee
		empID     string
		email     sql.NullString
		joinDate  string
		birthDate sql.NullString
	)

	err := db.QueryRowContext(ctx,
		"SELECT id, name, email, join_date, birth_date FROM employees WHERE id = ?",
		string(id),
	).Scan(&empID, &emp.Name, &email, &joinDate, &birthDate)

	if err == sql.ErrNoRows {
		return nil, ledger.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	emp.ID = leave.EmployeeID(empID)
	emp.Email = email.String
	emp.JoinDate, _ = leave.ParseDate(joinDate)
	if birthDate.Valid {
		d, _ := leave.ParseDate(birthDate.String)
		emp.BirthDate = &d
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listEmployees(ctx, s.db)
}

func (s *Store) listEmployees(ctx context.Context, db dbtx) ([]ledger.Employee, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, email, join_date, birth_date FROM employees ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []ledger.Employee
	for rows.Next() {
		var (
			emp       ledger.Employee
			empID     string
			email     sql.NullString
			joinDate  string
			birthDate sql.NullString
		)
		if err := rows.Scan(&empID, &emp.Name, &email, &joinDate, &birthDate); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.ID = leave.EmployeeID(empID)
		emp.Email = email.String
		emp.JoinDate, _ = leave.ParseDate(joinDate)
		if birthDate.Valid {
			d, _ := leave.ParseDate(birthDate.String)
			emp.BirthDate = &d
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee record.
func (s *Store) DeleteEmployee(ctx context.Context, id leave.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", string(id))
	return err
}

// =============================================================================
// POLICY STORE
// =============================================================================

// PolicyRecord is a stored leave type configuration.
type PolicyRecord struct {
	Key        leave.TypeKey
	Name       string
	ConfigJSON string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavePolicy insert-or-updates a policy by its leave type key.
func (s *Store) SavePolicy(ctx context.Context, rec PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO policies (key, name, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		string(rec.Key), rec.Name, rec.ConfigJSON, now, now,
	)
	return err
}

// GetPolicy returns the stored policy or nil when absent.
func (s *Store) GetPolicy(ctx context.Context, key leave.TypeKey) (*PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec                  PolicyRecord
		k                    string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key, name, config_json, created_at, updated_at FROM policies WHERE key = ?",
		string(key),
	).Scan(&k, &rec.Name, &rec.ConfigJSON, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Key = leave.TypeKey(k)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// ListPolicies returns all stored policies ordered by key.
func (s *Store) ListPolicies(ctx context.Context) ([]PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, name, config_json, created_at, updated_at FROM policies ORDER BY key",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PolicyRecord
	for rows.Next() {
		var (
			rec                  PolicyRecord
			k                    string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&k, &rec.Name, &rec.ConfigJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.Key = leave.TypeKey(k)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeletePolicy removes a stored policy.
func (s *Store) DeletePolicy(ctx context.Context, key leave.TypeKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM policies WHERE key = ?", string(key))
	return err
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a calendar row. The calendar is informational: day counting
// stays calendar-based no matter what is stored here.
type Holiday struct {
	ID        string
	Date      leave.Date
	Name      string
	Recurring bool
	CreatedAt time.Time
}

// SaveHoliday inserts or updates a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.String(),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListHolidays returns the holidays observed in a year. Recurring holidays
// are projected onto that year.
func (s *Store) ListHolidays(ctx context.Context, year int) ([]Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date, name, recurring
		FROM holidays
		WHERE recurring = TRUE OR strftime('%Y', date) = ?
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, fmt.Sprintf("%d", year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		d, _ := leave.ParseDate(dateStr)
		if h.Recurring {
			d = leave.NewDate(year, d.Month(), d.Day())
		}
		h.Date = d
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// IsHoliday reports whether a date is on the calendar.
func (s *Store) IsHoliday(ctx context.Context, date leave.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (recurring = FALSE AND date = ?)
		   OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
	`

	var count int
	err := s.db.QueryRowContext(ctx, query,
		date.String(),
		date.Time.Format("01-02"),
	).Scan(&count)
	return count > 0, err
}

// DeleteHoliday removes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

// =============================================================================
// ACCRUAL RUNS
// =============================================================================

// AccrualRun is the audit row for one scheduler posting: one employee, one
// leave type, one period.
type AccrualRun struct {
	ID          string
	EmployeeID  leave.EmployeeID
	Type        leave.TypeKey
	Period      string // "2025-06" for monthly, "2025" for annual
	Granted     leave.Days
	Status      string // completed, failed
	Error       string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// SaveAccrualRun records a scheduler posting. Re-running a period updates
// the same row.
func (s *Store) SaveAccrualRun(ctx context.Context, r AccrualRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO accrual_runs (id, employee_id, leave_type, period, granted,
			status, error, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type, period) DO UPDATE SET
			granted = excluded.granted,
			status = excluded.status,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		v := r.CompletedAt.Format(time.RFC3339)
		completedAt = &v
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		string(r.EmployeeID),
		string(r.Type),
		r.Period,
		r.Granted.String(),
		r.Status,
		nullString(r.Error),
		completedAt,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListAccrualRuns returns the most recent runs.
func (s *Store) ListAccrualRuns(ctx context.Context, limit int) ([]AccrualRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, period, granted, status, error,
		       completed_at, created_at
		FROM accrual_runs
		ORDER BY created_at DESC, period DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AccrualRun
	for rows.Next() {
		var (
			r           AccrualRun
			employeeID  string
			leaveType   string
			granted     string
			errText     sql.NullString
			completedAt sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&r.ID, &employeeID, &leaveType, &r.Period, &granted,
			&r.Status, &errText, &completedAt, &createdAt); err != nil {
			return nil, err
		}
		r.EmployeeID = leave.EmployeeID(employeeID)
		r.Type = leave.TypeKey(leaveType)
		r.Granted = leave.MustParseDays(granted)
		r.Error = errText.String
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"ledger_entries", "leave_requests", "employees", "policies", "holidays", "accrual_runs"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
