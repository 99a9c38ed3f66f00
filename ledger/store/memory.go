// Package store provides an in-memory ledger.TxRunner for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	entries     map[entryKey][]ledger.Entry
	idempotency map[string]bool
	requests    map[string]ledger.RequestRecord
	employees   map[leave.EmployeeID]ledger.Employee
}

type entryKey struct {
	EmployeeID leave.EmployeeID
	Type       leave.TypeKey
}

func NewMemory() *Memory {
	return &Memory{
		entries:     make(map[entryKey][]ledger.Entry),
		idempotency: make(map[string]bool),
		requests:    make(map[string]ledger.RequestRecord),
		employees:   make(map[leave.EmployeeID]ledger.Employee),
	}
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

func (m *Memory) Append(_ context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(e)
}

func (m *Memory) AppendBatch(_ context.Context, entries []ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	for _, e := range entries {
		if err := m.appendLocked(e); err != nil {
			m.restore(snapshot)
			return err
		}
	}
	return nil
}

func (m *Memory) appendLocked(e ledger.Entry) error {
	if e.IdempotencyKey != "" && m.idempotency[e.IdempotencyKey] {
		return ledger.ErrDuplicateIdempotencyKey
	}

	k := entryKey{EmployeeID: e.EmployeeID, Type: e.Type}
	entries := m.entries[k]

	// Keep each keyspace sorted by EffectiveAt on insert.
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].EffectiveAt.After(e.EffectiveAt)
	})
	entries = append(entries, ledger.Entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = e
	m.entries[k] = entries

	if e.IdempotencyKey != "" {
		m.idempotency[e.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) Load(_ context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadLocked(employeeID, typeKey), nil
}

func (m *Memory) loadLocked(employeeID leave.EmployeeID, typeKey leave.TypeKey) []ledger.Entry {
	k := entryKey{EmployeeID: employeeID, Type: typeKey}
	result := make([]ledger.Entry, len(m.entries[k]))
	copy(result, m.entries[k])
	return result
}

func (m *Memory) LoadRange(_ context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadRangeLocked(employeeID, typeKey, from, to), nil
}

func (m *Memory) loadRangeLocked(employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) []ledger.Entry {
	k := entryKey{EmployeeID: employeeID, Type: typeKey}
	var result []ledger.Entry
	for _, e := range m.entries[k] {
		if e.EffectiveAt.Before(from) || e.EffectiveAt.After(to) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func (m *Memory) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idempotency[idempotencyKey], nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, rec ledger.RequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[rec.ID] = rec
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (*ledger.RequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRequestLocked(id)
}

func (m *Memory) getRequestLocked(id string) (*ledger.RequestRecord, error) {
	rec, ok := m.requests[id]
	if !ok {
		return nil, ledger.ErrRequestNotFound
	}
	return &rec, nil
}

func (m *Memory) ListRequests(_ context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.EmployeeID == employeeID
	}, newestFirst), nil
}

func (m *Memory) ListByStatus(_ context.Context, status leave.LeaveStatus) ([]ledger.RequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.Status == status
	}, newestFirst), nil
}

func (m *Memory) ActiveRequests(_ context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeRequestsLocked(employeeID), nil
}

func (m *Memory) activeRequestsLocked(employeeID leave.EmployeeID) []ledger.RequestRecord {
	return m.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.EmployeeID == employeeID && r.Status.Blocks()
	}, byStartDate)
}

func (m *Memory) ApprovedInMonth(_ context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]ledger.RequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.approvedInMonthLocked(employeeID, year, month), nil
}

func (m *Memory) approvedInMonthLocked(employeeID leave.EmployeeID, year int, month time.Month) []ledger.RequestRecord {
	return m.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.EmployeeID == employeeID &&
			r.Status == leave.StatusApproved &&
			r.StartDate.Year() == year &&
			r.StartDate.Month() == month
	}, byStartDate)
}

type requestOrder func(a, b ledger.RequestRecord) bool

func newestFirst(a, b ledger.RequestRecord) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func byStartDate(a, b ledger.RequestRecord) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.Before(b.StartDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (m *Memory) filterRequestsLocked(keep func(ledger.RequestRecord) bool, order requestOrder) []ledger.RequestRecord {
	var result []ledger.RequestRecord
	for _, r := range m.requests {
		if keep(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return order(result[i], result[j]) })
	return result
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp ledger.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id leave.EmployeeID) (*ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEmployeeLocked(id)
}

func (m *Memory) getEmployeeLocked(id leave.EmployeeID) (*ledger.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, ledger.ErrEmployeeNotFound
	}
	if emp.BirthDate != nil {
		b := *emp.BirthDate
		emp.BirthDate = &b
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// TRANSACTIONS - snapshot and restore
// =============================================================================

// WithTx simulates a transaction: the whole store is locked, a snapshot is
// taken, and an error from the callback restores it. Reads inside the
// callback see the callback's own writes.
func (m *Memory) WithTx(_ context.Context, fn func(tx ledger.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memoryView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	entries     map[entryKey][]ledger.Entry
	idempotency map[string]bool
	requests    map[string]ledger.RequestRecord
	employees   map[leave.EmployeeID]ledger.Employee
}

func (m *Memory) snapshot() memorySnapshot {
	entries := make(map[entryKey][]ledger.Entry, len(m.entries))
	for k, v := range m.entries {
		entries[k] = append([]ledger.Entry{}, v...)
	}
	idempotency := make(map[string]bool, len(m.idempotency))
	for k, v := range m.idempotency {
		idempotency[k] = v
	}
	requests := make(map[string]ledger.RequestRecord, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	employees := make(map[leave.EmployeeID]ledger.Employee, len(m.employees))
	for k, v := range m.employees {
		employees[k] = v
	}
	return memorySnapshot{entries: entries, idempotency: idempotency, requests: requests, employees: employees}
}

func (m *Memory) restore(s memorySnapshot) {
	m.entries = s.entries
	m.idempotency = s.idempotency
	m.requests = s.requests
	m.employees = s.employees
}

// memoryView runs against the already-locked parent, so transactional
// callbacks can read and write without re-taking the mutex.
type memoryView struct {
	parent *Memory
}

func (v *memoryView) Append(_ context.Context, e ledger.Entry) error {
	return v.parent.appendLocked(e)
}

func (v *memoryView) AppendBatch(_ context.Context, entries []ledger.Entry) error {
	for _, e := range entries {
		if err := v.parent.appendLocked(e); err != nil {
			return err
		}
	}
	return nil
}

func (v *memoryView) Load(_ context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey) ([]ledger.Entry, error) {
	return v.parent.loadLocked(employeeID, typeKey), nil
}

func (v *memoryView) LoadRange(_ context.Context, employeeID leave.EmployeeID, typeKey leave.TypeKey, from, to leave.Date) ([]ledger.Entry, error) {
	return v.parent.loadRangeLocked(employeeID, typeKey, from, to), nil
}

func (v *memoryView) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	return v.parent.idempotency[idempotencyKey], nil
}

func (v *memoryView) SaveRequest(_ context.Context, rec ledger.RequestRecord) error {
	v.parent.requests[rec.ID] = rec
	return nil
}

func (v *memoryView) GetRequest(_ context.Context, id string) (*ledger.RequestRecord, error) {
	return v.parent.getRequestLocked(id)
}

func (v *memoryView) ListRequests(_ context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	return v.parent.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.EmployeeID == employeeID
	}, newestFirst), nil
}

func (v *memoryView) ListByStatus(_ context.Context, status leave.LeaveStatus) ([]ledger.RequestRecord, error) {
	return v.parent.filterRequestsLocked(func(r ledger.RequestRecord) bool {
		return r.Status == status
	}, newestFirst), nil
}

func (v *memoryView) ActiveRequests(_ context.Context, employeeID leave.EmployeeID) ([]ledger.RequestRecord, error) {
	return v.parent.activeRequestsLocked(employeeID), nil
}

func (v *memoryView) ApprovedInMonth(_ context.Context, employeeID leave.EmployeeID, year int, month time.Month) ([]ledger.RequestRecord, error) {
	return v.parent.approvedInMonthLocked(employeeID, year, month), nil
}

func (v *memoryView) SaveEmployee(_ context.Context, emp ledger.Employee) error {
	v.parent.employees[emp.ID] = emp
	return nil
}

func (v *memoryView) GetEmployee(_ context.Context, id leave.EmployeeID) (*ledger.Employee, error) {
	return v.parent.getEmployeeLocked(id)
}

func (v *memoryView) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	result := make([]ledger.Employee, 0, len(v.parent.employees))
	for _, emp := range v.parent.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
