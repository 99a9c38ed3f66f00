/*
scheduler.go - Automated accrual scheduler

PURPOSE:
  Periodically posts the grant entries each policy's accrual schedule says
  are due: monthly accruals on the first of the month, annual grants on
  January 1st. Catch-up is automatic: an instance that was down over a
  boundary posts the missed periods on its next pass.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Generates due events from each employee's join date through today
  - Idempotency keys make re-posting a period a no-op, so the check
    interval can be much shorter than the accrual period
  - Records every posting in accrual_runs for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAccrualScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunAccruals endpoint (manual trigger)
  - ledger/accrual.go: Schedule generation
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/policy"
	"github.com/warp/leave-engine/store/sqlite"
)

// AccrualScheduler posts scheduled grants in the background.
type AccrualScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAccrualScheduler creates a new scheduler.
func NewAccrualScheduler(store *sqlite.Store, handler *Handler) *AccrualScheduler {
	return &AccrualScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *AccrualScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[Scheduler] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler.
func (as *AccrualScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

// RunNow triggers a posting pass outside the schedule.
func (as *AccrualScheduler) RunNow() {
	log.Println("[Scheduler] Manual run triggered")
	as.checkAndPost()
}

func (as *AccrualScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.checkAndPost()

	for {
		select {
		case <-as.ticker.C:
			as.checkAndPost()
		case <-as.stop:
			return
		}
	}
}

func (as *AccrualScheduler) checkAndPost() {
	ctx := context.Background()
	asOf := leave.Today()

	log.Printf("[Scheduler] Checking for due accruals as of %s", asOf)

	summary, err := postAccruals(ctx, as.Store, as.Handler.PolicySet(), asOf)
	if err != nil {
		log.Printf("[Scheduler] Accrual pass failed: %v", err)
		return
	}

	if summary.Posted > 0 || summary.Failed > 0 {
		log.Printf("[Scheduler] Completed: %d posted, %d skipped (already done), %d failed",
			summary.Posted, summary.Skipped, summary.Failed)
	}
}

// =============================================================================
// ACCRUAL POSTING
// =============================================================================

type accrualSummary struct {
	Posted  int
	Skipped int
	Failed  int
}

// postAccruals walks every employee and policy schedule and posts the
// grant entries due through asOf. Shared by the scheduler and the manual
// RunAccruals endpoint.
func postAccruals(ctx context.Context, store *sqlite.Store, policies policy.Set, asOf leave.Date) (accrualSummary, error) {
	var summary accrualSummary

	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return summary, err
	}

	for _, emp := range employees {
		from := emp.JoinDate
		if from.IsZero() {
			from = leave.NewDate(asOf.Year(), time.January, 1)
		}
		if from.After(asOf) {
			continue
		}

		for _, key := range policies.Keys() {
			p := policies[key]
			for _, schedule := range ledger.SchedulesFor(p) {
				for _, ev := range schedule.GenerateAccruals(from, asOf) {
					period, idemKey := accrualKey(emp.ID, p.Key, schedule, ev.At)
					posted, err := postAccrualEvent(ctx, store, emp.ID, p.Key, period, idemKey, ev)
					switch {
					case err != nil:
						summary.Failed++
						log.Printf("[Scheduler] Error posting %s: %v", idemKey, err)
					case posted:
						summary.Posted++
					default:
						summary.Skipped++
					}
				}
			}
		}
	}
	return summary, nil
}

// accrualKey derives the audit period and idempotency key for one event.
// Monthly accruals key on the month, annual grants on the year, so the
// two cannot collide even when both land on January 1st.
func accrualKey(empID leave.EmployeeID, typeKey leave.TypeKey, schedule ledger.AccrualSchedule, at leave.Date) (period, idemKey string) {
	switch schedule.(type) {
	case ledger.YearlyGrant:
		period = at.Time.Format("2006")
		idemKey = fmt.Sprintf("grant-%s-%s-%s", empID, typeKey, period)
	default:
		period = at.Time.Format("2006-01")
		idemKey = fmt.Sprintf("accrual-%s-%s-%s", empID, typeKey, period)
	}
	return period, idemKey
}

// postAccrualEvent appends one grant entry unless its period was already
// posted. Returns whether a new entry landed.
func postAccrualEvent(ctx context.Context, store *sqlite.Store, empID leave.EmployeeID, typeKey leave.TypeKey, period, idemKey string, ev ledger.AccrualEvent) (bool, error) {
	exists, err := store.Exists(ctx, idemKey)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	now := time.Now().UTC()
	entry := ledger.Entry{
		ID:             ledger.EntryID("ent-" + uuid.NewString()),
		EmployeeID:     empID,
		Type:           typeKey,
		EffectiveAt:    ev.At,
		Delta:          ev.Amount,
		Kind:           ledger.KindGrant,
		Reason:         ev.Reason,
		IdempotencyKey: idemKey,
		CreatedAt:      now,
	}
	if err := store.Append(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateIdempotencyKey) {
			// Another instance won the race; the period is covered.
			return false, nil
		}
		saveErr := store.SaveAccrualRun(ctx, sqlite.AccrualRun{
			ID:         "run-" + uuid.NewString(),
			EmployeeID: empID,
			Type:       typeKey,
			Period:     period,
			Granted:    leave.ZeroDays(),
			Status:     "failed",
			Error:      err.Error(),
		})
		if saveErr != nil {
			log.Printf("[Scheduler] Error recording failed run %s: %v", idemKey, saveErr)
		}
		return false, err
	}

	completed := now
	if err := store.SaveAccrualRun(ctx, sqlite.AccrualRun{
		ID:          "run-" + uuid.NewString(),
		EmployeeID:  empID,
		Type:        typeKey,
		Period:      period,
		Granted:     ev.Amount,
		Status:      "completed",
		CompletedAt: &completed,
	}); err != nil {
		// The grant landed; a missing audit row is only a logging loss.
		log.Printf("[Scheduler] Error recording run %s: %v", idemKey, err)
	}
	return true, nil
}
