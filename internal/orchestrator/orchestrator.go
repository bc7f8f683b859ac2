package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/flowdeck/internal/catalog"
	"github.com/flowdeck/flowdeck/internal/heal"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/models"
	"github.com/flowdeck/flowdeck/internal/storage"
	"github.com/flowdeck/flowdeck/internal/workflow"
)

// Executor runs fully resolved invocations; satisfied by *runner.Runner.
type Executor interface {
	Execute(ctx context.Context, inv models.Invocation) models.ExecutionResult
}

// Orchestrator drives workflow sessions: one phase at a time, in declared
// order, with self-heal corrections between retries. It owns the registry
// of active sessions keyed by work item; all registry mutation happens
// under one mutex so concurrent starts cannot race past the
// one-session-per-work-item invariant.
type Orchestrator struct {
	executor Executor
	catalog  *catalog.Catalog
	monitor  *heal.Monitor
	store    *storage.Store
	logger   *slog.Logger

	// slots bounds how many sessions execute concurrently.
	slots chan struct{}

	mu     sync.Mutex
	active map[string]*activeSession
}

type activeSession struct {
	session *models.Session
	cancel  context.CancelFunc
}

func New(executor Executor, cat *catalog.Catalog, monitor *heal.Monitor, store *storage.Store, maxConcurrent int, logger *slog.Logger) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Orchestrator{
		executor: executor,
		catalog:  cat,
		monitor:  monitor,
		store:    store,
		logger:   logger.With("component", "orchestrator"),
		slots:    make(chan struct{}, maxConcurrent),
		active:   make(map[string]*activeSession),
	}
}

// Start creates and registers a session for a work item. It fails with
// ErrSessionActive while another session holds the same work item.
func (o *Orchestrator) Start(wf *workflow.Workflow, workItem string) (*models.Session, error) {
	if err := workflow.Validate(wf, o.catalog); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.active[workItem]; ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionActive, workItem)
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		WorkItem:  workItem,
		Workflow:  wf.Name,
		Status:    models.SessionPending,
		CreatedAt: time.Now(),
	}

	if err := o.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	o.active[workItem] = &activeSession{session: session}
	metrics.ActiveSessions.Inc()
	return session, nil
}

// Report is the phase-by-phase account of a finished session.
type Report struct {
	Session     *models.Session
	Phases      []models.PhaseOutcome
	Corrections []models.CorrectionAttempt
}

// Run executes the session's phases in order. It blocks until the
// session reaches a terminal state and always releases the work item.
// The returned error is nil for completed sessions; abandoned sessions
// return the terminal cause (RetryBudgetExceededError or ctx error).
func (o *Orchestrator) Run(ctx context.Context, session *models.Session, wf *workflow.Workflow, feature, dir string) (*Report, error) {
	defer o.release(session)

	select {
	case o.slots <- struct{}{}:
		defer func() { <-o.slots }()
	case <-ctx.Done():
		return o.abandon(session, nil, ctx.Err().Error()), ctx.Err()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.setCancel(session, cancel)

	session.Status = models.SessionRunning
	if err := o.store.UpdateSession(session); err != nil {
		return nil, err
	}

	budget := o.monitor.MaxAttempts()
	if wf.Settings != nil && wf.Settings.MaxCorrections > 0 {
		budget = wf.Settings.MaxCorrections
	}

	report := &Report{Session: session}

	for _, phase := range wf.Phases {
		// Cancellation is honored between phases; a cancelled in-flight
		// invocation surfaces below as a timed-out result.
		if runCtx.Err() != nil {
			return o.abandon(session, report, "cancelled"), runCtx.Err()
		}

		session.CurrentPhase = phase.Name
		if err := o.store.UpdateSession(session); err != nil {
			return nil, err
		}

		outcome, attempts, err := o.runPhase(runCtx, session, phase, feature, dir, budget)
		report.Phases = append(report.Phases, outcome)
		report.Corrections = append(report.Corrections, attempts...)
		if err != nil {
			reason := err.Error()
			if runCtx.Err() != nil {
				reason = "cancelled"
			}
			return o.abandon(session, report, reason), err
		}
	}

	now := time.Now()
	session.Status = models.SessionCompleted
	session.CompletedAt = &now
	if err := o.store.UpdateSession(session); err != nil {
		return nil, err
	}
	metrics.SessionsTotal.WithLabelValues(string(models.SessionCompleted)).Inc()
	o.logger.Info("session completed", "session_id", session.ID, "work_item", session.WorkItem)
	return report, nil
}

// runPhase executes one phase, dispatching bounded corrections until the
// phase passes or the budget is spent.
func (o *Orchestrator) runPhase(ctx context.Context, session *models.Session, phase workflow.Phase, feature, dir string, budget int) (models.PhaseOutcome, []models.CorrectionAttempt, error) {
	params := workflow.ExpandParams(phase.Params, feature)

	var attempts []models.CorrectionAttempt
	execAttempt := 0

	for {
		execAttempt++

		inv, err := o.catalog.Build(phase.Operation, params)
		if err != nil {
			// A phase whose template cannot resolve will never succeed;
			// retrying the identical build is pointless.
			return models.PhaseOutcome{Phase: phase.Name, Attempt: execAttempt}, attempts,
				fmt.Errorf("phase %q: %w", phase.Name, err)
		}
		inv.Dir = dir

		result := o.executor.Execute(ctx, inv)
		if err := o.store.AppendResult(session.ID, phase.Name, execAttempt, result); err != nil {
			return models.PhaseOutcome{Phase: phase.Name, Attempt: execAttempt, Result: result}, attempts, err
		}

		indicator, found := o.monitor.Inspect(ctx, result, dir)
		if result.OK() && !found {
			outcome := models.PhaseOutcome{
				Phase:       phase.Name,
				Attempt:     execAttempt,
				Result:      result,
				Corrections: len(attempts),
			}
			return outcome, attempts, nil
		}

		if !found {
			indicator = string(result.Status)
		}

		if len(attempts) >= budget {
			outcome := models.PhaseOutcome{
				Phase:       phase.Name,
				Attempt:     execAttempt,
				Result:      result,
				Corrections: len(attempts),
			}
			return outcome, attempts, &RetryBudgetExceededError{
				Phase:      phase.Name,
				Attempts:   attempts,
				LastResult: result,
			}
		}

		if ctx.Err() != nil {
			outcome := models.PhaseOutcome{Phase: phase.Name, Attempt: execAttempt, Result: result, Corrections: len(attempts)}
			return outcome, attempts, ctx.Err()
		}

		ca := o.monitor.Correct(ctx, session, phase.Name, len(attempts)+1, indicator, dir)
		if err := o.store.AppendCorrection(ca); err != nil {
			return models.PhaseOutcome{Phase: phase.Name, Attempt: execAttempt, Result: result}, attempts, err
		}
		attempts = append(attempts, ca)
	}
}

func (o *Orchestrator) abandon(session *models.Session, report *Report, reason string) *Report {
	now := time.Now()
	session.Status = models.SessionAbandoned
	session.Error = reason
	session.CompletedAt = &now
	if err := o.store.UpdateSession(session); err != nil {
		o.logger.Error("failed to persist abandoned session", "session_id", session.ID, "error", err)
	}
	metrics.SessionsTotal.WithLabelValues(string(models.SessionAbandoned)).Inc()
	o.logger.Warn("session abandoned", "session_id", session.ID, "work_item", session.WorkItem, "reason", reason)

	if report == nil {
		report = &Report{}
	}
	report.Session = session
	return report
}

func (o *Orchestrator) setCancel(session *models.Session, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if as, ok := o.active[session.WorkItem]; ok && as.session.ID == session.ID {
		as.cancel = cancel
	}
}

func (o *Orchestrator) release(session *models.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if as, ok := o.active[session.WorkItem]; ok && as.session.ID == session.ID {
		delete(o.active, session.WorkItem)
		metrics.ActiveSessions.Dec()
	}
}

// Cancel requests cancellation of an active session by id. The session
// abandons before its next phase, or immediately if the in-flight
// invocation is killed first. Returns false if no such active session.
func (o *Orchestrator) Cancel(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, as := range o.active {
		if as.session.ID == sessionID && as.cancel != nil {
			as.cancel()
			return true
		}
	}
	return false
}

// Read methods for the CLI and monitoring TUI.

func (o *Orchestrator) ListSessions(limit int) ([]*models.Session, error) {
	return o.store.ListSessions(limit)
}

func (o *Orchestrator) GetSession(id string) (*models.Session, error) {
	return o.store.GetSession(id)
}

func (o *Orchestrator) SessionResults(id string) ([]storage.PhaseResult, error) {
	return o.store.ListResults(id)
}

func (o *Orchestrator) SessionCorrections(id string) ([]models.CorrectionAttempt, error) {
	return o.store.ListCorrections(id)
}

// DeleteSession removes a terminal session and its logs. Active sessions
// must be cancelled first.
func (o *Orchestrator) DeleteSession(id string) error {
	o.mu.Lock()
	for _, as := range o.active {
		if as.session.ID == id {
			o.mu.Unlock()
			return fmt.Errorf("session %s is active; cancel it first", id)
		}
	}
	o.mu.Unlock()

	return o.store.DeleteSession(id)
}
