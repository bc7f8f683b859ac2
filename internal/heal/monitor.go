package heal

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowdeck/flowdeck/internal/catalog"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/models"
)

// Executor runs fully resolved invocations; satisfied by *runner.Runner.
type Executor interface {
	Execute(ctx context.Context, inv models.Invocation) models.ExecutionResult
}

// Options configures the monitor's correction policy.
type Options struct {
	// MaxAttempts is the correction budget per phase. It must be finite;
	// zero or negative values fall back to the default of 3.
	MaxAttempts int
	// FixOperation and FixParams describe the corrective invocation
	// dispatched when an indicator is found.
	FixOperation string
	FixParams    catalog.Values
	// ProbeMemory additionally queries the tool's shared memory for the
	// indicator term after each phase, mirroring the wrapped tool's
	// auto-correct behavior.
	ProbeMemory bool
	ProbeTerm   string
}

// Monitor scans execution results for failure indicators and dispatches
// bounded corrective invocations. Phase retry decisions stay with the
// orchestrator; the monitor only detects and corrects.
type Monitor struct {
	detector Detector
	executor Executor
	catalog  *catalog.Catalog
	opts     Options
	logger   *slog.Logger
}

func NewMonitor(detector Detector, executor Executor, cat *catalog.Catalog, opts Options, logger *slog.Logger) *Monitor {
	if detector == nil {
		detector = DefaultDetector()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.FixOperation == "" {
		opts.FixOperation = "swarm"
		opts.FixParams = catalog.Values{
			"task":             "Fix detected errors",
			"continue_session": true,
		}
	}
	if opts.ProbeTerm == "" {
		opts.ProbeTerm = "error"
	}
	return &Monitor{
		detector: detector,
		executor: executor,
		catalog:  cat,
		opts:     opts,
		logger:   logger.With("component", "monitor"),
	}
}

// MaxAttempts returns the per-phase correction budget.
func (m *Monitor) MaxAttempts() int {
	return m.opts.MaxAttempts
}

// Inspect scans a phase result, and optionally the tool's shared memory,
// for a failure indicator. A zero exit code does not suppress scanning.
func (m *Monitor) Inspect(ctx context.Context, result models.ExecutionResult, dir string) (string, bool) {
	if indicator, found := m.detector.Inspect(result); found {
		return indicator, true
	}

	if !m.opts.ProbeMemory {
		return "", false
	}

	inv, err := m.catalog.Build("memory-query", catalog.Values{
		"term":  m.opts.ProbeTerm,
		"limit": 1,
	})
	if err != nil {
		m.logger.Warn("memory probe build failed", "error", err)
		return "", false
	}
	inv.Dir = dir

	probe := m.executor.Execute(ctx, inv)
	if probe.Status == models.ResultProcessError {
		// A broken probe must not fail the phase.
		m.logger.Warn("memory probe failed", "reason", probe.Reason)
		return "", false
	}

	return m.detector.Inspect(probe)
}

// Correct builds the configured fix invocation, runs it, and returns the
// recorded attempt. The caller appends it to the session history and
// enforces the budget.
func (m *Monitor) Correct(ctx context.Context, session *models.Session, phase string, attempt int, indicator string, dir string) models.CorrectionAttempt {
	ca := models.CorrectionAttempt{
		SessionID: session.ID,
		Phase:     phase,
		Attempt:   attempt,
		Indicator: indicator,
		At:        time.Now(),
	}

	inv, err := m.catalog.Build(m.opts.FixOperation, m.opts.FixParams)
	if err != nil {
		// A misconfigured fix operation still counts against the budget,
		// otherwise a bad config would retry forever.
		m.logger.Error("fix invocation build failed", "error", err)
		ca.Operation = m.opts.FixOperation
		ca.Result = models.ExecutionResult{
			Operation: m.opts.FixOperation,
			Status:    models.ResultProcessError,
			Reason:    "fix_build_failed",
			StartedAt: ca.At,
		}
		return ca
	}
	inv.Dir = dir

	m.logger.Info("dispatching correction",
		"session_id", session.ID,
		"phase", phase,
		"attempt", attempt,
		"indicator", indicator)

	ca.Operation = inv.Operation
	ca.Args = inv.Args
	ca.Result = m.executor.Execute(ctx, inv)
	metrics.CorrectionsTotal.WithLabelValues(phase).Inc()
	return ca
}
