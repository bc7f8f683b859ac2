package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/models"
)

const (
	// waitDelay bounds how long we wait for pipes to drain after the
	// process group has been killed.
	waitDelay = 3 * time.Second

	ReasonCommandNotFound = "command_not_found"
	ReasonStartFailed     = "start_failed"
	ReasonBadWorkdir      = "bad_workdir"
)

// Runner executes fully resolved Invocations one at a time. It performs
// no retries; retry policy lives in the orchestrator and the self-heal
// monitor.
type Runner struct {
	overlay        map[string]string
	defaultTimeout time.Duration
	captureLimit   int
	logger         *slog.Logger
}

type Options struct {
	// Overlay is merged over the ambient environment for every
	// invocation, below the invocation's own overlay. Used for
	// credentials loaded from config.
	Overlay        map[string]string
	DefaultTimeout time.Duration
	// CaptureLimit caps how many bytes of each stream are kept.
	CaptureLimit int
}

func New(opts Options, logger *slog.Logger) *Runner {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 10 * time.Minute
	}
	if opts.CaptureLimit <= 0 {
		opts.CaptureLimit = 1 << 20
	}
	return &Runner{
		overlay:        opts.Overlay,
		defaultTimeout: opts.DefaultTimeout,
		captureLimit:   opts.CaptureLimit,
		logger:         logger.With("component", "runner"),
	}
}

// Execute runs one invocation and classifies the outcome. Ordinary
// command failure and timeout are result statuses, never Go errors.
func (r *Runner) Execute(ctx context.Context, inv models.Invocation) models.ExecutionResult {
	started := time.Now()
	result := models.ExecutionResult{
		Operation: inv.Operation,
		StartedAt: started,
	}

	if len(inv.Args) == 0 {
		result.Status = models.ResultProcessError
		result.Reason = ReasonStartFailed
		return r.finish(result, started)
	}

	if inv.Dir != "" {
		if info, err := os.Stat(inv.Dir); err != nil || !info.IsDir() {
			result.Status = models.ResultProcessError
			result.Reason = ReasonBadWorkdir
			return r.finish(result, started)
		}
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, inv.Args[0], inv.Args[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = mergeEnv(os.Environ(), r.overlay, inv.Env)

	stdout := newCappedBuffer(r.captureLimit)
	stderr := newCappedBuffer(r.captureLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Run the child in its own process group so cancellation takes the
	// whole tree down, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	r.logger.Info("executing", "operation", inv.Operation, "args", inv.Args, "timeout", timeout)

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	switch {
	case err == nil:
		result.Status = models.ResultSuccess

	case execCtx.Err() != nil:
		// Deadline expiry and forced cancellation both land here; the
		// process group is already dead and partial output is kept.
		result.Status = models.ResultTimedOut

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Status = models.ResultFailure
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Status = models.ResultProcessError
			result.Reason = classifyStartError(err)
		}
	}

	return r.finish(result, started)
}

func (r *Runner) finish(result models.ExecutionResult, started time.Time) models.ExecutionResult {
	result.Duration = time.Since(started)
	metrics.InvocationsTotal.WithLabelValues(result.Operation, string(result.Status)).Inc()
	r.logger.Info("executed",
		"operation", result.Operation,
		"status", result.Status,
		"exit_code", result.ExitCode,
		"duration", result.Duration)
	return result
}

func classifyStartError(err error) string {
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return ReasonCommandNotFound
	}

	// On some platforms the underlying error surfaces as a PathError.
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, exec.ErrNotFound) {
		return ReasonCommandNotFound
	}

	return ReasonStartFailed
}

// mergeEnv layers overlays on top of a base environment without touching
// process-wide state; later overlays win.
func mergeEnv(base []string, overlays ...map[string]string) []string {
	env := append([]string(nil), base...)
	for _, overlay := range overlays {
		for k, v := range overlay {
			env = append(env, k+"="+v)
		}
	}
	return env
}
