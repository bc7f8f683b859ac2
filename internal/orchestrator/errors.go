package orchestrator

import (
	"errors"
	"fmt"

	"github.com/flowdeck/flowdeck/internal/models"
)

// ErrSessionActive is returned when a session is started for a work item
// that already has one in flight. The caller must cancel the existing
// session explicitly; two sessions never run against the same target.
var ErrSessionActive = errors.New("work item already has an active session")

// RetryBudgetExceededError is the terminal failure of a session: a phase
// kept failing after the full correction budget was spent. It carries
// the accumulated attempt history so a human can diagnose the phase.
type RetryBudgetExceededError struct {
	Phase      string
	Attempts   []models.CorrectionAttempt
	LastResult models.ExecutionResult
}

func (e *RetryBudgetExceededError) Error() string {
	return fmt.Sprintf("phase %q exceeded correction budget after %d attempts (last status %s)",
		e.Phase, len(e.Attempts), e.LastResult.Status)
}
