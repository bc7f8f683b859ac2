package models

import "time"

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the session can no longer make progress.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// Session is one logical run of a multi-phase workflow against a work
// item. At most one active session exists per work item; the registry in
// the orchestrator enforces that.
type Session struct {
	ID           string
	WorkItem     string
	Workflow     string
	Status       SessionStatus
	CurrentPhase string
	// Error holds the abandonment reason for abandoned sessions.
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// PhaseOutcome is one row of the phase-by-phase session report.
type PhaseOutcome struct {
	Phase       string
	Attempt     int
	Result      ExecutionResult
	Corrections int
}
