package models

import "time"

type ResultStatus string

const (
	ResultSuccess      ResultStatus = "success"
	ResultFailure      ResultStatus = "failure"
	ResultTimedOut     ResultStatus = "timed_out"
	ResultProcessError ResultStatus = "process_error"
)

// ExecutionResult is the outcome of running one Invocation. It is created
// by the runner and never mutated afterwards; command failure and timeout
// are statuses here, not Go errors.
type ExecutionResult struct {
	Operation string
	Status    ResultStatus
	ExitCode  int
	Stdout    string
	Stderr    string
	// Reason classifies process_error outcomes (command_not_found,
	// start_failed, bad_workdir). Empty otherwise.
	Reason    string
	StartedAt time.Time
	Duration  time.Duration
}

// OK reports whether the command ran to completion with a zero exit code.
func (r ExecutionResult) OK() bool {
	return r.Status == ResultSuccess
}
