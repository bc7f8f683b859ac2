package models

import "time"

// CorrectionAttempt records one self-heal cycle: which phase tripped the
// detector, what it saw, and how the corrective invocation went.
type CorrectionAttempt struct {
	SessionID string
	Phase     string
	Attempt   int
	Indicator string
	Operation string
	Args      []string
	Result    ExecutionResult
	At        time.Time
}
