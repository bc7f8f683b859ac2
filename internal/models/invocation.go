package models

import "time"

// Invocation is a fully resolved description of one external command
// execution: every argument is concrete before it reaches the runner.
type Invocation struct {
	Operation string
	Args      []string
	Env       map[string]string
	Dir       string
	Timeout   time.Duration
}
