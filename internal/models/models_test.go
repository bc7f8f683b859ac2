package models

import "testing"

func TestSessionStatusTerminal(t *testing.T) {
	if SessionPending.Terminal() || SessionRunning.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !SessionCompleted.Terminal() || !SessionAbandoned.Terminal() {
		t.Error("terminal status not reported terminal")
	}
}

func TestExecutionResultOK(t *testing.T) {
	if !(ExecutionResult{Status: ResultSuccess}).OK() {
		t.Error("success not OK")
	}
	for _, status := range []ResultStatus{ResultFailure, ResultTimedOut, ResultProcessError} {
		if (ExecutionResult{Status: status}).OK() {
			t.Errorf("%s reported OK", status)
		}
	}
}
