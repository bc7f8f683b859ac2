package heal

import (
	"strings"

	"github.com/flowdeck/flowdeck/internal/models"
)

// Detector decides whether captured output carries a failure indicator.
// It is a strategy: the default substring scan can be swapped for
// structured-output inspection without touching the orchestrator.
type Detector interface {
	Inspect(result models.ExecutionResult) (indicator string, found bool)
}

// SubstringDetector flags a result when any needle occurs in its output,
// case-insensitively, regardless of exit code. This mirrors the original
// shell's "search memory for the word error" trigger. It is a knowingly
// weak heuristic with false positives on any output mentioning a needle;
// use a Lua detector for anything stricter.
type SubstringDetector struct {
	Needles []string
}

// DefaultDetector scans for the literal substring "error".
func DefaultDetector() *SubstringDetector {
	return &SubstringDetector{Needles: []string{"error"}}
}

func (d *SubstringDetector) Inspect(result models.ExecutionResult) (string, bool) {
	combined := strings.ToLower(result.Stdout + "\n" + result.Stderr)
	for _, needle := range d.Needles {
		if needle == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(needle)) {
			return needle, true
		}
	}
	return "", false
}
