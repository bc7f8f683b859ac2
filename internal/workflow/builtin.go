package workflow

// Builtin returns the workflows that ship with the binary. The sdlc
// workflow drives the wrapped tool through the classic phase sequence:
// requirements analysis, architecture, TDD implementation, testing, and
// release coordination.
func Builtin() map[string]*Workflow {
	sdlc := &Workflow{
		Name:        "sdlc",
		Description: "Requirements, design, implementation, test, and deployment phases for one feature.",
		Phases: []Phase{
			{
				Name:      "requirements",
				Operation: "sparc-run",
				Params: map[string]any{
					"mode":     "spec-pseudocode",
					"task":     "analyse requirements for {feature}",
					"parallel": true,
				},
			},
			{
				Name:      "design",
				Operation: "sparc-run",
				Params: map[string]any{
					"mode":     "architect",
					"task":     "design architecture for {feature}",
					"parallel": true,
				},
			},
			{
				Name:      "implement",
				Operation: "sparc-tdd",
				Params: map[string]any{
					"feature":   "implement {feature}",
					"batch_tdd": true,
				},
			},
			{
				Name:      "test",
				Operation: "sparc-run",
				Params: map[string]any{
					"mode":     "testing",
					"task":     "run tests for {feature}",
					"parallel": true,
				},
			},
			{
				Name:      "deploy",
				Operation: "github-release-coord",
				Params: map[string]any{
					"version":        "0.1.0",
					"auto_changelog": true,
				},
			},
			{
				Name:      "release",
				Operation: "sparc-run",
				Params: map[string]any{
					"mode":     "ci-cd",
					"task":     "prepare release pipeline for {feature}",
					"parallel": true,
				},
			},
		},
		Settings: &Settings{},
	}

	return map[string]*Workflow{sdlc.Name: sdlc}
}
