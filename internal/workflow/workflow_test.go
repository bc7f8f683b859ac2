package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowdeck/flowdeck/internal/catalog"
)

func testOps() *catalog.Catalog {
	return catalog.New([]string{"npx", "claude-flow@alpha"}, time.Minute)
}

func TestBuiltin_SdlcValidates(t *testing.T) {
	workflows := Builtin()

	wf, ok := workflows["sdlc"]
	if !ok {
		t.Fatal("builtin set has no sdlc workflow")
	}
	if err := Validate(wf, testOps()); err != nil {
		t.Errorf("sdlc failed validation: %v", err)
	}

	wantPhases := []string{"requirements", "design", "implement", "test", "deploy", "release"}
	if len(wf.Phases) != len(wantPhases) {
		t.Fatalf("sdlc has %d phases, want %d", len(wf.Phases), len(wantPhases))
	}
	for i, name := range wantPhases {
		if wf.Phases[i].Name != name {
			t.Errorf("phase %d = %q, want %q", i, wf.Phases[i].Name, name)
		}
	}
}

func TestValidate_RejectsUnknownOperation(t *testing.T) {
	wf := &Workflow{
		Name: "broken",
		Phases: []Phase{
			{Name: "first", Operation: "no-such-op"},
		},
	}
	if err := Validate(wf, testOps()); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestValidate_RejectsDuplicatePhaseNames(t *testing.T) {
	wf := &Workflow{
		Name: "dup",
		Phases: []Phase{
			{Name: "build", Operation: "swarm"},
			{Name: "build", Operation: "swarm"},
		},
	}
	if err := Validate(wf, testOps()); err == nil {
		t.Error("expected error for duplicate phase names")
	}
}

func TestValidate_RejectsEmptyWorkflow(t *testing.T) {
	if err := Validate(&Workflow{Name: "empty"}, testOps()); err == nil {
		t.Error("expected error for workflow without phases")
	}
}

func TestExpandParams_SubstitutesFeatureToken(t *testing.T) {
	params := map[string]any{
		"task":     "implement {feature} with tests",
		"parallel": true,
		"count":    3,
	}

	out := ExpandParams(params, "user login")

	if out["task"] != "implement user login with tests" {
		t.Errorf("task = %q", out["task"])
	}
	if out["parallel"] != true {
		t.Errorf("parallel = %v, want true", out["parallel"])
	}
	if out["count"] != 3 {
		t.Errorf("count = %v, want 3", out["count"])
	}

	// The template itself must stay untouched.
	if params["task"] != "implement {feature} with tests" {
		t.Errorf("template mutated: %q", params["task"])
	}
}

func TestParse_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.yaml")
	content := `name: review
description: quick review flow
phases:
  - name: scan
    operation: security-scan
    params:
      deep: true
  - name: analyze
    operation: cognitive-analyze
    params:
      behavior: "review {feature}"
settings:
  max_corrections: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	wf, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if wf.Name != "review" {
		t.Errorf("Name = %q, want review", wf.Name)
	}
	if len(wf.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(wf.Phases))
	}
	if wf.Phases[0].Params["deep"] != true {
		t.Errorf("deep = %v, want true", wf.Phases[0].Params["deep"])
	}
	if wf.Settings.MaxCorrections != 5 {
		t.Errorf("MaxCorrections = %d, want 5", wf.Settings.MaxCorrections)
	}
	if err := Validate(wf, testOps()); err != nil {
		t.Errorf("parsed workflow failed validation: %v", err)
	}
}

func TestParse_NameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hotfix.yml")
	content := `phases:
  - name: fix
    operation: swarm
    params:
      task: "fix {feature}"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	wf, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if wf.Name != "hotfix" {
		t.Errorf("Name = %q, want hotfix", wf.Name)
	}
}

func TestLoadAll_UserDefinitionShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	content := `name: sdlc
phases:
  - name: only
    operation: hive-status
`
	if err := os.WriteFile(filepath.Join(dir, "sdlc.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	workflows, err := LoadAll([]string{dir, filepath.Join(dir, "missing")})
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	wf := workflows["sdlc"]
	if wf == nil {
		t.Fatal("sdlc missing after load")
	}
	if len(wf.Phases) != 1 || wf.Phases[0].Name != "only" {
		t.Errorf("builtin sdlc not shadowed: %+v", wf.Phases)
	}
}
