package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Phase is one ordered step of a workflow: a logical operation plus the
// parameters used to build its invocation. String parameter values may
// contain the "{feature}" token, which the orchestrator substitutes with
// the session's feature description before the catalog resolves them.
type Phase struct {
	Name      string         `yaml:"name"`
	Operation string         `yaml:"operation"`
	Params    map[string]any `yaml:"params"`
}

type Settings struct {
	// MaxCorrections overrides the configured self-heal budget for
	// sessions of this workflow. Zero means "use the global default".
	MaxCorrections int `yaml:"max_corrections"`
}

// Workflow is a named, strictly ordered phase sequence.
type Workflow struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Phases      []Phase   `yaml:"phases"`
	Settings    *Settings `yaml:"settings"`
}

func Parse(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow YAML: %w", err)
	}

	if wf.Name == "" {
		base := filepath.Base(path)
		wf.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
	}
	if wf.Settings == nil {
		wf.Settings = &Settings{}
	}

	return &wf, nil
}

// LoadAll reads workflow definitions from the given directories and
// merges them over the built-in set. Missing directories are skipped;
// user definitions shadow built-ins of the same name.
func LoadAll(dirs []string) (map[string]*Workflow, error) {
	workflows := Builtin()

	for _, dir := range dirs {
		if err := loadFromDir(dir, workflows); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}

	return workflows, nil
}

func loadFromDir(dir string, workflows map[string]*Workflow) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		wf, err := Parse(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		workflows[wf.Name] = wf
	}

	return nil
}

// OperationSet is the part of the catalog the validator needs.
type OperationSet interface {
	Has(name string) bool
}

func Validate(wf *Workflow, ops OperationSet) error {
	if wf.Name == "" {
		return fmt.Errorf("workflow must have a name")
	}
	if len(wf.Phases) == 0 {
		return fmt.Errorf("workflow %q must define at least one phase", wf.Name)
	}

	seen := make(map[string]bool, len(wf.Phases))
	for i, phase := range wf.Phases {
		if phase.Name == "" {
			return fmt.Errorf("workflow %q: phase %d has no name", wf.Name, i+1)
		}
		if seen[phase.Name] {
			return fmt.Errorf("workflow %q: duplicate phase %q", wf.Name, phase.Name)
		}
		seen[phase.Name] = true

		if phase.Operation == "" {
			return fmt.Errorf("workflow %q: phase %q has no operation", wf.Name, phase.Name)
		}
		if !ops.Has(phase.Operation) {
			return fmt.Errorf("workflow %q: phase %q references unknown operation %q", wf.Name, phase.Name, phase.Operation)
		}
	}

	return nil
}

// ExpandParams substitutes the "{feature}" token in string parameter
// values. The result is a fresh map; phase templates stay untouched.
func ExpandParams(params map[string]any, feature string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			out[k] = strings.ReplaceAll(s, "{feature}", feature)
			continue
		}
		out[k] = v
	}
	return out
}
