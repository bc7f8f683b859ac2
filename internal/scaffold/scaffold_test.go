package scaffold

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowdeck/flowdeck/internal/docgen"
)

type fakeGenerator struct {
	fail  bool
	kinds []docgen.Kind
}

func (g *fakeGenerator) Generate(ctx context.Context, idea string, kind docgen.Kind) (string, error) {
	g.kinds = append(g.kinds, kind)
	if g.fail {
		return "", errors.New("model unavailable")
	}
	return "# " + string(kind) + "\n\ngenerated for " + idea + "\n", nil
}

func testScaffolder(t *testing.T, gen Generator) *Scaffolder {
	t.Helper()
	return New(t.TempDir(), gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Task Manager Web App", "task-manager-web-app"},
		{"  CLI --- tool!  ", "cli-tool"},
		{"ALREADY-fine", "already-fine"},
		{"???", "project"},
		{"", "project"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInferTemplate(t *testing.T) {
	tests := []struct {
		idea string
		want string
	}{
		{"a web dashboard for metrics", "webapp"},
		{"backend service for billing", "webapp"},
		{"a terminal todo manager", "cli-tool"},
		{"etl data pipeline for logs", "data-pipeline"},
		{"split the monolith into microservices", "microservices"},
		{"something unclassifiable", ""},
	}
	for _, tt := range tests {
		if got := InferTemplate(tt.idea); got != tt.want {
			t.Errorf("InferTemplate(%q) = %q, want %q", tt.idea, got, tt.want)
		}
	}
}

func TestCreate_LaysOutTemplate(t *testing.T) {
	gen := &fakeGenerator{}
	s := testScaffolder(t, gen)

	result, err := s.Create(context.Background(), "task manager web app", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.Template != "webapp" {
		t.Errorf("Template = %q, want webapp", result.Template)
	}
	if filepath.Base(result.Path) != "task-manager-web-app" {
		t.Errorf("Path = %q, want slug directory", result.Path)
	}

	for _, dir := range []string{"docs", "frontend/src", "backend/src", "backend/tests"} {
		info, err := os.Stat(filepath.Join(result.Path, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s missing", dir)
		}
	}
	for _, file := range []string{"README.md", "backend/src/server.js", "frontend/src/index.html"} {
		if _, err := os.Stat(filepath.Join(result.Path, file)); err != nil {
			t.Errorf("file %s missing", file)
		}
	}
}

func TestCreate_GeneratesAllDocuments(t *testing.T) {
	gen := &fakeGenerator{}
	s := testScaffolder(t, gen)

	result, err := s.Create(context.Background(), "a terminal todo manager", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wantDocs := []string{"concept.md", "requirements.md", "design.md", "testing.md"}
	if len(result.Documents) != len(wantDocs) {
		t.Fatalf("Documents = %v, want %v", result.Documents, wantDocs)
	}
	for i, name := range wantDocs {
		if result.Documents[i] != name {
			t.Errorf("document %d = %q, want %q", i, result.Documents[i], name)
		}
		data, err := os.ReadFile(filepath.Join(result.Path, name))
		if err != nil {
			t.Fatalf("document %s missing: %v", name, err)
		}
		if !strings.Contains(string(data), "generated for") {
			t.Errorf("document %s is not the generated content: %q", name, data)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if len(gen.kinds) != 4 {
		t.Errorf("generator called %d times, want 4", len(gen.kinds))
	}
}

func TestCreate_GenerationFailureDegradesToDefaults(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	s := testScaffolder(t, gen)

	result, err := s.Create(context.Background(), "etl data pipeline", "")
	if err != nil {
		t.Fatalf("Create failed despite degraded generation: %v", err)
	}

	if len(result.Warnings) != 4 {
		t.Errorf("got %d warnings, want 4", len(result.Warnings))
	}
	data, err := os.ReadFile(filepath.Join(result.Path, "concept.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Placeholder") {
		t.Errorf("fallback document missing placeholder marker: %q", data)
	}
}

func TestCreate_NilGeneratorUsesDefaults(t *testing.T) {
	s := testScaffolder(t, nil)

	result, err := s.Create(context.Background(), "anything", "cli-tool")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(result.Warnings) != 4 {
		t.Errorf("got %d warnings, want 4", len(result.Warnings))
	}
	if result.Template != "cli-tool" {
		t.Errorf("explicit template not honored: %q", result.Template)
	}
}
