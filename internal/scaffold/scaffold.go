package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowdeck/flowdeck/internal/docgen"
)

// Generator produces planning documents; satisfied by *docgen.Client.
// A nil Generator means "no token configured": scaffolding proceeds with
// template defaults only.
type Generator interface {
	Generate(ctx context.Context, idea string, kind docgen.Kind) (string, error)
}

// Scaffolder lays out project directories from named templates and fills
// them with generated planning documents when a generator is available.
type Scaffolder struct {
	baseDir string
	gen     Generator
	logger  *slog.Logger
}

func New(baseDir string, gen Generator, logger *slog.Logger) *Scaffolder {
	return &Scaffolder{
		baseDir: baseDir,
		gen:     gen,
		logger:  logger.With("component", "scaffold"),
	}
}

// Result reports what was laid out, including warnings for any document
// that fell back to template defaults.
type Result struct {
	Path      string
	Template  string
	Documents []string
	Warnings  []string
}

var (
	slugPattern   = regexp.MustCompile(`[^a-z0-9-]+`)
	dashPattern   = regexp.MustCompile(`-+`)
	documentKinds = []docgen.Kind{
		docgen.KindConcept,
		docgen.KindRequirements,
		docgen.KindDesign,
		docgen.KindTesting,
	}
)

// Slugify converts a free-form idea into a directory name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(dashPattern.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		return "project"
	}
	return slug
}

// InferTemplate guesses a template from keywords in the idea. Empty
// string means no template applies.
func InferTemplate(idea string) string {
	text := strings.ToLower(idea)
	switch {
	case strings.Contains(text, "web") || strings.Contains(text, "frontend") || strings.Contains(text, "backend"):
		return "webapp"
	case strings.Contains(text, "cli") || strings.Contains(text, "terminal") || strings.Contains(text, "console"):
		return "cli-tool"
	case strings.Contains(text, "data") || strings.Contains(text, "pipeline"):
		return "data-pipeline"
	case strings.Contains(text, "microservice"):
		return "microservices"
	}
	return ""
}

// Create lays out a project directory for the idea. Document generation
// failures degrade to template defaults and are recorded as warnings;
// they never abort the scaffold.
func (s *Scaffolder) Create(ctx context.Context, idea, template string) (*Result, error) {
	if template == "" {
		template = InferTemplate(idea)
	}

	slug := Slugify(idea)
	path := filepath.Join(s.baseDir, slug)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	result := &Result{Path: path, Template: template}

	for _, dir := range templateDirs(template) {
		if err := os.MkdirAll(filepath.Join(path, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	for name, content := range templateFiles(template, idea) {
		target := filepath.Join(path, name)
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	for _, kind := range documentKinds {
		name := string(kind) + ".md"
		content, err := s.generateDocument(ctx, idea, kind)
		if err != nil {
			warning := fmt.Sprintf("%s: generation failed, wrote template default (%v)", name, err)
			s.logger.Warn("document generation failed", "kind", kind, "error", err)
			result.Warnings = append(result.Warnings, warning)
			content = defaultDocument(kind, idea)
		}
		if err := os.WriteFile(filepath.Join(path, name), []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		result.Documents = append(result.Documents, name)
	}

	return result, nil
}

func (s *Scaffolder) generateDocument(ctx context.Context, idea string, kind docgen.Kind) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("no document generator configured")
	}
	return s.gen.Generate(ctx, idea, kind)
}

func defaultDocument(kind docgen.Kind, idea string) string {
	title := string(kind)
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	return fmt.Sprintf("# %s\n\n> Placeholder generated without a document model.\n\nIdea: %s\n",
		title, idea)
}
