package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/flowdeck/flowdeck/internal/models"
)

var ErrUnknownOperation = errors.New("unknown operation")

// InvalidParamsError reports a parameter that is missing or fails
// validation. The caller must fix the request; nothing was executed.
type InvalidParamsError struct {
	Operation string
	Param     string
	Reason    string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameters for %s: %s: %s", e.Operation, e.Param, e.Reason)
}

type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
)

// Param declares one named parameter of an operation. Rules holds extra
// validator constraints applied on top of kind coercion, e.g. "gt=0".
type Param struct {
	Name     string
	Kind     Kind
	Required bool
	Rules    string
}

// Values carries caller-supplied parameters. Ints and bools may arrive
// as strings (CLI k=v input) or as native types (workflow YAML).
type Values map[string]any

type operation struct {
	name   string
	params []Param
	build  func(v resolved) []string
}

// Catalog maps logical operation names to argument-list templates for the
// wrapped orchestration tool. Registration happens once at construction
// and is read-only afterwards; Build is a pure function of its inputs.
type Catalog struct {
	base     []string
	timeout  time.Duration
	ops      map[string]operation
	validate *validator.Validate
}

// New builds the full operation set on top of the given base command
// (e.g. ["npx", "claude-flow@alpha"]). defaultTimeout is stamped on every
// Invocation; the runner enforces it.
func New(base []string, defaultTimeout time.Duration) *Catalog {
	c := &Catalog{
		base:     append([]string(nil), base...),
		timeout:  defaultTimeout,
		ops:      make(map[string]operation),
		validate: validator.New(),
	}
	c.registerAll()
	return c
}

// Build resolves an operation template into a fully concrete Invocation.
func (c *Catalog) Build(name string, params Values) (models.Invocation, error) {
	op, ok := c.ops[name]
	if !ok {
		return models.Invocation{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}

	vals, err := c.resolve(op, params)
	if err != nil {
		return models.Invocation{}, err
	}

	args := append(append([]string(nil), c.base...), op.build(vals)...)
	return models.Invocation{
		Operation: name,
		Args:      args,
		Timeout:   c.timeout,
	}, nil
}

// Has reports whether the operation is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.ops[name]
	return ok
}

// Operations returns all registered operation names, sorted.
func (c *Catalog) Operations() []string {
	names := make([]string, 0, len(c.ops))
	for name := range c.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params returns the parameter declarations for an operation.
func (c *Catalog) Params(name string) ([]Param, error) {
	op, ok := c.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return append([]Param(nil), op.params...), nil
}

// resolved holds coerced parameter values keyed by name.
type resolved map[string]any

func (v resolved) str(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v resolved) num(name string) (int, bool) {
	n, ok := v[name].(int)
	return n, ok
}

func (v resolved) has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v resolved) flag(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (c *Catalog) resolve(op operation, params Values) (resolved, error) {
	known := make(map[string]bool, len(op.params))
	for _, p := range op.params {
		known[p.Name] = true
	}
	for name := range params {
		if !known[name] {
			return nil, &InvalidParamsError{Operation: op.name, Param: name, Reason: "not a parameter of this operation"}
		}
	}

	out := make(resolved, len(params))
	for _, p := range op.params {
		raw, ok := params[p.Name]
		if !ok || raw == nil {
			if p.Required {
				return nil, &InvalidParamsError{Operation: op.name, Param: p.Name, Reason: "required parameter missing"}
			}
			continue
		}

		val, err := coerce(p.Kind, raw)
		if err != nil {
			return nil, &InvalidParamsError{Operation: op.name, Param: p.Name, Reason: err.Error()}
		}

		if p.Rules != "" {
			if err := c.validate.Var(val, p.Rules); err != nil {
				return nil, &InvalidParamsError{Operation: op.name, Param: p.Name, Reason: fmt.Sprintf("must satisfy %q", p.Rules)}
			}
		}

		out[p.Name] = val
	}
	return out, nil
}

func coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", raw)

	case KindInt:
		switch n := raw.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			return int(n), nil
		case string:
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", n)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("expected integer, got %T", raw)

	case KindBool:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("expected bool, got %q", b)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("expected bool, got %T", raw)
	}
	return nil, fmt.Errorf("unknown parameter kind %q", kind)
}
