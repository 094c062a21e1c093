package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/threshold"
)

// ErrNotBool is returned when an expression does not produce a bool.
var ErrNotBool = errors.New("expression must return a bool")

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment]. The `band` function and band
// constants use th.
func NewEnvironment(th threshold.Thresholds, opts ...cel.EnvOption) (*Environment, error) {
	env, err := createEnvironment(th, opts...)
	if err != nil {
		return nil, err
	}

	return &Environment{env: env}, nil
}

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(th threshold.Thresholds, opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(th, opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// createEnvironment creates the [*cel.Env] using the global mutex.
func createEnvironment(th threshold.Thresholds, opts ...cel.EnvOption) (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts,
		cel.Variable("score", cel.DoubleType),
		cel.Variable("column", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("student", cel.StringType),
		cel.Variable("average", cel.DoubleType),
		cel.Variable("index", cel.IntType),
		cel.Lib(&lib{thresholds: th}),
	)

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return celEnv, nil
}

// Compile compiles a CEL expression. Expressions whose type is known not to
// be bool are rejected here; dynamically typed ones are checked on every
// evaluation.
func (e *Environment) Compile(expression string) (*Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, out)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return &Program{prg: program, src: expression}, nil
}

// Cell is the input to a single evaluation.
type Cell struct {
	Column   string
	Category category.Category
	Student  string
	Score    float64
	Average  float64
	Index    int
}

// Program is a compiled expression. It is safe for concurrent use.
type Program struct {
	prg cel.Program
	src string
}

// Eval evaluates the program for one cell.
func (p *Program) Eval(c Cell) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{
		"score":    c.Score,
		"column":   c.Column,
		"category": string(c.Category),
		"student":  c.Student,
		"average":  c.Average,
		"index":    int64(c.Index),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.src, err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: %w, got %s", p.src, ErrNotBool, result.Type().TypeName())
	}

	return b, nil
}

func (p *Program) String() string {
	return p.src
}
