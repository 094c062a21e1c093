package rule

import (
	"errors"
	"fmt"

	"github.com/macropower/standing/pkg/expr"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/weight"
)

// ErrNotCompiled is returned when a rule has neither a predicate nor a match
// expression.
var ErrNotCompiled = errors.New("rule has no predicate")

// Rule pairs a [Predicate] with the [style.Style] merged into every cell it
// selects.
//
// Rules built in code carry a [Predicate] directly. Rules loaded from
// configuration carry a CEL Match expression instead, which [Rule.Compile]
// turns into an [ExpressionPredicate]. Match expressions have access to the
// variables and functions described in package expr, e.g.:
//   - category == category.EXAM && score < 50.0 - failing exam cells
//   - band(average) == band.CRITICAL - cells where the student is at risk
//   - column.startsWith("Bonus") - a column by name
type Rule struct {
	predicate Predicate // Compiled predicate.

	// Name identifies the rule in errors and plans.
	Name string `json:"name" jsonschema:"title=Name"`
	// Scope is the region of the table the rule covers.
	Scope Scope `json:"scope,omitempty" jsonschema:"title=Scope"`
	// Match is a CEL expression evaluated once per cell in scope.
	Match string `json:"match,omitempty" jsonschema:"title=Match Expression"`
	// Style is merged into every selected cell.
	Style style.Style `json:"style" jsonschema:"title=Style"`
}

// New creates a rule with a compiled predicate.
func New(name string, scope Scope, p Predicate, s style.Style) (*Rule, error) {
	r := &Rule{
		predicate: p,
		Name:      name,
		Scope:     scope,
		Style:     s,
	}

	err := r.Validate()
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}

	return r, nil
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(name string, scope Scope, p Predicate, s style.Style) *Rule {
	r, err := New(name, scope, p, s)
	if err != nil {
		panic(err)
	}

	return r
}

// Validate checks the rule's scope and style. An empty scope defaults to
// [ScopeScores].
func (r *Rule) Validate() error {
	if r.Scope == "" {
		r.Scope = ScopeScores
	}

	err := r.Scope.Validate()
	if err != nil {
		return err
	}

	err = r.Style.Validate()
	if err != nil {
		return err
	}

	if r.predicate == nil && r.Match == "" {
		return ErrNotCompiled
	}

	return nil
}

// Compile validates the rule and compiles its match expression, if it has no
// predicate yet. Compiling twice is a no-op.
func (r *Rule) Compile(env *expr.Environment, calc *weight.Calculator) error {
	err := r.Validate()
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}

	if r.predicate != nil {
		return nil
	}

	p, err := Expression(env, calc, r.Match)
	if err != nil {
		return fmt.Errorf("rule %q: compile match expression: %w", r.Name, err)
	}

	r.predicate = p

	return nil
}

// Predicate returns the compiled predicate, or nil.
func (r *Rule) Predicate() Predicate {
	return r.predicate
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s (%s): %s", r.Name, r.Scope, r.Style)
}
