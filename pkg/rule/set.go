package rule

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/standing/pkg/log"
	"github.com/macropower/standing/pkg/mask"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
)

// Evaluation is a rule together with the mask it produced for a table.
type Evaluation struct {
	Rule *Rule
	Mask *mask.Mask
}

// Set is an ordered list of rules. Order is overlay priority: the style of a
// later rule overrides the fields set by earlier ones.
type Set struct {
	tracer trace.Tracer
	rules  []*Rule
}

// NewSet creates a [Set] from rules, in priority order.
func NewSet(rules ...*Rule) *Set {
	return &Set{
		tracer: otel.Tracer("rule"),
		rules:  slices.Clone(rules),
	}
}

// With returns a new [Set] with rules appended after the existing ones.
func (s *Set) With(rules ...*Rule) *Set {
	return NewSet(append(slices.Clone(s.rules), rules...)...)
}

// Rules returns the rules in priority order.
func (s *Set) Rules() []*Rule {
	return slices.Clone(s.rules)
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// Evaluate runs every rule's predicate against t and returns the masks in
// rule order. Predicates run concurrently; the first error cancels the rest.
// Each mask is checked against its rule's [Scope.Shape].
func (s *Set) Evaluate(ctx context.Context, t *table.Table) ([]Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "evaluate", trace.WithAttributes(
		attribute.Int("rules", len(s.rules)),
		attribute.Int("rows", t.NumRows()),
		attribute.Int("columns", t.NumColumns()),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	evals := make([]Evaluation, len(s.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, r := range s.rules {
		g.Go(func() error {
			if r.predicate == nil {
				return fmt.Errorf("rule %q: %w", r.Name, ErrNotCompiled)
			}

			m, err := r.predicate.Mask(gctx, t, r.Scope)
			if err != nil {
				return fmt.Errorf("rule %q: %w", r.Name, err)
			}

			err = mask.Check(r.Name, r.Scope.Shape(t), m)
			if err != nil {
				return err
			}

			logger.DebugContext(gctx, "evaluated rule",
				slog.String("rule", r.Name),
				slog.String("scope", r.Scope.String()),
				slog.Int("cells", m.Count()),
			)

			evals[i] = Evaluation{Rule: r, Mask: m}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	return evals, nil
}

// Apply evaluates the set against t and merges each rule's style into grid,
// in rule order. The grid must have the table's full shape. Cancellation is
// checked between rules; on error the grid may be partially styled.
func (s *Set) Apply(ctx context.Context, t *table.Table, grid *style.Grid) error {
	ctx, span := s.tracer.Start(ctx, "apply", trace.WithAttributes(
		attribute.Int("rules", len(s.rules)),
	))
	defer span.End()

	want := ScopeTable.Shape(t)
	if grid.Shape() != want {
		err := &mask.ShapeMismatchError{Rule: "grid", Want: want, Got: grid.Shape()}
		span.RecordError(err)

		return err
	}

	evals, err := s.Evaluate(ctx, t)
	if err != nil {
		return err
	}

	err = Overlay(ctx, evals, grid)
	if err != nil {
		span.RecordError(err)

		return err
	}

	return nil
}

// Overlay merges evaluated rules into grid sequentially, in order.
func Overlay(ctx context.Context, evals []Evaluation, grid *style.Grid) error {
	for _, e := range evals {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("apply rule %q: %w", e.Rule.Name, err)
		}

		err = grid.Overlay(e.Rule.Scope.Origin(), e.Mask, e.Rule.Style)
		if err != nil {
			return fmt.Errorf("apply rule %q: %w", e.Rule.Name, err)
		}
	}

	return nil
}
