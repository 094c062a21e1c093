package rule

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/expr"
	"github.com/macropower/standing/pkg/mask"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
)

// Predicate selects cells of a table.
//
// Mask must return a mask of shape scope.Shape(t). Predicates that only make
// sense for one region return that region's shape regardless of scope, which
// the [Set] then reports as a [mask.ShapeMismatchError].
type Predicate interface {
	Mask(ctx context.Context, t *table.Table, scope Scope) (*mask.Mask, error)
}

// PredicateFunc adapts a function to the [Predicate] interface.
type PredicateFunc func(ctx context.Context, t *table.Table, scope Scope) (*mask.Mask, error)

// Mask calls f.
func (f PredicateFunc) Mask(ctx context.Context, t *table.Table, scope Scope) (*mask.Mask, error) {
	return f(ctx, t, scope)
}

// ColumnCategory selects every cell in columns of the given categories. The
// identifier column never matches. Valid for [ScopeScores] and [ScopeTable].
func ColumnCategory(cats ...category.Category) Predicate {
	return PredicateFunc(func(_ context.Context, t *table.Table, scope Scope) (*mask.Mask, error) {
		schema := t.Schema()
		m := mask.New(scope.Shape(t))

		for j := range m.Shape().Cols {
			col := scope.Column(j)
			if col == 0 || !slices.Contains(cats, schema[col-1]) {
				continue
			}

			for i := range m.Shape().Rows {
				m.Set(i, j, true)
			}
		}

		return m, nil
	})
}

// ScoreBand selects score cells whose raw score falls in band b. Valid for
// [ScopeScores] and [ScopeTable]. A missing score is a
// [*table.MissingValueError].
func ScoreBand(b threshold.Band, th threshold.Thresholds) Predicate {
	return PredicateFunc(func(_ context.Context, t *table.Table, scope Scope) (*mask.Mask, error) {
		m, err := th.TableMask(t, b)
		if err != nil {
			return nil, err
		}

		return place(t, m, ScopeScores, scope), nil
	})
}

// AverageBand selects cells whose running average falls in band b.
//
// On the identifier column the student's final cumulative average is used;
// on a score column, the running average through that column. Cells whose
// running average is undefined are not selected, but an undefined final
// average is a [*weight.UndefinedAverageError].
func AverageBand(calc *weight.Calculator, b threshold.Band, th threshold.Thresholds) Predicate {
	return PredicateFunc(func(ctx context.Context, t *table.Table, scope Scope) (*mask.Mask, error) {
		avgs, err := calc.Averages(t)
		if err != nil {
			return nil, err
		}

		m := mask.New(scope.Shape(t))

		for i := range m.Shape().Rows {
			err := ctx.Err()
			if err != nil {
				return nil, err
			}

			for j := range m.Shape().Cols {
				col := scope.Column(j)

				var v float64
				if col == 0 {
					v = avgs.Final(i)
					if math.IsNaN(v) {
						return nil, undefinedFinal(t)
					}
				} else {
					v = avgs.At(i, col)
				}

				if !math.IsNaN(v) && th.In(b, v) {
					m.Set(i, j, true)
				}
			}
		}

		return m, nil
	})
}

// ExpressionPredicate selects cells for which a CEL expression is true.
type ExpressionPredicate struct {
	prg  *expr.Program
	calc *weight.Calculator
}

// Expression compiles src in env. The calculator supplies the `average`
// variable; if it is nil, `average` is always NaN.
func Expression(env *expr.Environment, calc *weight.Calculator, src string) (*ExpressionPredicate, error) {
	prg, err := env.Compile(src)
	if err != nil {
		return nil, err
	}

	return &ExpressionPredicate{prg: prg, calc: calc}, nil
}

// Mask evaluates the expression once per cell in scope. A missing score in a
// score column is a [*table.MissingValueError]; identifier cells see a NaN
// score and the [category.Other] category.
func (p *ExpressionPredicate) Mask(ctx context.Context, t *table.Table, scope Scope) (*mask.Mask, error) {
	var avgs *weight.Matrix

	if p.calc != nil {
		var err error

		avgs, err = p.calc.Averages(t)
		if err != nil {
			return nil, err
		}
	}

	students := t.Students()
	m := mask.New(scope.Shape(t))

	for i := range m.Shape().Rows {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		for j := range m.Shape().Cols {
			cell, err := p.cell(t, avgs, students[i], i, scope.Column(j))
			if err != nil {
				return nil, err
			}

			ok, err := p.prg.Eval(cell)
			if err != nil {
				return nil, fmt.Errorf("student %q, index %d: %w", cell.Student, cell.Index, err)
			}

			m.Set(i, j, ok)
		}
	}

	return m, nil
}

func (p *ExpressionPredicate) String() string {
	return p.prg.String()
}

func (p *ExpressionPredicate) cell(t *table.Table, avgs *weight.Matrix, student string, row, col int) (expr.Cell, error) {
	cell := expr.Cell{
		Student: student,
		Index:   col,
		Score:   math.NaN(),
		Average: math.NaN(),
	}

	if col == 0 {
		cell.Column = t.IdentifierName()
		cell.Category = category.Other

		if avgs != nil {
			cell.Average = avgs.Final(row)
		}

		return cell, nil
	}

	c, _ := t.Column(col)
	cell.Column = c.Name
	cell.Category = c.Category

	v, err := t.Float(row, col)
	if err != nil {
		return expr.Cell{}, err
	}

	cell.Score = v

	if avgs != nil {
		cell.Average = avgs.At(row, col)
	}

	return cell, nil
}

// place moves a mask produced for one scope onto [ScopeTable]. Other
// conversions would drop cells and are not performed.
func place(t *table.Table, m *mask.Mask, from, to Scope) *mask.Mask {
	if from == to || to != ScopeTable {
		return m
	}

	out := mask.New(to.Shape(t))

	for i := range m.Shape().Rows {
		for j := range m.Shape().Cols {
			if m.At(i, j) {
				out.Set(i, from.Column(j), true)
			}
		}
	}

	return out
}

func undefinedFinal(t *table.Table) error {
	upto := t.NumColumns() - 1
	counts, _ := t.Counts(upto)

	return &weight.UndefinedAverageError{Upto: upto, Counts: counts}
}
