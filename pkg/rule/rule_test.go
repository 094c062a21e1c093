package rule_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/expr"
	"github.com/macropower/standing/pkg/mask"
	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
)

// James finishes at ≈86.16 (safe), Maria at ≈57.14 (critical).
const exampleCSV = `Student,Exam_1,Exercise_1,Exercise_2,Exam_2,Final_Exam
James,86,75,100,92,84
Maria,40,70,60,55,62
`

var palette = rule.DefaultPalette()

func exampleTable(t *testing.T) *table.Table {
	t.Helper()

	tbl, err := table.ReadCSV(strings.NewReader(exampleCSV))
	require.NoError(t, err)

	return tbl
}

func newGrid(tbl *table.Table) *style.Grid {
	return style.NewGrid(rule.ScopeTable.Shape(tbl))
}

func TestScope(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	tcs := map[string]struct {
		scope  rule.Scope
		shape  mask.Shape
		origin int
	}{
		"scores":     {scope: rule.ScopeScores, shape: mask.Shape{Rows: 2, Cols: 5}, origin: 1},
		"identifier": {scope: rule.ScopeIdentifier, shape: mask.Shape{Rows: 2, Cols: 1}, origin: 0},
		"table":      {scope: rule.ScopeTable, shape: mask.Shape{Rows: 2, Cols: 6}, origin: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := rule.ParseScope(name)
			require.NoError(t, err)
			assert.Equal(t, tc.scope, got)
			assert.Equal(t, tc.shape, tc.scope.Shape(tbl))
			assert.Equal(t, tc.origin, tc.scope.Origin())
		})
	}

	_, err := rule.ParseScope("row")
	require.ErrorIs(t, err, rule.ErrUnknownScope)
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := rule.ColumnCategory(category.Exam)

	tcs := map[string]struct {
		scope   rule.Scope
		pred    rule.Predicate
		style   style.Style
		wantErr error
	}{
		"valid": {
			scope: rule.ScopeScores,
			pred:  p,
			style: style.Style{}.WithBorder(style.BorderSingle),
		},
		"empty scope defaults": {
			pred:  p,
			style: style.Style{}.WithBorder(style.BorderSingle),
		},
		"unknown scope": {
			scope:   "row",
			pred:    p,
			wantErr: rule.ErrUnknownScope,
		},
		"invalid style": {
			scope:   rule.ScopeScores,
			pred:    p,
			style:   style.Style{}.WithBorder("dashed"),
			wantErr: style.ErrInvalid,
		},
		"no predicate": {
			scope:   rule.ScopeScores,
			wantErr: rule.ErrNotCompiled,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := rule.New(name, tc.scope, tc.pred, tc.style)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, r)
				assert.Contains(t, err.Error(), name)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, rule.ScopeScores, r.Scope)
			assert.NotNil(t, r.Predicate())
		})
	}

	assert.Panics(t, func() {
		rule.MustNew("bad", "row", p, style.Style{})
	})
}

func TestRule_Compile(t *testing.T) {
	t.Parallel()

	env := expr.MustNewEnvironment(threshold.Default())
	calc := weight.MustNewCalculator(weight.DefaultConfig())

	tcs := map[string]struct {
		match   string
		wantErr bool
	}{
		"valid":       {match: `score < 50.0`},
		"invalid":     {match: `score.invalidFunction()`, wantErr: true},
		"not bool":    {match: `score`, wantErr: true},
		"no match":    {match: ``, wantErr: true},
		"with avg":    {match: `band(average) == band.CRITICAL`},
		"with column": {match: `classify(column) == category.FINAL`},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := &rule.Rule{Name: name, Match: tc.match}

			err := r.Compile(env, calc)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, r.Predicate())

				return
			}

			require.NoError(t, err)
			require.NotNil(t, r.Predicate())

			// Compiling again keeps the same predicate.
			p := r.Predicate()
			require.NoError(t, r.Compile(env, calc))
			assert.Same(t, p, r.Predicate())
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 9, set.Len())

	names := make([]string, 0, set.Len())
	for _, r := range set.Rules() {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"border-exercise", "border-exam", "border-final",
		"score-critical", "score-warning", "score-safe",
		"average-critical", "average-warning", "average-safe",
	}, names)

	grid := newGrid(tbl)
	require.NoError(t, set.Apply(t.Context(), tbl, grid))

	// Identifier cells are filled by the final average band.
	assert.Equal(t, style.Solid(palette.Safe), grid.At(0, 0))
	assert.Equal(t, style.Solid(palette.Critical), grid.At(1, 0))

	// Score cells get their category border and their raw score band fill.
	tcs := map[string]struct {
		want     style.Style
		row, col int
	}{
		"James Exam_1":     {row: 0, col: 1, want: style.Solid(palette.Safe).WithBorder(style.BorderSingle)},
		"James Exercise_1": {row: 0, col: 2, want: style.Solid(palette.Safe).WithBorder(style.BorderNone)},
		"James Final_Exam": {row: 0, col: 5, want: style.Solid(palette.Safe).WithBorder(style.BorderDouble)},
		"Maria Exam_1":     {row: 1, col: 1, want: style.Solid(palette.Critical).WithBorder(style.BorderSingle)},
		"Maria Exercise_1": {row: 1, col: 2, want: style.Solid(palette.Warning).WithBorder(style.BorderNone)},
		"Maria Final_Exam": {row: 1, col: 5, want: style.Solid(palette.Critical).WithBorder(style.BorderDouble)},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := grid.At(tc.row, tc.col)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestDefault_Options(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	// With a lower bar Maria is in the warning band.
	th := threshold.Thresholds{Critical: 50, Safe: 90}
	pal := rule.Palette{Critical: "#FF0000", Warning: "#FFFF00", Safe: "#00FF00"}

	custom := &rule.Rule{
		Name:  "failing-exams",
		Scope: rule.ScopeScores,
		Match: `category == category.EXAM && score < 50.0`,
		Style: style.Style{}.WithWrapText(true).WithFill(style.FillGray),
	}

	set, err := rule.Default(weight.DefaultConfig(),
		rule.WithThresholds(th),
		rule.WithPalette(pal),
		rule.WithRules(custom),
	)
	require.NoError(t, err)
	require.Equal(t, 10, set.Len())
	assert.Same(t, custom, set.Rules()[9])

	grid := newGrid(tbl)
	require.NoError(t, set.Apply(t.Context(), tbl, grid))

	assert.Equal(t, style.Solid(pal.Warning), grid.At(1, 0))
	assert.Equal(t, style.Solid(pal.Warning), grid.At(0, 0))

	// The custom rule wins on fill and adds wrapping; border and colour from
	// earlier rules survive.
	want := style.Solid(pal.Critical).WithBorder(style.BorderSingle).WithFill(style.FillGray).WithWrapText(true)
	assert.True(t, want.Equal(grid.At(1, 1)), grid.At(1, 1).String())
	assert.Nil(t, grid.At(0, 1).WrapText)
}

func TestDefault_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr error
		cfg     weight.Config
		opts    []rule.DefaultOpt
	}{
		"invalid weights": {
			cfg:     weight.Config{Exercise: weight.Allocation{Capacity: 1, Weight: 50}},
			wantErr: weight.ErrConfig,
		},
		"invalid thresholds": {
			cfg:     weight.DefaultConfig(),
			opts:    []rule.DefaultOpt{rule.WithThresholds(threshold.Thresholds{Critical: 80, Safe: 70})},
			wantErr: threshold.ErrThresholds,
		},
		"invalid palette": {
			cfg:     weight.DefaultConfig(),
			opts:    []rule.DefaultOpt{rule.WithPalette(rule.Palette{Critical: "red"})},
			wantErr: style.ErrInvalid,
		},
		"non-bool custom rule": {
			cfg:     weight.DefaultConfig(),
			opts:    []rule.DefaultOpt{rule.WithRules(&rule.Rule{Name: "x", Match: `column`})},
			wantErr: expr.ErrNotBool,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := rule.Default(tc.cfg, tc.opts...)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSet_Apply_Idempotent(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	// Start from an already-styled grid.
	grid := newGrid(tbl)
	for i := range grid.Shape().Rows {
		for j := range grid.Shape().Cols {
			grid.Set(i, j, style.Style{}.WithWrapText(true).WithFill(style.FillGray))
		}
	}

	require.NoError(t, set.Apply(t.Context(), tbl, grid))
	once := grid.Clone()

	require.NoError(t, set.Apply(t.Context(), tbl, grid))
	assert.True(t, grid.Equal(once))

	// Fields no rule sets are left alone.
	require.NotNil(t, grid.At(0, 3).WrapText)
	assert.True(t, *grid.At(0, 3).WrapText)
}

func TestSet_Evaluate(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	evals, err := set.Evaluate(t.Context(), tbl)
	require.NoError(t, err)
	require.Len(t, evals, set.Len())

	for i, r := range set.Rules() {
		assert.Same(t, r, evals[i].Rule)
		assert.Equal(t, r.Scope.Shape(tbl), evals[i].Mask.Shape())
	}

	// border-exam covers both exam columns for both students.
	assert.Equal(t, [][]bool{
		{true, false, false, true, false},
		{true, false, false, true, false},
	}, evals[1].Mask.Rows())
}

func TestSet_ShapeMismatch(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	wrong := rule.PredicateFunc(func(_ context.Context, t *table.Table, _ rule.Scope) (*mask.Mask, error) {
		// A whole-table mask for a rule scoped to the identifier column.
		return mask.New(rule.ScopeTable.Shape(t)), nil
	})

	set := rule.NewSet(rule.MustNew("names", rule.ScopeIdentifier, wrong, style.Solid(palette.Safe)))

	_, err := set.Evaluate(t.Context(), tbl)
	require.ErrorIs(t, err, mask.ErrShapeMismatch)

	var shapeErr *mask.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "names", shapeErr.Rule)
	assert.Equal(t, mask.Shape{Rows: 2, Cols: 1}, shapeErr.Want)
	assert.Equal(t, mask.Shape{Rows: 2, Cols: 6}, shapeErr.Got)

	// Band predicates are only defined over score cells.
	set = rule.NewSet(rule.MustNew("bad-scope", rule.ScopeIdentifier,
		rule.ScoreBand(threshold.Safe, threshold.Default()), style.Solid(palette.Safe)))

	_, err = set.Evaluate(t.Context(), tbl)
	require.ErrorIs(t, err, mask.ErrShapeMismatch)

	// The grid must cover the whole table.
	set = rule.NewSet()
	err = set.Apply(t.Context(), tbl, style.NewGrid(mask.Shape{Rows: 2, Cols: 5}))
	require.ErrorIs(t, err, mask.ErrShapeMismatch)
}

func TestSet_MissingValue(t *testing.T) {
	t.Parallel()

	tbl, err := table.ReadCSV(strings.NewReader("Student,Exam_1,Exam_2\nJames,80,\n"))
	require.NoError(t, err)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	err = set.Apply(t.Context(), tbl, newGrid(tbl))
	require.ErrorIs(t, err, table.ErrMissingValue)

	var missing *table.MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "James", missing.Student)
	assert.Equal(t, "Exam_2", missing.Column)
	assert.Equal(t, 2, missing.Col)
}

func TestSet_NoStudents(t *testing.T) {
	t.Parallel()

	tbl, err := table.ReadCSV(strings.NewReader("Student,Exam_1,Exercise_1\n"))
	require.NoError(t, err)
	require.Equal(t, 0, tbl.NumRows())

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	evals, err := set.Evaluate(t.Context(), tbl)
	require.NoError(t, err)
	require.Len(t, evals, set.Len())

	for _, e := range evals {
		assert.Equal(t, e.Rule.Scope.Shape(tbl), e.Mask.Shape(), e.Rule.Name)
		assert.Equal(t, 0, e.Mask.Count(), e.Rule.Name)
	}

	require.NoError(t, set.Apply(t.Context(), tbl, newGrid(tbl)))
}

func TestSet_Cancelled(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = set.Apply(ctx, tbl, newGrid(tbl))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSet_With(t *testing.T) {
	t.Parallel()

	a := rule.MustNew("a", rule.ScopeTable, rule.ColumnCategory(category.Final), style.Style{})
	b := rule.MustNew("b", rule.ScopeTable, rule.ColumnCategory(category.Exam), style.Style{})

	base := rule.NewSet(a)
	more := base.With(b)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, more.Len())
	assert.Same(t, b, more.Rules()[1])
}

func TestAverageBand_Scores(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)
	calc := weight.MustNewCalculator(weight.DefaultConfig())

	m, err := rule.AverageBand(calc, threshold.Safe, threshold.Default()).Mask(t.Context(), tbl, rule.ScopeScores)
	require.NoError(t, err)

	// James stays safe throughout; through Exam_2 he is at ≈88.65.
	assert.Equal(t, []bool{true, true, true, true, true}, m.Rows()[0])
	assert.Equal(t, 5, m.Count())
}

func TestScoreBand_Table(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)

	m, err := rule.ScoreBand(threshold.Critical, threshold.Default()).Mask(t.Context(), tbl, rule.ScopeTable)
	require.NoError(t, err)
	assert.Equal(t, mask.Shape{Rows: 2, Cols: 6}, m.Shape())
	assert.Equal(t, []bool{false, true, false, true, true, true}, m.Rows()[1])
}

func TestExpression_Identifier(t *testing.T) {
	t.Parallel()

	tbl := exampleTable(t)
	env := expr.MustNewEnvironment(threshold.Default())
	calc := weight.MustNewCalculator(weight.DefaultConfig())

	p, err := rule.Expression(env, calc, `index == 0 && average < 60.0 && category == category.OTHER`)
	require.NoError(t, err)

	m, err := p.Mask(t.Context(), tbl, rule.ScopeIdentifier)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{{false}, {true}}, m.Rows())
}
