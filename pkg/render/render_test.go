package render_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/pkg/render"
	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/weight"
)

const exampleCSV = `Student,Exam_1,Exercise_1,Exercise_2,Exam_2,Final_Exam
James,86,75,100,92,84
Maria,40,70,60,55,62
`

func setup(t *testing.T) (*table.Table, *rule.Set) {
	t.Helper()

	tbl, err := table.ReadCSV(strings.NewReader(exampleCSV))
	require.NoError(t, err)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	return tbl, set
}

func TestPlan(t *testing.T) {
	t.Parallel()

	tbl, set := setup(t)

	grid, err := render.Plan(t.Context(), tbl, set)
	require.NoError(t, err)
	assert.Equal(t, rule.ScopeTable.Shape(tbl), grid.Shape())

	want := style.Solid(rule.DefaultPalette().Critical)
	assert.True(t, want.Equal(grid.At(1, 0)), grid.At(1, 0).String())
}

func TestPlan_NoStudents(t *testing.T) {
	t.Parallel()

	tbl, err := table.ReadCSV(strings.NewReader("Student,Exam_1,Exercise_1,Final_Exam\n"))
	require.NoError(t, err)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	grid, err := render.Plan(t.Context(), tbl, set)
	require.NoError(t, err)
	assert.Equal(t, rule.ScopeTable.Shape(tbl), grid.Shape())
}

func TestDocument(t *testing.T) {
	t.Parallel()

	tbl, set := setup(t)

	doc, err := render.NewDocument().Build(t.Context(), render.Sheet{Name: "Standing"}, tbl, set)
	require.NoError(t, err)

	assert.Equal(t, "Standing", doc.Sheet)
	assert.Len(t, doc.Columns, 5)
	require.Len(t, doc.Rules, set.Len())

	// Every cell is styled: each student gets an average fill and each score
	// cell a band fill.
	assert.Len(t, doc.Cells, 12)

	counts := map[string]int{}
	for _, r := range doc.Rules {
		counts[r.Name] = r.Cells
	}

	assert.Equal(t, 4, counts["border-exam"])
	assert.Equal(t, 2, counts["border-final"])
	assert.Equal(t, 1, counts["average-safe"])
	assert.Equal(t, 1, counts["average-critical"])
	assert.Equal(t, 0, counts["average-warning"])

	var buf bytes.Buffer
	require.NoError(t, render.NewDocument().RenderWorksheet(t.Context(), render.Sheet{W: &buf}, tbl, set))

	out := buf.String()
	assert.Contains(t, out, "name: border-exam")
	assert.Contains(t, out, "student: Maria")
	assert.Contains(t, out, "border: double")
	assert.NotContains(t, out, "sheet:")
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	tbl, set := setup(t)

	var buf bytes.Buffer

	r := render.NewTerminal(weight.MustNewCalculator(weight.DefaultConfig()))
	require.NoError(t, r.RenderWorksheet(t.Context(), render.Sheet{W: &buf, Name: "Standing"}, tbl, set))

	out := buf.String()
	assert.Contains(t, out, "Standing")
	assert.Contains(t, out, "Final_Exam")
	assert.Contains(t, out, "Average")
	assert.Contains(t, out, "James")
	assert.Contains(t, out, "86.16")
	assert.Contains(t, out, "57.14")
}

func TestTerminal_MissingValue(t *testing.T) {
	t.Parallel()

	tbl, err := table.ReadCSV(strings.NewReader("Student,Exam_1\nJames,\n"))
	require.NoError(t, err)

	set, err := rule.Default(weight.DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer

	err = render.NewTerminal(nil).RenderWorksheet(t.Context(), render.Sheet{W: &buf}, tbl, set)
	require.ErrorIs(t, err, table.ErrMissingValue)
	assert.Empty(t, buf.String())
}

func TestRendererFunc(t *testing.T) {
	t.Parallel()

	tbl, set := setup(t)

	var got *style.Grid

	var r render.Renderer = render.RendererFunc(func(ctx context.Context, _ render.Sheet, t *table.Table, set *rule.Set) error {
		var err error

		got, err = render.Plan(ctx, t, set)

		return err
	})

	require.NoError(t, r.RenderWorksheet(t.Context(), render.Sheet{}, tbl, set))
	require.NotNil(t, got)
}
