package summary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/summary"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
)

const exampleCSV = `Student,Exam_1,Exercise_1,Exercise_2,Exam_2,Final_Exam
James,86,75,100,92,84
Maria,40,70,60,55,62
`

func TestCompute(t *testing.T) {
	t.Parallel()

	tbl, err := table.ReadCSV(strings.NewReader(exampleCSV))
	require.NoError(t, err)

	calc := weight.MustNewCalculator(weight.DefaultConfig())

	tcs := map[string]struct {
		wantAverage map[string]float64
		wantBand    map[string]threshold.Band
		wantCounts  category.Counts
		wantColumn  string
		upto        int
	}{
		"through second exam": {
			upto:       4,
			wantColumn: "Exam_2",
			wantCounts: category.Counts{Exercise: 2, Exam: 2},
			wantAverage: map[string]float64{
				"James": 23.05 / 26 * 100,
				"Maria": 13.4 / 26 * 100,
			},
			wantBand: map[string]threshold.Band{
				"James": threshold.Safe,
				"Maria": threshold.Critical,
			},
		},
		"full table": {
			upto:       5,
			wantColumn: "Final_Exam",
			wantCounts: category.Counts{Exercise: 2, Exam: 2, Final: 1},
			wantAverage: map[string]float64{
				"James": 48.25 / 56 * 100,
				"Maria": 32.0 / 56 * 100,
			},
			wantBand: map[string]threshold.Band{
				"James": threshold.Safe,
				"Maria": threshold.Critical,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := summary.Compute(calc, threshold.Default(), tbl, tc.upto)
			require.NoError(t, err)

			assert.Equal(t, tc.wantColumn, got.Column.Name)
			assert.Equal(t, tc.wantCounts, got.Counts)
			require.Len(t, got.Students, 2)

			// Lowest first.
			assert.Equal(t, "Maria", got.Students[0].Student)

			for _, s := range got.Students {
				assert.InDelta(t, tc.wantAverage[s.Student], s.Average, 1e-9, s.Student)
				assert.Equal(t, tc.wantBand[s.Student], s.Band, s.Student)
				assert.InDelta(t, s.Earned/s.Possible*100, s.Average, 1e-9, s.Student)
			}

			assert.Len(t, got.Band(threshold.Critical), 1)
			assert.Empty(t, got.Band(threshold.Warning))
		})
	}
}

func TestCompute_Errors(t *testing.T) {
	t.Parallel()

	calc := weight.MustNewCalculator(weight.DefaultConfig())

	tbl, err := table.ReadCSV(strings.NewReader("Student,Notes,Exam_1\nJames,,80\n"))
	require.NoError(t, err)

	_, err = summary.Compute(calc, threshold.Default(), tbl, 1)
	require.ErrorIs(t, err, weight.ErrUndefinedAverage)

	_, err = summary.Compute(calc, threshold.Default(), tbl, 3)
	require.ErrorIs(t, err, table.ErrInvalidColumnRange)

	got, err := summary.Compute(calc, threshold.Default(), tbl, 2)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, got.Students[0].Average, 1e-9)
}
