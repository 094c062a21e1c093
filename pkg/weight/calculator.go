// Package weight computes weighted points and running averages.
//
// Every assignment in a category earns an equal share of that category's
// weight:
//
//	share(c)    = weight(c) / capacity(c)
//	possible(k) = Σ_c count_c(k) · share(c)
//	earned(k)   = Σ_{j ≤ k} score_j / 100 · share(category(j))
//	average(k)  = earned(k) / possible(k) · 100
//
// so earned and possible points stay commensurate, and the average of scores
// in [0, 100] stays in [0, 100].
package weight

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/table"
)

// ErrUndefinedAverage is matched by [UndefinedAverageError].
var ErrUndefinedAverage = errors.New("undefined running average")

// UndefinedAverageError is returned when a column prefix has no possible
// points, e.g. when it contains only [category.Other] columns.
type UndefinedAverageError struct {
	Counts category.Counts
	Upto   int
}

func (e *UndefinedAverageError) Error() string {
	return fmt.Sprintf("%v: no possible points through column %d (%s)", ErrUndefinedAverage, e.Upto, e.Counts)
}

func (e *UndefinedAverageError) Unwrap() error {
	return ErrUndefinedAverage
}

// Calculator computes points and averages for a validated [Config].
type Calculator struct {
	cfg Config
}

// NewCalculator validates cfg and returns a [Calculator].
func NewCalculator(cfg Config) (*Calculator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Calculator{cfg: cfg}, nil
}

// MustNewCalculator creates a [Calculator] and panics if cfg is invalid.
func MustNewCalculator(cfg Config) *Calculator {
	c, err := NewCalculator(cfg)
	if err != nil {
		panic(err)
	}

	return c
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Share returns the weight of a single assignment in cat.
func (c *Calculator) Share(cat category.Category) float64 {
	return c.cfg.Get(cat).Share()
}

// PossiblePoints returns the points available for the given column counts.
// At full capacity in every category this is exactly 100.
func (c *Calculator) PossiblePoints(counts category.Counts) float64 {
	var total float64

	for _, cat := range category.Weighted {
		a := c.cfg.Get(cat)
		n := counts.Of(cat)

		if n > a.Capacity {
			slog.Debug("category count exceeds capacity",
				slog.String("category", cat.String()),
				slog.Int("count", n),
				slog.Int("capacity", a.Capacity),
			)
		}

		total += float64(n) / float64(a.Capacity) * a.Weight
	}

	return total
}

// PossiblePoints validates cfg and returns the points available for counts.
func PossiblePoints(counts category.Counts, cfg Config) (float64, error) {
	c, err := NewCalculator(cfg)
	if err != nil {
		return 0, err
	}

	return c.PossiblePoints(counts), nil
}

// EarnedPoints returns each student's earned points over columns 1..upto.
// [category.Other] columns are skipped; a missing weighted score is an error.
func (c *Calculator) EarnedPoints(t *table.Table, upto int) (map[string]float64, error) {
	err := t.CheckUpto(upto)
	if err != nil {
		return nil, err
	}

	schema := t.Schema()
	out := make(map[string]float64, t.NumRows())

	for i, student := range t.Students() {
		var earned float64

		for j := 1; j <= upto; j++ {
			cat := schema[j-1]
			if !cat.Weighted() {
				continue
			}

			v, err := t.Float(i, j)
			if err != nil {
				return nil, err
			}

			earned += v / 100 * c.Share(cat)
		}

		out[student] = earned
	}

	return out, nil
}

// RunningAverage returns each student's earned share of the possible points
// over columns 1..upto, as a percentage.
func (c *Calculator) RunningAverage(t *table.Table, upto int) (map[string]float64, error) {
	counts, err := t.Counts(upto)
	if err != nil {
		return nil, err
	}

	possible := c.PossiblePoints(counts)
	if possible <= 0 {
		return nil, &UndefinedAverageError{Upto: upto, Counts: counts}
	}

	earned, err := c.EarnedPoints(t, upto)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(earned))
	for student, e := range earned {
		out[student] = e / possible * 100
	}

	return out, nil
}

// Matrix holds running averages for every column prefix. Values[i][j-1] is
// student i's average through table column j; it is NaN where the average is
// undefined.
type Matrix struct {
	Students []string
	Columns  []table.Column
	Possible []float64 // Possible points through each column.
	Values   [][]float64
}

// At returns the running average of row i through table column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Values[i][j-1]
}

// Final returns row i's cumulative average through the last column.
func (m *Matrix) Final(i int) float64 {
	row := m.Values[i]
	if len(row) == 0 {
		return math.NaN()
	}

	return row[len(row)-1]
}

// Averages computes the running average of every student through every
// column in a single pass.
func (c *Calculator) Averages(t *table.Table) (*Matrix, error) {
	schema := t.Schema()
	cols := t.Columns()

	m := &Matrix{
		Students: t.Students(),
		Columns:  cols,
		Possible: make([]float64, len(cols)),
		Values:   make([][]float64, t.NumRows()),
	}

	var counts category.Counts
	for j, cat := range schema {
		counts = counts.Add(cat)
		m.Possible[j] = c.PossiblePoints(counts)
	}

	for i := range m.Students {
		row := make([]float64, len(cols))

		var earned float64

		for j := 1; j <= len(cols); j++ {
			cat := schema[j-1]
			if cat.Weighted() {
				v, err := t.Float(i, j)
				if err != nil {
					return nil, err
				}

				earned += v / 100 * c.Share(cat)
			}

			possible := m.Possible[j-1]
			if possible <= 0 {
				row[j-1] = math.NaN()
				continue
			}

			row[j-1] = earned / possible * 100
		}

		m.Values[i] = row
	}

	return m, nil
}

// FinalAverages returns each student's cumulative average through the last
// column.
func (c *Calculator) FinalAverages(t *table.Table) (map[string]float64, error) {
	return c.RunningAverage(t, t.NumColumns()-1)
}
