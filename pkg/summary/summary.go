// Package summary reports each student's standing through a column.
package summary

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
)

// StudentAverage is one student's standing through a column.
type StudentAverage struct {
	Student  string         `json:"student"`
	Band     threshold.Band `json:"band"`
	Earned   float64        `json:"earned"`
	Possible float64        `json:"possible"`
	Average  float64        `json:"average"`
}

// Averages is every student's standing through [Averages.Column].
type Averages struct {
	Column   table.Column     `json:"column"`
	Counts   category.Counts  `json:"counts"`
	Students []StudentAverage `json:"students"`
}

// Compute returns the running averages of t through column upto, lowest
// average first. Ties keep table order.
func Compute(calc *weight.Calculator, th threshold.Thresholds, t *table.Table, upto int) (*Averages, error) {
	counts, err := t.Counts(upto)
	if err != nil {
		return nil, err
	}

	earned, err := calc.EarnedPoints(t, upto)
	if err != nil {
		return nil, err
	}

	averages, err := calc.RunningAverage(t, upto)
	if err != nil {
		return nil, err
	}

	col, _ := t.Column(upto)
	possible := calc.PossiblePoints(counts)

	out := &Averages{
		Column:   col,
		Counts:   counts,
		Students: make([]StudentAverage, 0, t.NumRows()),
	}

	for _, student := range t.Students() {
		avg := averages[student]

		b, ok := th.BandOf(avg)
		if !ok {
			return nil, fmt.Errorf("student %q: average is not a number", student)
		}

		out.Students = append(out.Students, StudentAverage{
			Student:  student,
			Band:     b,
			Earned:   earned[student],
			Possible: possible,
			Average:  avg,
		})
	}

	slices.SortStableFunc(out.Students, func(a, b StudentAverage) int {
		return cmp.Compare(a.Average, b.Average)
	})

	return out, nil
}

// Band returns the students in band b.
func (a *Averages) Band(b threshold.Band) []StudentAverage {
	var out []StudentAverage

	for _, s := range a.Students {
		if s.Band == b {
			out = append(out, s)
		}
	}

	return out
}
