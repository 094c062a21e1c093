package rule

import (
	"errors"
	"fmt"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/expr"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
)

// Palette holds the fill colour of each band.
type Palette struct {
	Critical style.Color `json:"critical" jsonschema:"title=Critical Color,default=#FFC7CE"`
	Warning  style.Color `json:"warning"  jsonschema:"title=Warning Color,default=#FFEB9C"`
	Safe     style.Color `json:"safe"     jsonschema:"title=Safe Color,default=#C6EFCE"`
}

// DefaultPalette returns red, yellow, and green fills.
func DefaultPalette() Palette {
	return Palette{
		Critical: "#FFC7CE",
		Warning:  "#FFEB9C",
		Safe:     "#C6EFCE",
	}
}

// Color returns the colour for band b.
func (p Palette) Color(b threshold.Band) style.Color {
	switch b {
	case threshold.Critical:
		return p.Critical
	case threshold.Warning:
		return p.Warning
	case threshold.Safe:
		return p.Safe
	}

	return ""
}

// Validate checks every colour.
func (p Palette) Validate() error {
	var errs []error

	for _, b := range threshold.Bands {
		err := p.Color(b).Validate()
		if err != nil {
			errs = append(errs, fmt.Errorf("palette %s: %w", b, err))
		}
	}

	return errors.Join(errs...)
}

// Borders maps each weighted category to its column border.
var Borders = map[category.Category]style.BorderStyle{
	category.Exercise: style.BorderNone,
	category.Exam:     style.BorderSingle,
	category.Final:    style.BorderDouble,
}

type defaultOptions struct {
	palette    Palette
	rules      []*Rule
	thresholds threshold.Thresholds
}

// DefaultOpt configures [Default].
type DefaultOpt func(*defaultOptions)

// WithThresholds sets the band thresholds.
func WithThresholds(th threshold.Thresholds) DefaultOpt {
	return func(o *defaultOptions) {
		o.thresholds = th
	}
}

// WithPalette sets the band fill colours.
func WithPalette(p Palette) DefaultOpt {
	return func(o *defaultOptions) {
		o.palette = p
	}
}

// WithRules appends rules after the defaults, so they take priority. Rules
// with a match expression are compiled against the set's thresholds and
// weights.
func WithRules(rules ...*Rule) DefaultOpt {
	return func(o *defaultOptions) {
		o.rules = append(o.rules, rules...)
	}
}

// Default builds the standard rule set for cfg, in priority order:
//
//  1. Column borders by category: none for exercises, single for exams,
//     double for finals.
//  2. Score cell fills by raw score band.
//  3. Identifier cell fills by the student's final running-average band.
//  4. Any rules given by [WithRules].
//
// cfg is validated eagerly and errors match [weight.ErrConfig].
func Default(cfg weight.Config, opts ...DefaultOpt) (*Set, error) {
	o := &defaultOptions{
		thresholds: threshold.Default(),
		palette:    DefaultPalette(),
	}
	for _, opt := range opts {
		opt(o)
	}

	calc, err := weight.NewCalculator(cfg)
	if err != nil {
		return nil, err
	}

	err = o.thresholds.Validate()
	if err != nil {
		return nil, err
	}

	err = o.palette.Validate()
	if err != nil {
		return nil, err
	}

	var rules []*Rule

	for _, cat := range category.Weighted {
		r, err := New("border-"+cat.String(), ScopeScores,
			ColumnCategory(cat),
			style.Style{}.WithBorder(Borders[cat]),
		)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	for _, b := range threshold.Bands {
		r, err := New("score-"+b.String(), ScopeScores,
			ScoreBand(b, o.thresholds),
			style.Solid(o.palette.Color(b)),
		)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	for _, b := range threshold.Bands {
		r, err := New("average-"+b.String(), ScopeIdentifier,
			AverageBand(calc, b, o.thresholds),
			style.Solid(o.palette.Color(b)),
		)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	if len(o.rules) > 0 {
		env, err := expr.NewEnvironment(o.thresholds)
		if err != nil {
			return nil, err
		}

		for _, r := range o.rules {
			err := r.Compile(env, calc)
			if err != nil {
				return nil, err
			}
		}

		rules = append(rules, o.rules...)
	}

	return NewSet(rules...), nil
}
