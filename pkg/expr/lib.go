package expr

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/threshold"
)

type lib struct {
	thresholds threshold.Thresholds
}

func (l *lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),

		cel.Constant("band.CRITICAL", cel.StringType, types.String(threshold.Critical)),
		cel.Constant("band.WARNING", cel.StringType, types.String(threshold.Warning)),
		cel.Constant("band.SAFE", cel.StringType, types.String(threshold.Safe)),

		cel.Constant("category.EXERCISE", cel.StringType, types.String(category.Exercise)),
		cel.Constant("category.EXAM", cel.StringType, types.String(category.Exam)),
		cel.Constant("category.FINAL", cel.StringType, types.String(category.Final)),
		cel.Constant("category.OTHER", cel.StringType, types.String(category.Other)),

		// `classify` returns the category of a column name.
		// Example: classify(column) == category.EXAM.
		cel.Function("classify",
			cel.Overload("classify_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(name ref.Val) ref.Val {
					nameValue, ok := name.(types.String).Value().(string)
					if !ok {
						return types.NewErr("classify: invalid string value")
					}

					return types.String(category.Classify(nameValue))
				}),
			),
		),

		// `band` returns the standing band of a score or average. It fails for
		// NaN, so an undefined average never lands in a band.
		// Example: band(average) == band.CRITICAL.
		cel.Function("band",
			cel.Overload("band_double", []*cel.Type{cel.DoubleType}, cel.StringType,
				cel.UnaryBinding(func(x ref.Val) ref.Val {
					xValue, ok := x.(types.Double).Value().(float64)
					if !ok {
						return types.NewErr("band: invalid double value")
					}

					b, ok := l.thresholds.BandOf(xValue)
					if !ok {
						return types.NewErr("band: value is undefined")
					}

					return types.String(b)
				}),
			),
		),
	}
}

func (*lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
