package weight

import (
	"errors"
	"fmt"
	"math"

	"github.com/macropower/standing/pkg/category"
)

// Weights must sum to 100 within this tolerance.
const sumTolerance = 1e-6

// ErrConfig is matched by every [ConfigError].
var ErrConfig = errors.New("invalid weight configuration")

// ConfigError describes one problem with a [Config].
type ConfigError struct {
	Category category.Category
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%v: %s", ErrConfig, e.Reason)
	}

	return fmt.Sprintf("%v: %s: %s", ErrConfig, e.Category, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// Allocation is the weighting of one category.
type Allocation struct {
	// Capacity is the number of assignments expected in this category at full
	// course completion.
	Capacity int `json:"capacity" jsonschema:"title=Capacity,minimum=1"`
	// Weight is the percentage of the final grade the fully completed
	// category contributes.
	Weight float64 `json:"weight" jsonschema:"title=Weight Percent,minimum=0,maximum=100"`
}

// Share returns the weight carried by a single assignment.
func (a Allocation) Share() float64 {
	if a.Capacity <= 0 {
		return 0
	}

	return a.Weight / float64(a.Capacity)
}

// Config maps each weighted category to its [Allocation]. [category.Other]
// carries no weight and has no entry.
type Config struct {
	Exercise Allocation `json:"exercise" jsonschema:"title=Exercise"`
	Exam     Allocation `json:"exam"     jsonschema:"title=Exam"`
	Final    Allocation `json:"final"    jsonschema:"title=Final"`
}

// DefaultConfig returns the weighting used when none is configured.
func DefaultConfig() Config {
	return Config{
		Exercise: Allocation{Capacity: 10, Weight: 30},
		Exam:     Allocation{Capacity: 4, Weight: 40},
		Final:    Allocation{Capacity: 1, Weight: 30},
	}
}

// Get returns the allocation for c. [category.Other] yields the zero value.
func (c Config) Get(cat category.Category) Allocation {
	switch cat {
	case category.Exercise:
		return c.Exercise
	case category.Exam:
		return c.Exam
	case category.Final:
		return c.Final
	}

	return Allocation{}
}

// Sum returns the total weight.
func (c Config) Sum() float64 {
	return c.Exercise.Weight + c.Exam.Weight + c.Final.Weight
}

// Validate checks capacities and weights. All problems are reported together;
// each matches [ErrConfig].
func (c Config) Validate() error {
	var errs []error

	for _, cat := range category.Weighted {
		a := c.Get(cat)
		if a.Capacity <= 0 {
			errs = append(errs, &ConfigError{
				Category: cat,
				Reason:   fmt.Sprintf("capacity must be positive, got %d", a.Capacity),
			})
		}
		if a.Weight < 0 || math.IsNaN(a.Weight) || math.IsInf(a.Weight, 0) {
			errs = append(errs, &ConfigError{
				Category: cat,
				Reason:   fmt.Sprintf("weight must be a non-negative number, got %g", a.Weight),
			})
		}
	}

	if sum := c.Sum(); math.IsNaN(sum) || math.Abs(sum-100) > sumTolerance {
		errs = append(errs, &ConfigError{
			Reason: fmt.Sprintf("weights must sum to 100, got %g", sum),
		})
	}

	return errors.Join(errs...)
}
