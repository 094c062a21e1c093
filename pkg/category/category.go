package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/cases"
)

// Category is the classification of a score column.
type Category string

const (
	Exercise Category = "exercise"
	Exam     Category = "exam"
	Final    Category = "final"
	Other    Category = "other"
)

// ErrUnknownCategory is returned when parsing an unrecognized category name.
var ErrUnknownCategory = errors.New("unknown category")

var (
	// All lists every category, weighted ones first.
	All = []Category{Exercise, Exam, Final, Other}

	// Weighted lists the categories that contribute to the average.
	Weighted = []Category{Exercise, Exam, Final}

	// Patterns are checked in order; the first hit wins.
	patterns = []struct {
		substr string
		cat    Category
	}{
		{substr: "final", cat: Final},
		{substr: "exam", cat: Exam},
		{substr: "exercise", cat: Exercise},
	}
)

// Classify maps a column name to its [Category]. It never fails, and the same
// name always yields the same category.
func Classify(name string) Category {
	// A [cases.Caser] is stateful and not safe for concurrent use.
	folded := cases.Fold().String(name)

	for _, p := range patterns {
		if strings.Contains(folded, p.substr) {
			return p.cat
		}
	}

	return Other
}

// Parse parses a category name, ignoring case.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if c == known {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Weighted reports whether the category contributes to scoring.
func (c Category) Weighted() bool {
	return c == Exercise || c == Exam || c == Final
}

func (c Category) String() string {
	return string(c)
}

// JSONSchema restricts the category to its known values.
func (Category) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(All))
	for _, c := range All {
		enum = append(enum, string(c))
	}

	return &jsonschema.Schema{
		Type:  "string",
		Title: "Category",
		Enum:  enum,
	}
}
