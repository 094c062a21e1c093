package category

import "fmt"

// Counts holds the number of columns seen per category.
type Counts struct {
	Exercise int `json:"exercise" yaml:"exercise"`
	Exam     int `json:"exam"     yaml:"exam"`
	Final    int `json:"final"    yaml:"final"`
	Other    int `json:"other"    yaml:"other"`
}

// Of returns the count for c.
func (c Counts) Of(cat Category) int {
	switch cat {
	case Exercise:
		return c.Exercise
	case Exam:
		return c.Exam
	case Final:
		return c.Final
	case Other:
		return c.Other
	}

	return 0
}

// Add returns a copy of c with one more column of the given category.
func (c Counts) Add(cat Category) Counts {
	switch cat {
	case Exercise:
		c.Exercise++
	case Exam:
		c.Exam++
	case Final:
		c.Final++
	default:
		c.Other++
	}

	return c
}

func (c Counts) String() string {
	return fmt.Sprintf("exercise=%d exam=%d final=%d other=%d", c.Exercise, c.Exam, c.Final, c.Other)
}

// Schema is the cached classification of a table's score columns, in column
// order. It is computed once per table and treated as part of the table
// thereafter.
type Schema []Category

// NewSchema classifies each column name.
func NewSchema(names []string) Schema {
	s := make(Schema, len(names))
	for i, name := range names {
		s[i] = Classify(name)
	}

	return s
}

// Counts tallies the categories of the first n columns. n is clamped to the
// schema length; callers validate ranges before asking.
func (s Schema) Counts(n int) Counts {
	var c Counts

	n = min(max(n, 0), len(s))
	for _, cat := range s[:n] {
		c = c.Add(cat)
	}

	return c
}
