package table

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is matched by [MissingValueError].
	ErrMissingValue = errors.New("missing value")
	// ErrInvalidColumnRange is matched by [InvalidColumnRangeError].
	ErrInvalidColumnRange = errors.New("invalid column range")

	ErrNoColumns        = errors.New("table has no score columns")
	ErrEmptyStudent     = errors.New("empty student identifier")
	ErrDuplicateStudent = errors.New("duplicate student identifier")
	ErrRowWidth         = errors.New("row width does not match header")
)

// MissingValueError is returned when a scoring or threshold operation reaches
// a cell with no usable numeric value.
type MissingValueError struct {
	Student string
	Column  string
	Row     int
	Col     int
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%v: student %q, column %q (row %d, column %d)",
		ErrMissingValue, e.Student, e.Column, e.Row, e.Col)
}

func (e *MissingValueError) Unwrap() error {
	return ErrMissingValue
}

// InvalidColumnRangeError is returned when a column prefix index falls outside
// the score columns.
type InvalidColumnRangeError struct {
	Upto int
	Min  int
	Max  int
}

func (e *InvalidColumnRangeError) Error() string {
	return fmt.Sprintf("%v: %d is outside [%d, %d]", ErrInvalidColumnRange, e.Upto, e.Min, e.Max)
}

func (e *InvalidColumnRangeError) Unwrap() error {
	return ErrInvalidColumnRange
}
