// Package threshold sorts scores and averages into standing bands.
//
// With the default [Thresholds], a value x is:
//
//	critical  x < 65
//	warning   65 ≤ x < 75
//	safe      x ≥ 75
//
// Bands are half-open, so every finite value falls into exactly one.
package threshold

import (
	"errors"
	"fmt"
	"math"

	"github.com/invopop/jsonschema"

	"github.com/macropower/standing/pkg/mask"
	"github.com/macropower/standing/pkg/table"
)

// Band is a standing band.
type Band string

const (
	Critical Band = "critical"
	Warning  Band = "warning"
	Safe     Band = "safe"
)

// Bands lists every band, lowest first.
var Bands = []Band{Critical, Warning, Safe}

var (
	// ErrThresholds is returned for invalid [Thresholds].
	ErrThresholds = errors.New("invalid thresholds")
	// ErrUnknownBand is returned when parsing an unrecognized band name.
	ErrUnknownBand = errors.New("unknown band")
)

// ParseBand parses a band name.
func ParseBand(s string) (Band, error) {
	for _, b := range Bands {
		if string(b) == s {
			return b, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownBand, s)
}

func (b Band) String() string {
	return string(b)
}

// JSONSchema restricts the band to its known values.
func (Band) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(Bands))
	for _, b := range Bands {
		enum = append(enum, string(b))
	}

	return &jsonschema.Schema{
		Type:  "string",
		Title: "Band",
		Enum:  enum,
	}
}

// Thresholds are the lower bounds of the warning and safe bands.
type Thresholds struct {
	// Critical is the lowest value that is not critical.
	Critical float64 `json:"critical" jsonschema:"title=Critical Below,default=65"`
	// Safe is the lowest value that is safe.
	Safe float64 `json:"safe" jsonschema:"title=Safe From,default=75"`
}

// Default returns the 65/75 thresholds.
func Default() Thresholds {
	return Thresholds{Critical: 65, Safe: 75}
}

// Validate checks that the bounds are finite and ordered.
func (th Thresholds) Validate() error {
	if !finite(th.Critical) || !finite(th.Safe) {
		return fmt.Errorf("%w: bounds must be finite", ErrThresholds)
	}
	if th.Critical >= th.Safe {
		return fmt.Errorf("%w: critical (%g) must be below safe (%g)", ErrThresholds, th.Critical, th.Safe)
	}

	return nil
}

// BelowCritical reports x < Critical. The band predicates expect a finite
// x; NaN is in no band, so all three report false for it. Use [Thresholds.BandOf]
// where NaN must be told apart.
func (th Thresholds) BelowCritical(x float64) bool {
	return x < th.Critical
}

// WarningBand reports Critical ≤ x < Safe.
func (th Thresholds) WarningBand(x float64) bool {
	return x >= th.Critical && x < th.Safe
}

// SafeBand reports x ≥ Safe.
func (th Thresholds) SafeBand(x float64) bool {
	return x >= th.Safe
}

// In reports whether x falls in band b.
func (th Thresholds) In(b Band, x float64) bool {
	switch b {
	case Critical:
		return th.BelowCritical(x)
	case Warning:
		return th.WarningBand(x)
	case Safe:
		return th.SafeBand(x)
	}

	return false
}

// BandOf returns the band x falls in. NaN is not in any band and returns
// false.
func (th Thresholds) BandOf(x float64) (Band, bool) {
	switch {
	case math.IsNaN(x):
		return "", false
	case th.BelowCritical(x):
		return Critical, true
	case th.WarningBand(x):
		return Warning, true
	}

	return Safe, true
}

// Mask evaluates band b over a score matrix. The result has the matrix's
// shape; an empty matrix gives a 0x0 mask, so callers holding a table should
// use [Thresholds.TableMask]. Any missing or non-numeric cell fails with a
// [*table.MissingValueError] whose Col is the table index (score column + 1).
func (th Thresholds) Mask(values [][]table.Score, b Band) (*mask.Mask, error) {
	shape := mask.Shape{Rows: len(values)}
	if len(values) > 0 {
		shape.Cols = len(values[0])
	}

	m := mask.New(shape)

	for i, row := range values {
		if len(row) != shape.Cols {
			return nil, &mask.ShapeMismatchError{
				Want: mask.Shape{Rows: 1, Cols: shape.Cols},
				Got:  mask.Shape{Rows: 1, Cols: len(row)},
			}
		}

		for j, s := range row {
			v, ok := s.Float()
			if !ok {
				return nil, &table.MissingValueError{Row: i, Col: j + 1}
			}

			m.Set(i, j, th.In(b, v))
		}
	}

	return m, nil
}

// TableMask evaluates band b over the score columns of t. The result is
// always t.NumRows() × len(t.Columns()), including for a table with no
// students. A missing score fails with the [*table.MissingValueError] from
// [table.Table.Float].
func (th Thresholds) TableMask(t *table.Table, b Band) (*mask.Mask, error) {
	m := mask.New(mask.Shape{Rows: t.NumRows(), Cols: len(t.Columns())})

	for i := range m.Shape().Rows {
		for j := range m.Shape().Cols {
			v, err := t.Float(i, j+1)
			if err != nil {
				return nil, err
			}

			m.Set(i, j, th.In(b, v))
		}
	}

	return m, nil
}

// BelowCritical reports x < 65, and false for NaN.
func BelowCritical(x float64) bool {
	return Default().BelowCritical(x)
}

// WarningBand reports 65 ≤ x < 75, and false for NaN.
func WarningBand(x float64) bool {
	return Default().WarningBand(x)
}

// SafeBand reports x ≥ 75, and false for NaN.
func SafeBand(x float64) bool {
	return Default().SafeBand(x)
}

// Mask evaluates band b over values with the default thresholds.
func Mask(values [][]table.Score, b Band) (*mask.Mask, error) {
	return Default().Mask(values, b)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
