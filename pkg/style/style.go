// Package style defines cell styles and the grid they are overlaid onto.
//
// Every [Style] field is optional. Merging copies only the fields that are
// set, so rules compose field by field rather than replacing whole styles.
// Unset fields resolve to the documented defaults: no fill, no colour, no
// border, no wrapping.
package style

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

// ErrInvalid is returned for unrecognized style values.
var ErrInvalid = errors.New("invalid style value")

// FillPattern is a cell fill pattern.
type FillPattern string

const (
	FillNone  FillPattern = "none"
	FillSolid FillPattern = "solid"
	FillGray  FillPattern = "gray"
)

// BorderStyle is a cell border line.
type BorderStyle string

const (
	BorderNone   BorderStyle = "none"
	BorderSingle BorderStyle = "single"
	BorderDouble BorderStyle = "double"
)

var (
	fillPatterns = []FillPattern{FillNone, FillSolid, FillGray}
	borderStyles = []BorderStyle{BorderNone, BorderSingle, BorderDouble}

	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Color is an RGB colour in #RRGGBB form.
type Color string

// ParseColor validates and normalizes a colour. The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !colorPattern.MatchString(s) {
		return "", fmt.Errorf("%w: color %q: want #RRGGBB", ErrInvalid, s)
	}

	return Color(strings.ToUpper(s)), nil
}

// MustParseColor is like [ParseColor] but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}

	return c
}

// Validate checks the colour's format.
func (c Color) Validate() error {
	_, err := ParseColor(string(c))
	return err
}

func (c Color) String() string {
	return string(c)
}

// JSONSchema constrains colours to hex triplets.
func (Color) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:    "string",
		Title:   "Color",
		Pattern: colorPattern.String(),
	}
}

// Validate checks the pattern is known.
func (p FillPattern) Validate() error {
	for _, known := range fillPatterns {
		if p == known {
			return nil
		}
	}

	return fmt.Errorf("%w: fill pattern %q", ErrInvalid, string(p))
}

// JSONSchema restricts fill patterns to the known values.
func (FillPattern) JSONSchema() *jsonschema.Schema {
	return enumSchema("Fill Pattern", fillPatterns)
}

// Validate checks the border style is known.
func (b BorderStyle) Validate() error {
	for _, known := range borderStyles {
		if b == known {
			return nil
		}
	}

	return fmt.Errorf("%w: border style %q", ErrInvalid, string(b))
}

// JSONSchema restricts border styles to the known values.
func (BorderStyle) JSONSchema() *jsonschema.Schema {
	return enumSchema("Border Style", borderStyles)
}

// Style is a partial cell style. Nil fields are unset.
type Style struct {
	// Fill is the cell fill pattern.
	Fill *FillPattern `json:"fill,omitempty" jsonschema:"title=Fill Pattern"`
	// Foreground is the fill pattern's foreground colour, which is the
	// visible cell colour for a solid fill.
	Foreground *Color `json:"foreground,omitempty" jsonschema:"title=Foreground Color"`
	// Border is the line drawn around the cell.
	Border *BorderStyle `json:"border,omitempty" jsonschema:"title=Border Style"`
	// WrapText wraps long cell content.
	WrapText *bool `json:"wrapText,omitempty" jsonschema:"title=Wrap Text"`
}

// WithFill returns a copy of s with the fill set.
func (s Style) WithFill(p FillPattern) Style {
	s.Fill = &p
	return s
}

// WithForeground returns a copy of s with the foreground colour set.
func (s Style) WithForeground(c Color) Style {
	s.Foreground = &c
	return s
}

// WithBorder returns a copy of s with the border set.
func (s Style) WithBorder(b BorderStyle) Style {
	s.Border = &b
	return s
}

// WithWrapText returns a copy of s with wrapping set.
func (s Style) WithWrapText(v bool) Style {
	s.WrapText = &v
	return s
}

// Solid returns a solid fill in colour c.
func Solid(c Color) Style {
	return Style{}.WithFill(FillSolid).WithForeground(c)
}

// Merge returns s overlaid with every field that is set in top.
func (s Style) Merge(top Style) Style {
	if top.Fill != nil {
		s.Fill = ptr(*top.Fill)
	}
	if top.Foreground != nil {
		s.Foreground = ptr(*top.Foreground)
	}
	if top.Border != nil {
		s.Border = ptr(*top.Border)
	}
	if top.WrapText != nil {
		s.WrapText = ptr(*top.WrapText)
	}

	return s
}

// IsZero reports whether no field is set.
func (s Style) IsZero() bool {
	return s.Fill == nil && s.Foreground == nil && s.Border == nil && s.WrapText == nil
}

// Equal compares the set fields of two styles by value.
func (s Style) Equal(o Style) bool {
	return eq(s.Fill, o.Fill) && eq(s.Foreground, o.Foreground) &&
		eq(s.Border, o.Border) && eq(s.WrapText, o.WrapText)
}

// Validate checks every set field.
func (s Style) Validate() error {
	var errs []error

	if s.Fill != nil {
		errs = append(errs, s.Fill.Validate())
	}
	if s.Foreground != nil {
		errs = append(errs, s.Foreground.Validate())
	}
	if s.Border != nil {
		errs = append(errs, s.Border.Validate())
	}

	return errors.Join(errs...)
}

// Resolved is a [Style] with defaults applied.
type Resolved struct {
	Fill       FillPattern `json:"fill"       yaml:"fill"`
	Foreground Color       `json:"foreground" yaml:"foreground,omitempty"`
	Border     BorderStyle `json:"border"     yaml:"border"`
	WrapText   bool        `json:"wrapText"   yaml:"wrapText"`
}

// Resolve fills unset fields with their defaults.
func (s Style) Resolve() Resolved {
	r := Resolved{Fill: FillNone, Border: BorderNone}

	if s.Fill != nil {
		r.Fill = *s.Fill
	}
	if s.Foreground != nil {
		r.Foreground = *s.Foreground
	}
	if s.Border != nil {
		r.Border = *s.Border
	}
	if s.WrapText != nil {
		r.WrapText = *s.WrapText
	}

	return r
}

func (s Style) String() string {
	var parts []string

	if s.Fill != nil {
		parts = append(parts, "fill="+string(*s.Fill))
	}
	if s.Foreground != nil {
		parts = append(parts, "foreground="+string(*s.Foreground))
	}
	if s.Border != nil {
		parts = append(parts, "border="+string(*s.Border))
	}
	if s.WrapText != nil {
		parts = append(parts, fmt.Sprintf("wrap=%t", *s.WrapText))
	}

	return "{" + strings.Join(parts, " ") + "}"
}

func ptr[T any](v T) *T {
	return &v
}

func eq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func enumSchema[T ~string](title string, values []T) *jsonschema.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, string(v))
	}

	return &jsonschema.Schema{
		Type:  "string",
		Title: title,
		Enum:  enum,
	}
}
