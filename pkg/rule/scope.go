package rule

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/macropower/standing/pkg/mask"
	"github.com/macropower/standing/pkg/table"
)

// ErrUnknownScope is returned when parsing an unrecognized scope name.
var ErrUnknownScope = errors.New("unknown scope")

// Scope names the region of the table a rule's mask covers.
//
// Masks are placed onto the styled grid at a fixed column offset and never
// broadcast: a predicate must produce exactly [Scope.Shape] for its table.
type Scope string

const (
	// ScopeScores covers every score cell: rows × score columns, starting at
	// table column 1.
	ScopeScores Scope = "scores"
	// ScopeIdentifier covers the identifier column: rows × 1, at table
	// column 0.
	ScopeIdentifier Scope = "identifier"
	// ScopeTable covers the whole table: rows × all columns, identifier
	// included.
	ScopeTable Scope = "table"
)

// Scopes lists every scope.
var Scopes = []Scope{ScopeScores, ScopeIdentifier, ScopeTable}

// ParseScope parses a scope name.
func ParseScope(s string) (Scope, error) {
	for _, known := range Scopes {
		if Scope(s) == known {
			return known, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Shape returns the mask shape expected for t.
func (s Scope) Shape(t *table.Table) mask.Shape {
	switch s {
	case ScopeIdentifier:
		return mask.Shape{Rows: t.NumRows(), Cols: 1}
	case ScopeTable:
		return mask.Shape{Rows: t.NumRows(), Cols: t.NumColumns()}
	}

	return mask.Shape{Rows: t.NumRows(), Cols: t.NumColumns() - 1}
}

// Origin returns the table column at which the scope's first mask column is
// placed.
func (s Scope) Origin() int {
	if s == ScopeScores {
		return 1
	}

	return 0
}

// Column converts a mask column to a table column index.
func (s Scope) Column(j int) int {
	return s.Origin() + j
}

// Validate checks that s is a known scope.
func (s Scope) Validate() error {
	_, err := ParseScope(string(s))
	return err
}

func (s Scope) String() string {
	return string(s)
}

// JSONSchema restricts the scope to its known values.
func (Scope) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(Scopes))
	for _, s := range Scopes {
		enum = append(enum, string(s))
	}

	return &jsonschema.Schema{
		Type:    "string",
		Title:   "Scope",
		Enum:    enum,
		Default: string(ScopeScores),
	}
}
