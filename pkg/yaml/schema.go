package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	reflector *jsonschema.Reflector
	v         any
	id        jsonschema.ID
}

// NewSchemaGenerator creates a [SchemaGenerator] for the type of v. The
// schema's $id is set to id.
func NewSchemaGenerator(v any, id string) *SchemaGenerator {
	return &SchemaGenerator{
		reflector: &jsonschema.Reflector{
			Anonymous:      true,
			DoNotReference: true,
		},
		v:  v,
		id: jsonschema.ID(id),
	}
}

// Reflect returns the schema.
func (g *SchemaGenerator) Reflect() *jsonschema.Schema {
	s := g.reflector.Reflect(g.v)
	s.ID = g.id

	return s
}

// Generate returns the schema as indented JSON.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	b, err := json.MarshalIndent(g.Reflect(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}
