package yaml

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Encoder writes gradebooks, plans and reports as YAML, indented by two
// spaces with indented sequences.
type Encoder struct {
	e      *yaml.Encoder
	w      io.Writer
	schema string
	begun  bool
}

// EncoderOpt configures an [Encoder].
type EncoderOpt func(*Encoder)

// WithSchemaComment writes a yaml-language-server modeline pointing at the
// JSON schema id before the first document.
func WithSchemaComment(id string) EncoderOpt {
	return func(e *Encoder) {
		e.schema = id
	}
}

func NewEncoder(w io.Writer, opts ...EncoderOpt) *Encoder {
	e := &Encoder{
		e: yaml.NewEncoder(w, yaml.Indent(2), yaml.IndentSequence(true)),
		w: w,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Encode writes v as the next document.
func (e *Encoder) Encode(v any) error {
	if !e.begun && e.schema != "" {
		_, err := fmt.Fprintf(e.w, "# yaml-language-server: $schema=%s\n", e.schema)
		if err != nil {
			return fmt.Errorf("write schema comment: %w", err)
		}
	}

	e.begun = true

	err := e.e.Encode(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}

func (e *Encoder) Close() error {
	return e.e.Close() //nolint:wrapcheck // Return the original error.
}
