package yaml

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// ErrEmptyDocument is returned when the input holds no YAML document, e.g.
// an empty gradebook file.
var ErrEmptyDocument = errors.New("empty document")

// Decoder decodes a YAML document. Syntax errors and repeated mapping keys
// are reported as [Error]s carrying the offending token.
type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		d: yaml.NewDecoder(r),
	}
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return ErrEmptyDocument
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	return fmt.Errorf("decode yaml: %w", err)
}
