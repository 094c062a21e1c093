package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	invopop "github.com/invopop/jsonschema"
)

// Validator validates data against a JSON schema.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new [Validator] with the provided JSON schema data.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss}, nil
}

// NewSchemaValidator creates a new [Validator] from a reflected schema.
// The schema's $id is used as the resource URL.
func NewSchemaValidator(s *invopop.Schema) (*Validator, error) {
	schemaData, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	url := s.ID.String()
	if url == "" {
		url = "schema.json"
	}

	return NewValidator(url, schemaData)
}

func MustNewSchemaValidator(s *invopop.Schema) *Validator {
	v, err := NewSchemaValidator(s)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate validates the given data against the schema. Failures are
// returned as an [Error] whose Path points at the most specific failing
// location.
func (s *Validator) Validate(data any) error {
	err := s.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	cause := mostSpecificCause(validationErr)

	return &Error{
		Err:  errors.New(causeMessage(cause)),
		Path: buildPathFromLocation(cause.InstanceLocation),
	}
}

// causeMessage returns the message of a single cause, without the nested
// cause listing [jsonschema.ValidationError.Error] produces.
func causeMessage(err *jsonschema.ValidationError) string {
	return err.ErrorKind.LocalizedString(message.NewPrinter(language.English))
}

// mostSpecificCause returns the leaf cause with the longest InstanceLocation.
func mostSpecificCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return err
	}

	var best *jsonschema.ValidationError
	for _, cause := range err.Causes {
		c := mostSpecificCause(cause)
		if best == nil || len(c.InstanceLocation) > len(best.InstanceLocation) {
			best = c
		}
	}

	return best
}

// buildPathFromLocation converts an InstanceLocation slice to a [yaml.Path].
func buildPathFromLocation(location []string) *yaml.Path {
	current := NewPathBuilder().Root()

	for _, part := range location {
		index, err := strconv.ParseUint(part, 10, 0)
		if err == nil {
			current = current.Index(uint(index))
		} else {
			current = current.Child(part)
		}
	}

	return current.Build()
}
