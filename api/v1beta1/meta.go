// Package v1beta1 contains the metadata shared by all v1beta1 configuration
// kinds.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all configuration kinds.
const APIVersion = "standing.macropower.dev/v1beta1"

var (
	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}

	ErrUnsupportedVersion = errors.New("unsupported apiVersion")
	ErrUnknownKind        = errors.New("unknown kind")
)

// TypeMeta identifies a configuration document, e.g.
//
//	apiVersion: standing.macropower.dev/v1beta1
//	kind: Gradebook
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// NewTypeMeta returns the current [APIVersion] with kind.
func NewTypeMeta(kind string) TypeMeta {
	return TypeMeta{APIVersion: APIVersion, Kind: kind}
}

func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check reports whether tm names a valid API version and one of kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("%w %q, want one of %q", ErrUnsupportedVersion, tm.APIVersion, ValidAPIVersions)
	}
	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w %q, want one of %q", ErrUnknownKind, tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all config types implement.
// EnsureDefaults fills unset fields after decoding.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of jss
// to the given values. The first API version becomes the default. It panics
// if either property is missing.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	restrict(jss, "apiVersion", apiVersions)
	restrict(jss, "kind", kinds)
}

func restrict(jss *jsonschema.Schema, name string, values []string) {
	prop, ok := jss.Properties.Get(name)
	if !ok {
		panic(fmt.Sprintf("%s property not found in schema", name))
	}

	for _, v := range values {
		prop.Enum = append(prop.Enum, v)
	}

	if len(values) > 0 {
		prop.Default = values[0]
	}

	_, _ = jss.Properties.Set(name, prop)
}
