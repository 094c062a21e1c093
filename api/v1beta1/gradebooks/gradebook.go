// Package gradebooks provides the Gradebook configuration kind.
package gradebooks

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/standing/api"
	"github.com/macropower/standing/api/v1beta1"
	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
	"github.com/macropower/standing/pkg/yaml"
)

const (
	// Kind is the kind of a [Gradebook] document.
	Kind = "Gradebook"

	// FileName is the name [api.FindConfigFile] looks for.
	FileName = "gradebook.yaml"

	// SchemaID is the $id of the Gradebook JSON schema.
	SchemaID = "https://standing.macropower.dev/schemas/gradebooks.v1beta1.json"
)

var (
	//go:embed gradebook.yaml
	defaultGradebookYAML []byte

	// ErrDuplicateRule is returned when two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// ValidKinds contains the valid kind values for gradebooks.
	ValidKinds = []string{Kind}

	// DefaultValidator validates gradebooks against the JSON schema.
	DefaultValidator = yaml.MustNewSchemaValidator(Schema())

	// Compile-time interface checks.
	_ v1beta1.Object = (*Gradebook)(nil)
)

// Gradebook configures how a scores table is weighted and styled.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Gradebook struct {
	v1beta1.TypeMeta `json:",inline"`

	// Weights assigns a capacity and weight to each weighted category.
	Weights weight.Config `json:"weights,omitempty" jsonschema:"title=Weights"`
	// Thresholds are the band boundaries, in percent.
	Thresholds threshold.Thresholds `json:"thresholds,omitempty" jsonschema:"title=Thresholds"`
	// Palette holds the fill colour of each band.
	Palette rule.Palette `json:"palette,omitempty" jsonschema:"title=Palette"`
	// Rules are applied after the built-in rules, in order.
	Rules []*rule.Rule `json:"rules,omitempty" jsonschema:"title=Rules"`
}

// New creates a new [Gradebook] with default values.
func New() *Gradebook {
	g := &Gradebook{TypeMeta: v1beta1.NewTypeMeta(Kind)}
	g.EnsureDefaults()

	return g
}

// EnsureDefaults fills zero sections with their defaults. Sections present
// in a decoded document are left alone.
func (g *Gradebook) EnsureDefaults() {
	if g.Weights == (weight.Config{}) {
		g.Weights = weight.DefaultConfig()
	}
	if g.Thresholds == (threshold.Thresholds{}) {
		g.Thresholds = threshold.Default()
	}

	def := rule.DefaultPalette()
	if g.Palette.Critical == "" {
		g.Palette.Critical = def.Critical
	}
	if g.Palette.Warning == "" {
		g.Palette.Warning = def.Warning
	}
	if g.Palette.Safe == "" {
		g.Palette.Safe = def.Safe
	}
}

// Validate checks the gradebook and compiles its rules.
func (g *Gradebook) Validate() error {
	err := g.Check(ValidKinds...)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(g.Rules))
	for i, r := range g.Rules {
		if r == nil {
			return fmt.Errorf("rules[%d]: empty rule", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("rules[%d]: %w: %q", i, ErrDuplicateRule, r.Name)
		}

		seen[r.Name] = true
	}

	_, err = g.RuleSet()

	return err
}

// RuleSet builds the default rule set for the gradebook's weights,
// thresholds and palette, followed by its own rules.
func (g *Gradebook) RuleSet() (*rule.Set, error) {
	set, err := rule.Default(g.Weights,
		rule.WithThresholds(g.Thresholds),
		rule.WithPalette(g.Palette),
		rule.WithRules(g.Rules...),
	)
	if err != nil {
		return nil, fmt.Errorf("build rule set: %w", err)
	}

	return set, nil
}

// Calculator returns a calculator for the gradebook's weights.
func (g *Gradebook) Calculator() (*weight.Calculator, error) {
	return weight.NewCalculator(g.Weights)
}

func (g Gradebook) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the gradebook to YAML, led by a schema modeline as
// in the default gradebook.
func (g Gradebook) MarshalYAML() ([]byte, error) {
	type alias Gradebook

	b, err := api.MarshalYAML(alias(g), yaml.WithSchemaComment(SchemaID))
	if err != nil {
		return nil, fmt.Errorf("marshal gradebook: %w", err)
	}

	return b, nil
}

// Schema returns the Gradebook JSON schema.
func Schema() *jsonschema.Schema {
	return yaml.NewSchemaGenerator(&Gradebook{}, SchemaID).Reflect()
}

// Default returns the embedded default gradebook document.
func Default() []byte {
	return defaultGradebookYAML
}

// WriteDefault writes the embedded default gradebook to path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultGradebookYAML, force, "gradebook")
	if err != nil {
		return fmt.Errorf("write default gradebook: %w", err)
	}

	return nil
}

// GetPath returns the path of the user's gradebook.
func GetPath() string {
	return api.GetConfigPath(FileName)
}
