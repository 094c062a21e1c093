package yaml_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/pkg/yaml"
)

const source = `apiVersion: standing.macropower.dev/v1beta1
kind: Gradebook
weights:
  exercise: 20
  exam: 50
  final: 30
thresholds:
  critical: 65
  safe: 75
`

func TestError_AnnotateSource(t *testing.T) {
	t.Parallel()

	err := yaml.NewError(
		errors.New("weights must sum to 100"),
		yaml.WithPath(yaml.NewPathBuilder().Root().Child("weights").Child("exam").Build()),
		yaml.WithSource([]byte(source)),
	)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "[5:3] weights must sum to 100:"), msg)
	assert.Contains(t, msg, "exam: 50")
	assert.NotContains(t, msg, "\x1b[")
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := yaml.NewError(base, yaml.WithPath(yaml.NewPathBuilder().Root().Child("kind").Build()))

	require.ErrorIs(t, err, base)
}

func TestErrorWrapper(t *testing.T) {
	t.Parallel()

	ew := yaml.NewErrorWrapper(yaml.WithSource([]byte(source)))

	plain := errors.New("plain")
	assert.Same(t, plain, ew.Wrap(plain))
	require.NoError(t, ew.Wrap(nil))

	wrapped := ew.Wrap(yaml.NewError(errors.New("bad kind"),
		yaml.WithPath(yaml.NewPathBuilder().Root().Child("kind").Build()),
	))

	var yamlErr *yaml.Error
	require.ErrorAs(t, wrapped, &yamlErr)
	assert.Equal(t, []byte(source), yamlErr.Source)
	assert.Contains(t, wrapped.Error(), "[2:1] bad kind")
}

func TestDecoder_SyntaxError(t *testing.T) {
	t.Parallel()

	var v map[string]any

	err := yaml.NewDecoder(strings.NewReader("weights: [exam: 1\n")).Decode(&v)
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.NotNil(t, yamlErr.Token)
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	require.NoError(t, yaml.Highlight(&buf, []byte(source), "noop", ""))
	assert.Equal(t, source, buf.String())
}
