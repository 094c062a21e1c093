package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/config"
	"github.com/macropower/standing/pkg/threshold"
	"github.com/macropower/standing/pkg/weight"
	"github.com/macropower/standing/pkg/yaml"
)

const header = `apiVersion: standing.macropower.dev/v1beta1
kind: Gradebook
`

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, header)
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), gradebooks.New, gradebooks.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, header, string(got.Data()))
			}
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input  string
		errMsg string
		path   string
	}{
		"header only": {
			input: header,
		},
		"full document": {
			input: header + `weights:
  exercise: {capacity: 5, weight: 20}
  exam: {capacity: 2, weight: 50}
  final: {capacity: 1, weight: 30}
thresholds:
  critical: 60
  safe: 80
rules:
  - name: failed-exam
    match: 'category == category.EXAM && score < 50.0'
    style:
      border: double
`,
		},
		"invalid yaml": {
			input:  header + "weights: [unclosed\n",
			errMsg: "sequence end token ']' not found",
		},
		"missing required fields": {
			input:  "weights: {}\n",
			errMsg: "missing properties 'apiVersion', 'kind'",
			path:   "$",
		},
		"wrong kind": {
			input:  "apiVersion: standing.macropower.dev/v1beta1\nkind: Configuration\n",
			errMsg: "kind",
			path:   "$.kind",
		},
		"weighted other": {
			input: header + `weights:
  exercise: {capacity: 10, weight: 30}
  exam: {capacity: 4, weight: 40}
  final: {capacity: 1, weight: 30}
  other: {capacity: 1, weight: 0}
`,
			errMsg: "other",
			path:   "$.weights",
		},
		"zero capacity": {
			input: header + `weights:
  exercise: {capacity: 0, weight: 30}
  exam: {capacity: 4, weight: 40}
  final: {capacity: 1, weight: 30}
`,
			errMsg: "minimum",
			path:   "$.weights.exercise.capacity",
		},
		"bad colour": {
			input: header + `palette:
  critical: red
  warning: "#FFEB9C"
  safe: "#C6EFCE"
`,
			errMsg: "does not match pattern",
			path:   "$.palette.critical",
		},
		"unknown scope": {
			input: header + `rules:
  - name: everything
    scope: sheet
    match: "true"
    style: {border: single}
`,
			path: "$.rules[0].scope",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), gradebooks.New, gradebooks.DefaultValidator)

			err := cl.Validate()
			if tc.errMsg == "" && tc.path == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)

			if tc.path != "" {
				var yamlErr *yaml.Error
				require.ErrorAs(t, err, &yamlErr)
				require.NotNil(t, yamlErr.Path)
				assert.Equal(t, tc.path, yamlErr.Path.String())
			}
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte(header+`thresholds:
  critical: 50
  safe: 90
`), gradebooks.New, gradebooks.DefaultValidator)

	g, err := cl.Load()
	require.NoError(t, err)

	assert.Equal(t, "Gradebook", g.GetKind())
	assert.Equal(t, threshold.Thresholds{Critical: 50, Safe: 90}, g.Thresholds)
	assert.Equal(t, weight.DefaultConfig(), g.Weights)
	assert.NotEmpty(t, g.Palette.Safe)
}

func TestLoader_LoadSyntaxError(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte(header+"weights: [unclosed\n"), gradebooks.New, gradebooks.DefaultValidator)

	g, err := cl.Load()
	require.Error(t, err)
	assert.Nil(t, g)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, []byte(header+"weights: [unclosed\n"), yamlErr.Source)
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte("kind: Anything\n"), gradebooks.New, gradebooks.DefaultValidator,
		config.WithValidator(nil),
	)

	require.NoError(t, cl.Validate())
}

func TestLoadGradebook(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err    error
		input  string
		errMsg string
		rules  int
	}{
		"defaults": {
			input: header,
			rules: 9,
		},
		"custom rule": {
			input: header + `rules:
  - name: failed-exam
    match: 'category == category.EXAM && score < 50.0'
    style: {border: double}
`,
			rules: 10,
		},
		"weights do not sum to 100": {
			input: header + `weights:
  exercise: {capacity: 10, weight: 30}
  exam: {capacity: 4, weight: 40}
  final: {capacity: 1, weight: 40}
`,
			err: weight.ErrConfig,
		},
		"critical above safe": {
			input: header + `thresholds:
  critical: 80
  safe: 75
`,
			err: threshold.ErrThresholds,
		},
		"duplicate rule": {
			input: header + `rules:
  - name: same
    match: "true"
    style: {border: single}
  - name: same
    match: "false"
    style: {border: single}
`,
			err: gradebooks.ErrDuplicateRule,
		},
		"bad expression": {
			input: header + `rules:
  - name: broken
    match: score <
    style: {border: single}
`,
			errMsg: "compile match expression",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := config.LoadGradebook([]byte(tc.input))
			if tc.err != nil || tc.errMsg != "" {
				require.Error(t, err)
				if tc.err != nil {
					require.ErrorIs(t, err, tc.err)
				}
				assert.Contains(t, err.Error(), tc.errMsg)

				return
			}

			require.NoError(t, err)

			set, err := g.RuleSet()
			require.NoError(t, err)
			assert.Equal(t, tc.rules, set.Len())
		})
	}
}

func TestLoadGradebookFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), gradebooks.FileName)
	require.NoError(t, gradebooks.WriteDefault(path, false))

	g, err := config.LoadGradebookFile(path)
	require.NoError(t, err)

	out, err := g.MarshalYAML()
	require.NoError(t, err)

	g2, err := config.LoadGradebook(out)
	require.NoError(t, err)
	assert.Equal(t, g.Weights, g2.Weights)
	assert.Equal(t, g.Thresholds, g2.Thresholds)
	assert.Equal(t, g.Palette, g2.Palette)

	_, err = config.LoadGradebookFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// createTempFile creates a temporary file with the given content.
func createTempFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "gradebook-*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)

	err = tmpFile.Close()
	require.NoError(t, err)

	return tmpFile.Name()
}
