package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/internal/cli"
)

const exampleCSV = `Student,Exam_1,Exercise_1,Exercise_2,Exam_2,Final_Exam
James,86,75,100,92,84
Maria,40,70,60,55,62
`

// syncBuffer is written by the watch loop and read by the test.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// fixtures writes the example scores and the default gradebook to a temp
// directory.
func fixtures(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()

	scores := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(scores, []byte(exampleCSV), 0o600))

	gb := filepath.Join(dir, gradebooks.FileName)
	require.NoError(t, os.WriteFile(gb, gradebooks.Default(), 0o600))

	return scores, gb
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestRun(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	tcs := map[string]struct {
		stdin string
		want  []string
		args  []string
	}{
		"plan document": {
			args: []string{scores, "--config", gb, "-o", "yaml"},
			want: []string{"name: border-exam", "student: Maria", "border: double"},
		},
		"explicit run subcommand": {
			args: []string{"run", scores, "--config", gb, "-o", "yaml"},
			want: []string{"name: average-critical"},
		},
		"scores from stdin": {
			stdin: exampleCSV,
			args:  []string{"--config", gb, "-o", "yaml"},
			want:  []string{"student: James"},
		},
		"sheet title": {
			args: []string{scores, "--config", gb, "-o", "yaml", "--sheet", "Spring"},
			want: []string{"sheet: Spring"},
		},
		"styled table": {
			args: []string{scores, "--config", gb, "-o", "table"},
			want: []string{"Final_Exam", "Average", "86.16", "57.14"},
		},
		"upto by name": {
			args: []string{scores, "--config", gb, "-o", "table", "--upto", "exam_2"},
			want: []string{"Exam_2"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, tc.stdin, tc.args...)
			require.NoError(t, err)

			for _, want := range tc.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRun_Upto(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	out, err := execute(t, "", scores, "--config", gb, "-o", "table", "--upto", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Exercise_1")
	assert.NotContains(t, out, "Final_Exam")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	tcs := map[string]struct {
		wantErr string
		args    []string
	}{
		"unknown column suggests a name": {
			args:    []string{scores, "--config", gb, "--upto", "Exm_2"},
			wantErr: `did you mean "Exam_2"?`,
		},
		"column index out of range": {
			args:    []string{scores, "--config", gb, "--upto", "9"},
			wantErr: "invalid column range",
		},
		"unknown output format": {
			args:    []string{scores, "--config", gb, "-o", "xlsx"},
			wantErr: "unknown output format",
		},
		"missing scores file": {
			args:    []string{filepath.Join(t.TempDir(), "none.csv"), "--config", gb},
			wantErr: "open scores",
		},
		"watch stdin": {
			args:    []string{"-", "--config", gb, "--watch"},
			wantErr: "cannot watch stdin",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, exampleCSV, tc.args...)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestRun_Config(t *testing.T) {
	t.Parallel()

	_, gb := fixtures(t)

	out, err := execute(t, "", "--show-config", "--config", gb)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Gradebook")
	assert.Contains(t, out, "critical: 65")

	path := filepath.Join(t.TempDir(), "nested", gradebooks.FileName)

	out, err = execute(t, "", "--write-config", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, gradebooks.Default(), b)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	scores, _ := fixtures(t)

	out, err := execute(t, "", "classify", "--name", "Final Exam", "--name", "Week_2_Exam", "--name", "Quiz", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Final Exam")
	assert.Contains(t, out, "category: final")
	assert.Contains(t, out, "category: exam")
	assert.Contains(t, out, "category: other")

	out, err = execute(t, "", "classify", scores, "-o", "table")
	require.NoError(t, err)

	for _, want := range []string{"Exercise_2", "exercise", "Final_Exam", "final"} {
		assert.Contains(t, out, want)
	}
}

func TestAverage(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	out, err := execute(t, "", "average", scores, "--config", gb, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "student: James")
	assert.Contains(t, out, "average: 86.1607")
	assert.Contains(t, out, "average: 57.1428")
	assert.Contains(t, out, "possible: 56")
	assert.Contains(t, out, "band: critical")

	// Lowest average first.
	assert.Less(t, strings.Index(out, "Maria"), strings.Index(out, "James"))

	out, err = execute(t, "", "average", scores, "--config", gb, "-o", "table", "--upto", "Exam_2")
	require.NoError(t, err)
	assert.Contains(t, out, "88.65")
	assert.Contains(t, out, "26")
}

func TestRules(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	out, err := execute(t, "", "rules", scores, "--config", gb, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: border-final")
	assert.Contains(t, out, "cells: 2")

	out, err = execute(t, exampleCSV, "rules", "--config", gb, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "average-critical")
	assert.Contains(t, out, "Cells")
}

func TestSchema(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, gradebooks.SchemaID)
	assert.Contains(t, out, `"weights"`)
}

func TestRun_Watch(t *testing.T) {
	t.Parallel()

	scores, gb := fixtures(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	out := &syncBuffer{}

	cmd := cli.NewRootCmd()
	cmd.SetArgs([]string{scores, "--config", gb, "-o", "yaml", "--watch"})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})

	done := make(chan error, 1)

	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "student: Maria")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(scores, []byte(exampleCSV+"Ana,90,90,90,90,90\n"), 0o600))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "student: Ana")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
