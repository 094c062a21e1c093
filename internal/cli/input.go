package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/standing/api"
	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/config"
	"github.com/macropower/standing/pkg/table"
)

const (
	stdinPath = "-"

	OutputAuto  = "auto"
	OutputTable = "table"
	OutputYAML  = "yaml"
)

var (
	errNoScores      = errors.New("no scores file given and stdin is a terminal")
	errUnknownOutput = errors.New("unknown output format")

	// Searched for next to, or above, the scores file.
	gradebookFileNames = []string{gradebooks.FileName, "." + gradebooks.FileName}

	outputFormats = []string{OutputAuto, OutputTable, OutputYAML}
)

// InputArgs locate the scores table and its gradebook.
type InputArgs struct {
	Path       string
	ConfigPath string
	Output     string
}

func (ia *InputArgs) AddFlags(cmd *cobra.Command) {
	ia.addConfigFlag(cmd)
	ia.addOutputFlag(cmd)
}

func (ia *InputArgs) addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ia.ConfigPath, "config", "c", "",
		"Path to the gradebook, default is the nearest gradebook.yaml above the scores file")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

func (ia *InputArgs) addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ia.Output, "output", "o", OutputAuto,
		fmt.Sprintf("Output format, one of: %s", outputFormats))

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

// SetPath sets the scores path from positional args. Without args, scores
// are read from stdin unless it is a terminal.
func (ia *InputArgs) SetPath(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ia.Path = args[0]

		return nil
	}

	if isTerminal(cmd.InOrStdin()) {
		return errNoScores
	}

	ia.Path = stdinPath

	return nil
}

// ReadTable reads the scores CSV and logs scores outside [0, 100].
func (ia *InputArgs) ReadTable(cmd *cobra.Command) (*table.Table, error) {
	var r io.Reader

	if ia.Path == stdinPath {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(ia.Path)
		if err != nil {
			return nil, fmt.Errorf("open scores: %w", err)
		}
		defer func() {
			err := f.Close()
			if err != nil {
				slog.Debug("close scores", slog.Any("error", err))
			}
		}()

		r = f
	}

	t, err := table.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ia.Path, err)
	}

	for _, w := range t.Warnings() {
		slog.Warn("score out of range",
			slog.String("student", w.Student),
			slog.String("column", w.Column),
			slog.Float64("score", w.Value),
		)
	}

	return t, nil
}

// GradebookPath resolves the gradebook to load: the --config flag, else the
// nearest gradebook above the scores file, else the user's gradebook. An
// empty result means the built-in defaults apply.
func (ia *InputArgs) GradebookPath() (string, error) {
	if ia.ConfigPath != "" {
		return ia.ConfigPath, nil
	}

	if ia.Path != "" && ia.Path != stdinPath {
		found, err := api.FindConfigFile(ia.Path, gradebookFileNames)
		if err != nil {
			return "", fmt.Errorf("find gradebook: %w", err)
		}
		if found != "" {
			return found, nil
		}
	}

	userPath := gradebooks.GetPath()

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}

	return "", nil
}

// Gradebook loads the gradebook found by [InputArgs.GradebookPath].
func (ia *InputArgs) Gradebook(cmd *cobra.Command) (*gradebooks.Gradebook, error) {
	path, err := ia.GradebookPath()
	if err != nil {
		return nil, err
	}

	if path == "" {
		slog.Debug("no gradebook found, using defaults")

		g := gradebooks.New()

		err := g.Validate()
		if err != nil {
			return nil, fmt.Errorf("default gradebook: %w", err)
		}

		return g, nil
	}

	return config.LoadGradebookFile(path, config.WithColor(isTerminal(cmd.ErrOrStderr())))
}

// TableOutput reports whether output to w should be a styled table.
func (ia *InputArgs) TableOutput(w io.Writer) (bool, error) {
	switch ia.Output {
	case OutputAuto:
		return isTerminal(w), nil
	case OutputTable:
		return true, nil
	case OutputYAML:
		return false, nil
	}

	return false, fmt.Errorf("%w %q, want one of %s", errUnknownOutput, ia.Output, outputFormats)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int.
}
