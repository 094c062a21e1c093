package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/render"
	"github.com/macropower/standing/pkg/yaml"
)

const (
	cmdExamples = `  # Preview the styled gradebook:
  standing scores.csv

  # Use a specific gradebook:
  standing scores.csv --config ./course/gradebook.yaml

  # Show the standing as of the second exam:
  standing scores.csv --upto Exam_2

  # Re-render when the scores or the gradebook change:
  standing scores.csv --watch

  # Send the evaluated plan to another program:
  standing scores.csv -o yaml | xlsx-writer

  # Write the default gradebook to $XDG_CONFIG_HOME/standing/gradebook.yaml:
  standing --write-config`
)

type RunArgs struct {
	*RootArgs
	InputArgs

	Upto        string
	Sheet       string
	Watch       bool
	WriteConfig bool
	ShowConfig  bool
	Force       bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	ra.InputArgs.AddFlags(cmd)

	cmd.Flags().StringVar(&ra.Upto, "upto", "", "Last column to include, by name or index (default: all columns)")
	cmd.Flags().StringVar(&ra.Sheet, "sheet", "", "Worksheet title")
	cmd.Flags().BoolVarP(&ra.Watch, "watch", "w", false, "Watch the scores and gradebook and re-render on change")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default gradebook and exit")
	cmd.Flags().BoolVar(&ra.Force, "force", false, "With --write-config, back up and replace an existing gradebook")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active gradebook and exit")
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [scores.csv]",
		Short:             "Default command, can be used explicitly if the path is ambiguous",
		Example:           cmdExamples,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: csvCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ra.WriteConfig {
				return writeConfig(cmd, ra)
			}

			if len(args) > 0 || !ra.ShowConfig {
				err := ra.SetPath(cmd, args)
				if err != nil {
					return err
				}
			}

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func csvCompletion(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []cobra.Completion{"csv"}, cobra.ShellCompDirectiveFilterFileExt
	}

	return nil, cobra.ShellCompDirectiveNoFileComp
}

func writeConfig(cmd *cobra.Command, ra *RunArgs) error {
	path := ra.ConfigPath
	if path == "" {
		path = gradebooks.GetPath()
	}

	err := gradebooks.WriteDefault(path, ra.Force)
	if err != nil {
		return err
	}

	mustN(fmt.Fprintln(cmd.OutOrStdout(), path))

	return nil
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	_, err := ra.TableOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if ra.ShowConfig {
		return showConfig(cmd, ra)
	}

	if !ra.Watch {
		return renderOnce(cmd.Context(), cmd, ra, cmd.OutOrStdout())
	}

	if ra.Path == stdinPath {
		return fmt.Errorf("--watch: %w", errWatchStdin)
	}

	paths := []string{ra.Path}

	gbPath, err := ra.GradebookPath()
	if err != nil {
		return err
	}
	if gbPath != "" {
		paths = append(paths, gbPath)
	}

	out := termenv.NewOutput(cmd.OutOrStdout())

	return watch(cmd.Context(), paths, func(ctx context.Context) error {
		var buf bytes.Buffer

		err := renderOnce(ctx, cmd, ra, &buf)
		if err != nil {
			return err
		}

		if isTerminal(cmd.OutOrStdout()) {
			out.ClearScreen()
		}

		_, err = buf.WriteTo(out)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	})
}

// renderOnce loads the inputs and renders the worksheet once.
func renderOnce(ctx context.Context, cmd *cobra.Command, ra *RunArgs, w io.Writer) error {
	g, err := ra.Gradebook(cmd)
	if err != nil {
		return err
	}

	t, err := ra.ReadTable(cmd)
	if err != nil {
		return err
	}

	upto, err := t.Lookup(ra.Upto)
	if err != nil {
		return err
	}

	t, err = t.Prefix(upto)
	if err != nil {
		return err
	}

	set, err := g.RuleSet()
	if err != nil {
		return err
	}

	calc, err := g.Calculator()
	if err != nil {
		return err
	}

	styled, err := ra.TableOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var r render.Renderer = render.NewDocument()
	if styled {
		r = render.NewTerminal(calc)
	}

	slog.Debug("render worksheet",
		slog.String("scores", ra.Path),
		slog.Int("upto", upto),
		slog.Int("rules", set.Len()),
		slog.Bool("styled", styled),
	)

	return r.RenderWorksheet(ctx, render.Sheet{W: w, Name: ra.Sheet}, t, set)
}

func showConfig(cmd *cobra.Command, ra *RunArgs) error {
	g, err := ra.Gradebook(cmd)
	if err != nil {
		return err
	}

	path, err := ra.GradebookPath()
	if err != nil {
		return err
	}

	slog.Info("active gradebook", slog.String("path", path))

	b, err := g.MarshalYAML()
	if err != nil {
		return err
	}

	return writeYAML(cmd.OutOrStdout(), b)
}

// writeYAML writes a YAML document, highlighted when w is a terminal.
func writeYAML(w io.Writer, b []byte) error {
	if isTerminal(w) {
		return yaml.Highlight(w, b, "", "")
	}

	_, err := w.Write(b)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
