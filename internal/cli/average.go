package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/standing/pkg/summary"
)

type AverageArgs struct {
	*RootArgs
	InputArgs

	Upto string
}

func NewAverageCmd(rootArgs *RootArgs) *cobra.Command {
	aa := &AverageArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "average [scores.csv]",
		Short: "Show each student's weighted running average",
		Example: `  # Averages over every column:
  standing average scores.csv

  # Averages as of the fourth column:
  standing average scores.csv --upto 4`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: csvCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			styled, err := aa.TableOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			err = aa.SetPath(cmd, args)
			if err != nil {
				return err
			}

			rep, err := aa.average(cmd)
			if err != nil {
				return err
			}

			return averageReport(rep).write(cmd.OutOrStdout(), styled)
		},
	}

	aa.InputArgs.AddFlags(cmd)
	cmd.Flags().StringVar(&aa.Upto, "upto", "", "Last column to include, by name or index (default: all columns)")

	bindEnvVars(cmd)

	return cmd
}

func (aa *AverageArgs) average(cmd *cobra.Command) (*summary.Averages, error) {
	g, err := aa.Gradebook(cmd)
	if err != nil {
		return nil, err
	}

	t, err := aa.ReadTable(cmd)
	if err != nil {
		return nil, err
	}

	upto, err := t.Lookup(aa.Upto)
	if err != nil {
		return nil, err
	}

	calc, err := g.Calculator()
	if err != nil {
		return nil, err
	}

	return summary.Compute(calc, g.Thresholds, t, upto)
}

func averageReport(rep *summary.Averages) *report {
	r := &report{
		doc:     rep,
		headers: []string{"Student", "Earned", "Possible", "Average", "Band"},
	}

	for _, s := range rep.Students {
		r.rows = append(r.rows, []string{
			s.Student,
			humanize.FtoaWithDigits(s.Earned, 2),
			humanize.FtoaWithDigits(s.Possible, 2),
			humanize.FtoaWithDigits(s.Average, 2),
			s.Band.String(),
		})
	}

	return r
}
