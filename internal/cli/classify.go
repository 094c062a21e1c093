package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/macropower/standing/pkg/category"
	"github.com/macropower/standing/pkg/table"
)

type ClassifyArgs struct {
	*RootArgs
	InputArgs

	Names []string
}

func NewClassifyCmd(rootArgs *RootArgs) *cobra.Command {
	ca := &ClassifyArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "classify [scores.csv]",
		Short: "Show the category of each score column",
		Example: `  # Classify the columns of a gradebook:
  standing classify scores.csv

  # Classify column names directly:
  standing classify --name "Final Exam" --name Week_2_Exam`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: csvCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			styled, err := ca.TableOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var columns []table.Column

			if len(ca.Names) > 0 {
				for i, name := range ca.Names {
					columns = append(columns, table.Column{
						Name:     name,
						Index:    i + 1,
						Category: category.Classify(name),
					})
				}
			} else {
				err := ca.SetPath(cmd, args)
				if err != nil {
					return err
				}

				t, err := ca.ReadTable(cmd)
				if err != nil {
					return err
				}

				columns = t.Columns()
			}

			return classifyReport(columns).write(cmd.OutOrStdout(), styled)
		},
	}

	ca.addOutputFlag(cmd)
	cmd.Flags().StringArrayVar(&ca.Names, "name", nil, "Classify this column name instead of reading a scores file")

	bindEnvVars(cmd)

	return cmd
}

func classifyReport(columns []table.Column) *report {
	r := &report{
		doc:     columns,
		headers: []string{"Index", "Column", "Category"},
	}

	for _, c := range columns {
		r.rows = append(r.rows, []string{strconv.Itoa(c.Index), c.Name, c.Category.String()})
	}

	return r
}
