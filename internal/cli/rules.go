package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/macropower/standing/pkg/render"
	"github.com/macropower/standing/pkg/rule"
)

type RulesArgs struct {
	*RootArgs
	InputArgs

	Upto string
}

func NewRulesCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &RulesArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "rules [scores.csv]",
		Short: "List the gradebook's rules and the cells each one selects",
		Example: `  # List the active rules:
  standing rules

  # Count the cells each rule selects:
  standing rules scores.csv`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: csvCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			styled, err := ra.TableOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if len(args) > 0 || !isTerminal(cmd.InOrStdin()) {
				err := ra.SetPath(cmd, args)
				if err != nil {
					return err
				}
			}

			rep, err := ra.rules(cmd)
			if err != nil {
				return err
			}

			return rep.write(cmd.OutOrStdout(), styled)
		},
	}

	ra.InputArgs.AddFlags(cmd)
	cmd.Flags().StringVar(&ra.Upto, "upto", "", "Last column to include, by name or index (default: all columns)")

	bindEnvVars(cmd)

	return cmd
}

// rules lists the rule set. With a scores table, each rule is evaluated and
// the number of cells it selects is included.
func (ra *RulesArgs) rules(cmd *cobra.Command) (*report, error) {
	g, err := ra.Gradebook(cmd)
	if err != nil {
		return nil, err
	}

	set, err := g.RuleSet()
	if err != nil {
		return nil, err
	}

	if ra.Path == "" {
		summaries := make([]render.RuleSummary, 0, set.Len())
		r := &report{headers: []string{"Name", "Scope", "Match", "Style"}}

		for _, rl := range set.Rules() {
			summaries = append(summaries, render.RuleSummary{Name: rl.Name, Scope: rl.Scope, Style: rl.Style})
			r.rows = append(r.rows, []string{rl.Name, rl.Scope.String(), describeMatch(rl), rl.Style.String()})
		}

		r.doc = summaries

		return r, nil
	}

	t, err := ra.ReadTable(cmd)
	if err != nil {
		return nil, err
	}

	upto, err := t.Lookup(ra.Upto)
	if err != nil {
		return nil, err
	}

	t, err = t.Prefix(upto)
	if err != nil {
		return nil, err
	}

	doc, err := render.NewDocument().Build(cmd.Context(), render.Sheet{}, t, set)
	if err != nil {
		return nil, err
	}

	r := &report{
		doc:     doc.Rules,
		headers: []string{"Name", "Scope", "Match", "Style", "Cells"},
	}

	for i, rl := range set.Rules() {
		r.rows = append(r.rows, []string{
			rl.Name,
			rl.Scope.String(),
			describeMatch(rl),
			rl.Style.String(),
			strconv.Itoa(doc.Rules[i].Cells),
		})
	}

	return r, nil
}

func describeMatch(r *rule.Rule) string {
	if r.Match != "" {
		return r.Match
	}

	if s, ok := r.Predicate().(fmt.Stringer); ok {
		return s.String()
	}

	return "(built-in)"
}
