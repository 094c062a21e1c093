package render

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/weight"
)

const (
	grayFill    = "#BFBFBF"
	cellText    = "#000000"
	missingCell = "-"
)

// Terminal previews a styled worksheet as a table in the terminal.
//
// Fills render as cell backgrounds. Borders cannot differ per cell in a
// terminal table, so a single border renders as underlined text and a double
// border as bold underlined text.
type Terminal struct {
	calc *weight.Calculator
}

// NewTerminal creates a [Terminal]. If calc is not nil, a column with each
// student's final average is appended.
func NewTerminal(calc *weight.Calculator) *Terminal {
	return &Terminal{calc: calc}
}

// RenderWorksheet writes the styled table to sheet.W.
func (r *Terminal) RenderWorksheet(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) error {
	grid, err := Plan(ctx, t, set)
	if err != nil {
		return err
	}

	var finals []float64

	if r.calc != nil {
		m, err := r.calc.Averages(t)
		if err != nil {
			return err
		}

		finals = make([]float64, t.NumRows())
		for i := range finals {
			finals[i] = m.Final(i)
		}
	}

	lr := lipgloss.NewRenderer(sheet.W)
	base := lr.NewStyle().Padding(0, 1)

	headers := []string{t.IdentifierName()}
	for _, c := range t.Columns() {
		headers = append(headers, c.Name)
	}

	if finals != nil {
		headers = append(headers, "Average")
	}

	students := t.Students()
	rows := make([][]string, t.NumRows())

	for i := range rows {
		row := []string{students[i]}
		for j := 1; j < t.NumColumns(); j++ {
			row = append(row, formatScore(t.Score(i, j)))
		}

		if finals != nil {
			row = append(row, formatFloat(finals[i]))
		}

		rows[i] = row
	}

	tbl := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lr.NewStyle().Faint(true)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return base.Bold(true)
			}
			if col >= grid.Shape().Cols {
				return base.Align(lipgloss.Right)
			}

			s := cellStyle(base, grid.At(row, col))
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}

			return s
		})

	if sheet.Name != "" {
		_, err = fmt.Fprintln(sheet.W, lr.NewStyle().Bold(true).Render(sheet.Name))
		if err != nil {
			return fmt.Errorf("write title: %w", err)
		}
	}

	_, err = fmt.Fprintln(sheet.W, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func cellStyle(base lipgloss.Style, s style.Style) lipgloss.Style {
	r := s.Resolve()
	out := base

	switch r.Fill {
	case style.FillSolid:
		if r.Foreground != "" {
			out = out.Background(lipgloss.Color(r.Foreground)).Foreground(lipgloss.Color(cellText))
		}
	case style.FillGray:
		out = out.Background(lipgloss.Color(grayFill)).Foreground(lipgloss.Color(cellText))
	case style.FillNone:
	}

	switch r.Border {
	case style.BorderSingle:
		out = out.Underline(true)
	case style.BorderDouble:
		out = out.Underline(true).Bold(true)
	case style.BorderNone:
	}

	return out
}

func formatScore(s table.Score) string {
	v, ok := s.Float()
	if !ok {
		return missingCell
	}

	return formatFloat(v)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return missingCell
	}

	return humanize.FtoaWithDigits(v, 2)
}
