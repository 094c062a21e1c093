package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/macropower/standing/pkg/yaml"
)

// report is tabular command output. It prints as a terminal table or as a
// YAML document.
type report struct {
	doc     any
	headers []string
	rows    [][]string
}

func (r *report) write(w io.Writer, styled bool) error {
	if styled {
		lr := lipgloss.NewRenderer(w)
		base := lr.NewStyle().Padding(0, 1)

		tbl := lgtable.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lr.NewStyle().Faint(true)).
			Headers(r.headers...).
			Rows(r.rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == lgtable.HeaderRow {
					return base.Bold(true)
				}

				return base
			})

		_, err := fmt.Fprintln(w, tbl.Render())
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		return nil
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)

	err := enc.Encode(r.doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return writeYAML(w, buf.Bytes())
}
