package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/weight"
)

// ErrorHandler prints err for fang, followed by a hint where one applies.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, lipgloss.NewStyle().MarginLeft(2).Render(err.Error())))
	mustN(fmt.Fprintln(w))

	hint := errorHint(err)
	if hint == "" {
		return
	}

	if hint == "--help" {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
	} else {
		mustN(fmt.Fprintln(w, styles.ErrorText.UnsetWidth().Render(hint)))
	}

	mustN(fmt.Fprintln(w))
}

func errorHint(err error) string {
	switch {
	case isUsageError(err), errors.Is(err, errNoScores), errors.Is(err, errUnknownOutput):
		return "--help"
	case errors.Is(err, table.ErrInvalidColumnRange), errors.Is(err, table.ErrUnknownColumn):
		return "Run `standing classify` to list the columns."
	case errors.Is(err, weight.ErrUndefinedAverage):
		return "Include at least one exercise, exam or final column."
	}

	return ""
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
