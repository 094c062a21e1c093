package yaml

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

const (
	DefaultFormatter = "terminal256"
	DefaultStyle     = "onedark"
)

// Highlight writes the YAML document src to w with syntax highlighting.
// Empty formatter or style names select [DefaultFormatter] and [DefaultStyle].
// Unknown names fall back to chroma's own defaults.
func Highlight(w io.Writer, src []byte, formatter, style string) error {
	if formatter == "" {
		formatter = DefaultFormatter
	}
	if style == "" {
		style = DefaultStyle
	}

	err := quick.Highlight(w, string(src), "yaml", formatter, style)
	if err != nil {
		return fmt.Errorf("highlight: %w", err)
	}

	return nil
}
