package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrUnknownColumn is returned by [Table.Lookup] for a name that matches no
// score column.
var ErrUnknownColumn = errors.New("unknown column")

// Lookup resolves a column reference to its table index. s may be a table
// index, an exact column name, or a column name in any case. An empty s
// selects the last column. Unknown names are answered with up to three of
// the closest column names.
func (t *Table) Lookup(s string) (int, error) {
	if s == "" {
		return len(t.columns), nil
	}

	n, err := strconv.Atoi(s)
	if err == nil {
		return n, t.CheckUpto(n)
	}

	idx, ok := t.ColumnIndex(s)
	if ok {
		return idx, nil
	}

	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if strings.EqualFold(c.Name, s) {
			return c.Index, nil
		}

		names = append(names, c.Name)
	}

	var suggestions []string
	for _, m := range fuzzy.Find(s, names) {
		suggestions = append(suggestions, strconv.Quote(m.Str))
	}

	if len(suggestions) == 0 {
		return 0, fmt.Errorf("%w %q", ErrUnknownColumn, s)
	}

	return 0, fmt.Errorf("%w %q, did you mean %s?", ErrUnknownColumn, s,
		strings.Join(suggestions[:min(3, len(suggestions))], " or "))
}
