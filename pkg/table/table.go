// Package table holds the in-memory gradebook: one row per student, the
// student identifier in column 0 and score columns 1..N.
//
// A [Table] classifies its score columns once, on construction, and keeps the
// resulting [category.Schema] for every later computation.
package table

import (
	"fmt"
	"math"

	"github.com/macropower/standing/pkg/category"
)

// Score is a single score cell. The zero value is a missing score.
type Score struct {
	Value   float64
	Present bool
}

// Value returns a present score.
func Value(v float64) Score {
	return Score{Value: v, Present: true}
}

// Missing returns an absent score.
func Missing() Score {
	return Score{}
}

// Float returns the numeric value, or false if the score is absent or not a
// finite number.
func (s Score) Float() (float64, bool) {
	if !s.Present || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return 0, false
	}

	return s.Value, true
}

func (s Score) String() string {
	v, ok := s.Float()
	if !ok {
		return ""
	}

	return fmt.Sprintf("%g", v)
}

// Column describes a score column.
type Column struct {
	Name     string            `json:"name"     yaml:"name"`
	Category category.Category `json:"category" yaml:"category"`
	Index    int               `json:"index"    yaml:"index"` // Position in the table; column 0 is the identifier.
}

// Row is one student's record.
type Row struct {
	Student string
	Scores  []Score // One per score column.
}

// Table is an immutable gradebook.
type Table struct {
	students map[string]int
	idName   string
	columns  []Column
	rows     []Row
	schema   category.Schema
}

// New creates a [Table]. The header holds the identifier column name followed
// by the score column names. Rows are copied.
func New(header []string, rows []Row) (*Table, error) {
	if len(header) < 2 {
		return nil, ErrNoColumns
	}

	names := header[1:]
	schema := category.NewSchema(names)

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Index: i + 1, Category: schema[i]}
	}

	t := &Table{
		idName:   header[0],
		columns:  columns,
		schema:   schema,
		rows:     make([]Row, 0, len(rows)),
		students: make(map[string]int, len(rows)),
	}

	for i, r := range rows {
		if r.Student == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyStudent)
		}
		if _, ok := t.students[r.Student]; ok {
			return nil, fmt.Errorf("row %d: %w: %q", i, ErrDuplicateStudent, r.Student)
		}
		if len(r.Scores) != len(columns) {
			return nil, fmt.Errorf("row %d (%s): %w: got %d scores, want %d",
				i, r.Student, ErrRowWidth, len(r.Scores), len(columns))
		}

		t.students[r.Student] = i
		t.rows = append(t.rows, Row{
			Student: r.Student,
			Scores:  append([]Score(nil), r.Scores...),
		})
	}

	return t, nil
}

// IdentifierName returns the name of column 0.
func (t *Table) IdentifierName() string {
	return t.idName
}

// NumColumns returns the total column count, including the identifier.
func (t *Table) NumColumns() int {
	return len(t.columns) + 1
}

// NumRows returns the number of students.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Columns returns the score columns, in order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Column returns the score column at table index idx (1-based, as the
// identifier is column 0).
func (t *Table) Column(idx int) (Column, bool) {
	if idx < 1 || idx > len(t.columns) {
		return Column{}, false
	}

	return t.columns[idx-1], true
}

// ColumnIndex returns the table index of the named score column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c.Index, true
		}
	}

	return 0, false
}

// Schema returns the cached column classification.
func (t *Table) Schema() category.Schema {
	return append(category.Schema(nil), t.schema...)
}

// Students returns the student identifiers in row order.
func (t *Table) Students() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Student
	}

	return out
}

// Row returns the row for a student.
func (t *Table) Row(student string) (Row, bool) {
	i, ok := t.students[student]
	if !ok {
		return Row{}, false
	}

	return t.rows[i], true
}

// Score returns the cell at (row, col), where col is a table index >= 1.
func (t *Table) Score(row, col int) Score {
	return t.rows[row].Scores[col-1]
}

// Float returns the numeric value at (row, col), or a [*MissingValueError].
func (t *Table) Float(row, col int) (float64, error) {
	v, ok := t.Score(row, col).Float()
	if !ok {
		return 0, &MissingValueError{
			Student: t.rows[row].Student,
			Column:  t.columns[col-1].Name,
			Row:     row,
			Col:     col,
		}
	}

	return v, nil
}

// Scores returns a copy of the score matrix (rows × score columns).
func (t *Table) Scores() [][]Score {
	out := make([][]Score, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]Score(nil), r.Scores...)
	}

	return out
}

// CheckUpto validates a column prefix index. upto is the table index of the
// last included column, so the valid range is [1, NumColumns()-1]; in 1-based
// column positions that is [2, NumColumns()].
func (t *Table) CheckUpto(upto int) error {
	if upto < 1 || upto > len(t.columns) {
		return &InvalidColumnRangeError{Upto: upto, Min: 1, Max: len(t.columns)}
	}

	return nil
}

// Prefix returns a table holding the identifier and score columns 1..upto,
// i.e. the gradebook as it stood when column upto was graded.
func (t *Table) Prefix(upto int) (*Table, error) {
	err := t.CheckUpto(upto)
	if err != nil {
		return nil, err
	}

	header := make([]string, 0, upto+1)
	header = append(header, t.idName)

	for _, c := range t.columns[:upto] {
		header = append(header, c.Name)
	}

	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = Row{Student: r.Student, Scores: r.Scores[:upto]}
	}

	return New(header, rows)
}

// Counts tallies the categories of columns 1..upto.
func (t *Table) Counts(upto int) (category.Counts, error) {
	err := t.CheckUpto(upto)
	if err != nil {
		return category.Counts{}, err
	}

	return t.schema.Counts(upto), nil
}

// Warning describes a score the core accepts but a caller should flag.
type Warning struct {
	Student string
	Column  string
	Value   float64
}

func (w Warning) String() string {
	return fmt.Sprintf("student %q, column %q: score %g is outside [0, 100]", w.Student, w.Column, w.Value)
}

// Warnings lists present scores outside [0, 100]. They are not clamped.
func (t *Table) Warnings() []Warning {
	var out []Warning

	for _, r := range t.rows {
		for j, s := range r.Scores {
			v, ok := s.Float()
			if ok && (v < 0 || v > 100) {
				out = append(out, Warning{Student: r.Student, Column: t.columns[j].Name, Value: v})
			}
		}
	}

	return out
}
