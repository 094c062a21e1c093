package render

import (
	"context"
	"fmt"

	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/yaml"
)

// PlanDocument is the serialized form of an evaluated rule set, for renderers
// running in another process.
type PlanDocument struct {
	Sheet   string         `json:"sheet,omitempty"`
	Columns []table.Column `json:"columns"`
	Rules   []RuleSummary  `json:"rules"`
	Cells   []CellStyle    `json:"cells"`
}

// RuleSummary describes one rule of the plan.
type RuleSummary struct {
	Name  string      `json:"name"`
	Scope rule.Scope  `json:"scope"`
	Style style.Style `json:"style"`
	Cells int         `json:"cells"`
}

// CellStyle is the final style of one styled cell.
type CellStyle struct {
	Student string         `json:"student"`
	Column  string         `json:"column"`
	Style   style.Resolved `json:"style"`
	Row     int            `json:"row"`
	Col     int            `json:"col"`
}

// Document writes the evaluated plan as YAML. Unstyled cells are omitted.
type Document struct{}

// NewDocument creates a [Document] renderer.
func NewDocument() *Document {
	return &Document{}
}

// Build evaluates set against t.
func (*Document) Build(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) (*PlanDocument, error) {
	ctx, span := tracer.Start(ctx, "document")
	defer span.End()

	evals, err := set.Evaluate(ctx, t)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	grid := style.NewGrid(rule.ScopeTable.Shape(t))

	err = rule.Overlay(ctx, evals, grid)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	doc := &PlanDocument{
		Sheet:   sheet.Name,
		Columns: t.Columns(),
		Rules:   make([]RuleSummary, 0, len(evals)),
		Cells:   []CellStyle{},
	}

	for _, e := range evals {
		doc.Rules = append(doc.Rules, RuleSummary{
			Name:  e.Rule.Name,
			Scope: e.Rule.Scope,
			Style: e.Rule.Style,
			Cells: e.Mask.Count(),
		})
	}

	students := t.Students()

	for i := range grid.Shape().Rows {
		for j := range grid.Shape().Cols {
			s := grid.At(i, j)
			if s.IsZero() {
				continue
			}

			name := t.IdentifierName()
			if c, ok := t.Column(j); ok {
				name = c.Name
			}

			doc.Cells = append(doc.Cells, CellStyle{
				Student: students[i],
				Column:  name,
				Row:     i,
				Col:     j,
				Style:   s.Resolve(),
			})
		}
	}

	return doc, nil
}

// RenderWorksheet writes the plan to sheet.W.
func (d *Document) RenderWorksheet(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) error {
	doc, err := d.Build(ctx, sheet, t, set)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(sheet.W)

	err = enc.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	return nil
}
