// Package render hands an evaluated rule set to a worksheet renderer.
//
// The core never writes spreadsheet files. A [Renderer] receives the table
// and the complete rule set in one call and owns everything after that.
// [Plan] evaluates a set into a styled grid, so renderers apply every rule as
// a single logical write.
package render

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/standing/pkg/rule"
	"github.com/macropower/standing/pkg/style"
	"github.com/macropower/standing/pkg/table"
)

var tracer = otel.Tracer("render")

// Sheet is the destination of a rendered worksheet.
type Sheet struct {
	// W receives the rendered output.
	W io.Writer
	// Name is the worksheet title.
	Name string
}

// Renderer translates a rule set into formatting on a worksheet.
type Renderer interface {
	RenderWorksheet(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) error
}

// RendererFunc adapts a function to the [Renderer] interface.
type RendererFunc func(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) error

// RenderWorksheet calls f.
func (f RendererFunc) RenderWorksheet(ctx context.Context, sheet Sheet, t *table.Table, set *rule.Set) error {
	return f(ctx, sheet, t, set)
}

// Plan evaluates set against t and returns the resulting style of every
// cell, identifier column included.
func Plan(ctx context.Context, t *table.Table, set *rule.Set) (*style.Grid, error) {
	ctx, span := tracer.Start(ctx, "plan", trace.WithAttributes(
		attribute.Int("rules", set.Len()),
	))
	defer span.End()

	grid := style.NewGrid(rule.ScopeTable.Shape(t))

	err := set.Apply(ctx, t, grid)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	return grid, nil
}
