// Package mcp serves gradebook tools over the Model Context Protocol.
//
// Every tool reads a scores CSV, by path relative to the server's root, and
// the gradebook that applies to it. Tools report problems with the scores or
// the gradebook in their result rather than as protocol errors, so a client
// can correct its input and retry.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/table"
)

const (
	name         = "standing"
	instructions = `MCP Server 'standing' reports how students stand in a gradebook: the category of each score column, each student's weighted running average, and the styling rules that flag students at risk.

When to use these tools:
- Finding which students are below the critical threshold, or in the warning band
- Checking how a column name is classified (exercise, exam, final, or other)
- Inspecting which cells a formatting rule selects

REQUIRED workflow:
1. Use 'classify_columns' first with the path of a scores CSV to see its columns
2. Use 'get_averages' with the same path, and optionally a column name from step 1 as 'upto'
3. Use 'get_plan' to see the styles applied to every cell
`
)

// Loader reads the scores table at path and the gradebook that applies to
// it.
type Loader interface {
	Load(ctx context.Context, path string) (*gradebooks.Gradebook, *table.Table, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, path string) (*gradebooks.Gradebook, *table.Table, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) (*gradebooks.Gradebook, *table.Table, error) {
	return f(ctx, path)
}

func pathProperty() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Path of the scores CSV, relative to the server root.",
	}
}

func uptoProperty() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Last column to include, by name or 1-based index. Defaults to the last column.",
	}
}
