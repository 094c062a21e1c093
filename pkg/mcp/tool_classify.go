package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/standing/pkg/table"
)

// ClassifyParams defines parameters for the classify_columns tool.
type ClassifyParams struct {
	Path string `json:"path"`
}

// ClassifyResult contains the columns of a scores table.
type ClassifyResult struct {
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message"`
	Columns []table.Column `json:"columns"`
}

// Classify loads the table at params.Path and lists its score columns.
func (s *Server) Classify(ctx context.Context, params ClassifyParams) ClassifyResult {
	result := ClassifyResult{Columns: []table.Column{}}

	_, t, _, err := s.load(ctx, params.Path, "")
	if err != nil {
		result.Error = err.Error()
		result.Message = fmt.Sprintf("INVALID INPUT ERROR: %v", err)

		return result
	}

	result.Columns = t.Columns()

	counts, err := t.Counts(len(result.Columns))
	if err != nil {
		result.Error = err.Error()

		return result
	}

	result.Message = fmt.Sprintf("Found %d score columns (%s).", len(result.Columns), counts)

	return result
}

func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ClassifyParams],
) (*mcp.CallToolResultFor[ClassifyResult], error) {
	result := s.Classify(ctx, params.Arguments)

	return &mcp.CallToolResultFor[ClassifyResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Message},
		},
		StructuredContent: result,
		IsError:           result.Error != "",
	}, nil
}
