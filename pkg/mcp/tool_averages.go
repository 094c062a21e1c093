package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/standing/pkg/summary"
	"github.com/macropower/standing/pkg/threshold"
)

// AveragesParams defines parameters for the get_averages tool.
type AveragesParams struct {
	Path string `json:"path"`
	Upto string `json:"upto,omitempty"`
}

// AveragesResult contains every student's running average.
type AveragesResult struct {
	Averages *summary.Averages `json:"averages,omitempty"`
	Error    string            `json:"error,omitempty"`
	Message  string            `json:"message"`
}

// Averages computes the running averages of the table at params.Path.
func (s *Server) Averages(ctx context.Context, params AveragesParams) AveragesResult {
	var result AveragesResult

	avgs, err := s.averages(ctx, params)
	if err != nil {
		result.Error = err.Error()
		result.Message = fmt.Sprintf("INVALID INPUT ERROR: %v", err)

		return result
	}

	result.Averages = avgs
	result.Message = fmt.Sprintf("Averages through %s for %d students: %d critical, %d warning, %d safe.",
		avgs.Column.Name,
		len(avgs.Students),
		len(avgs.Band(threshold.Critical)),
		len(avgs.Band(threshold.Warning)),
		len(avgs.Band(threshold.Safe)),
	)

	return result
}

func (s *Server) averages(ctx context.Context, params AveragesParams) (*summary.Averages, error) {
	g, t, upto, err := s.load(ctx, params.Path, params.Upto)
	if err != nil {
		return nil, err
	}

	calc, err := g.Calculator()
	if err != nil {
		return nil, err
	}

	return summary.Compute(calc, g.Thresholds, t, upto)
}

func (s *Server) handleAverages(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[AveragesParams],
) (*mcp.CallToolResultFor[AveragesResult], error) {
	result := s.Averages(ctx, params.Arguments)

	return &mcp.CallToolResultFor[AveragesResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Message},
		},
		StructuredContent: result,
		IsError:           result.Error != "",
	}, nil
}
