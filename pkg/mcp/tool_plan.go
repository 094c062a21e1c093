package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/standing/pkg/render"
)

// PlanParams defines parameters for the get_plan tool.
type PlanParams struct {
	Path string `json:"path"`
	Upto string `json:"upto,omitempty"`
}

// PlanResult contains the evaluated rule plan.
type PlanResult struct {
	Plan    *render.PlanDocument `json:"plan,omitempty"`
	Error   string               `json:"error,omitempty"`
	Message string               `json:"message"`
}

// Plan evaluates the gradebook's rules against the table at params.Path.
func (s *Server) Plan(ctx context.Context, params PlanParams) PlanResult {
	var result PlanResult

	doc, err := s.plan(ctx, params)
	if err != nil {
		result.Error = err.Error()
		result.Message = fmt.Sprintf("INVALID INPUT ERROR: %v", err)

		return result
	}

	result.Plan = doc
	result.Message = fmt.Sprintf("Evaluated %d rules; %d cells are styled.", len(doc.Rules), len(doc.Cells))

	return result
}

func (s *Server) plan(ctx context.Context, params PlanParams) (*render.PlanDocument, error) {
	g, t, upto, err := s.load(ctx, params.Path, params.Upto)
	if err != nil {
		return nil, err
	}

	t, err = t.Prefix(upto)
	if err != nil {
		return nil, err
	}

	set, err := g.RuleSet()
	if err != nil {
		return nil, err
	}

	return render.NewDocument().Build(ctx, render.Sheet{}, t, set)
}

func (s *Server) handlePlan(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[PlanParams],
) (*mcp.CallToolResultFor[PlanResult], error) {
	result := s.Plan(ctx, params.Arguments)

	return &mcp.CallToolResultFor[PlanResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Message},
		},
		StructuredContent: result,
		IsError:           result.Error != "",
	}, nil
}
