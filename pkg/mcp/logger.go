package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/standing/pkg/log"
)

// TracedToolHandler is an MCP tool handler wrapped by [WithTracing].
type TracedToolHandler[In, Out any] func(
	context.Context,
	*mcp.ServerSession,
	*mcp.CallToolParamsFor[In],
) (*mcp.CallToolResultFor[Out], error)

// WithTracing starts a span for each tool call and logs its outcome with the
// span's trace id. Tool results flagged as errors are recorded on the span.
func WithTracing[In, Out any](
	tracer trace.Tracer,
	handler TracedToolHandler[In, Out],
) mcp.ToolHandlerFor[In, Out] {
	return func(
		ctx context.Context,
		session *mcp.ServerSession,
		params *mcp.CallToolParamsFor[In],
	) (*mcp.CallToolResultFor[Out], error) {
		name := params.Name

		ctx, span := tracer.Start(ctx, name)
		defer span.End()

		logger := log.WithContext(ctx)

		logger.DebugContext(ctx, "handling tool call",
			slog.String("name", name),
			slog.Any("progress_token", params.GetProgressToken()),
			slog.Any("args", params.Arguments),
		)

		result, err := handler(ctx, session, params)

		switch {
		case err != nil:
			logger.ErrorContext(ctx, "tool call failed",
				slog.String("name", name),
				slog.Any("error", err),
			)
			span.RecordError(err)

		case result != nil && result.IsError:
			logger.WarnContext(ctx, "tool call rejected input", slog.String("name", name))

		default:
			logger.DebugContext(ctx, "tool call completed")
		}

		return result, err
	}
}
