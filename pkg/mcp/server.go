package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/table"
	"github.com/macropower/standing/pkg/version"
)

const shutdownTimeout = 5 * time.Second

// ErrOutsideRoot is returned for a path that resolves outside the server root.
var ErrOutsideRoot = errors.New("path is outside the server root")

var tracer = otel.Tracer("mcp")

// Server is the MCP server for standing.
type Server struct {
	loader  Loader
	server  *mcp.Server
	address string
	root    string
}

// NewServer creates a server that reads scores relative to root. An empty
// address serves over stdio.
func NewServer(address, root string, loader Loader) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		root:    root,
		loader:  loader,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_columns",
		Description: "List the score columns of a scores CSV with the category each one is weighted as. You MUST specify a path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathProperty(),
			},
			Required: []string{"path"},
		},
	}, WithTracing(tracer, s.handleClassify))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_averages",
		Description: "Get each student's weighted running average and threshold band, lowest first. You MUST specify a path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathProperty(),
				"upto": uptoProperty(),
			},
			Required: []string{"path"},
		},
	}, WithTracing(tracer, s.handleAverages))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_plan",
		Description: "Evaluate the gradebook's formatting rules and get the style of every styled cell. You MUST specify a path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathProperty(),
				"upto": uptoProperty(),
			},
			Required: []string{"path"},
		},
	}, WithTracing(tracer, s.handlePlan))
}

// load resolves path against the root and loads it. An upto reference is
// resolved and the table cut down to it.
func (s *Server) load(ctx context.Context, path, upto string) (*gradebooks.Gradebook, *table.Table, int, error) {
	switch path {
	case "":
		return nil, nil, 0, errors.New("path is required")
	case "-":
		return nil, nil, 0, errors.New("path must name a file")
	}

	path, err := s.resolve(path)
	if err != nil {
		return nil, nil, 0, err
	}

	g, t, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, nil, 0, err
	}

	idx, err := t.Lookup(upto)
	if err != nil {
		return nil, nil, 0, err
	}

	return g, t, idx, nil
}

// resolve joins a relative path onto the root. Absolute paths are kept. Either
// way the result must stay under the root.
func (s *Server) resolve(path string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	return path, nil
}

// Server returns the underlying MCP server, for use with a custom transport.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve runs the server until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server",
		slog.String("address", s.address),
		slog.String("root", s.root),
	)

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("shutdown MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
