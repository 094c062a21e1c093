package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/mcp"
	"github.com/macropower/standing/pkg/table"
)

type MCPArgs struct {
	*RootArgs
	InputArgs

	Address string
	Root    string
}

func NewMCPCmd(rootArgs *RootArgs) *cobra.Command {
	ma := &MCPArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve gradebook tools over the Model Context Protocol",
		Example: `  # Serve over stdio, reading scores below the current directory:
  standing mcp

  # Serve over streamable HTTP:
  standing mcp --address localhost:8080 --root ./course`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := mcp.NewServer(ma.Address, ma.Root, mcp.LoaderFunc(
				func(_ context.Context, path string) (*gradebooks.Gradebook, *table.Table, error) {
					return ma.load(cmd, path)
				},
			))

			return s.Serve(cmd.Context())
		},
	}

	ma.addConfigFlag(cmd)
	cmd.Flags().StringVar(&ma.Address, "address", "", "Serve streamable HTTP at this address instead of stdio")
	cmd.Flags().StringVar(&ma.Root, "root", ".", "Directory that tool paths are relative to")

	err := cmd.MarkFlagDirname("root")
	if err != nil {
		panic(fmt.Errorf("mark root flag: %w", err))
	}

	bindEnvVars(cmd)

	return cmd
}

// load reads the scores at path with the gradebook that applies to them.
// The --config flag, when set, applies to every path.
func (ma *MCPArgs) load(cmd *cobra.Command, path string) (*gradebooks.Gradebook, *table.Table, error) {
	ia := InputArgs{Path: path, ConfigPath: ma.ConfigPath}

	g, err := ia.Gradebook(cmd)
	if err != nil {
		return nil, nil, err
	}

	t, err := ia.ReadTable(cmd)
	if err != nil {
		return nil, nil, err
	}

	return g, t, nil
}
