package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
	"github.com/macropower/standing/pkg/yaml"
)

func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the gradebook JSON schema",
		Example: `  # Point yaml-language-server at the schema:
  standing schema > gradebook.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := yaml.NewSchemaGenerator(&gradebooks.Gradebook{}, gradebooks.SchemaID).Generate()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(b)
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}
}
