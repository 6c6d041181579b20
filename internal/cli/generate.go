package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/app"
)

type generateOptions struct {
	Force bool
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate or refresh the azapi schema documentation cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Regenerate even when the cached version matches upstream")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	service, err := app.NewService(serviceConfig())
	if err != nil {
		return err
	}
	schemas, err := service.InitSchemas(cmd.Context(), opts.Force)
	if err != nil {
		return err
	}
	fmt.Printf("%d schemas available (release %s)\n", len(schemas), service.Generator.Version())
	return nil
}
