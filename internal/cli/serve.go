package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/app"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/mcpserver"
)

type serveOptions struct {
	SkipSchemaInit bool
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.SkipSchemaInit, "skip-schema-init", false, "Do not warm the schema cache on startup")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	service, err := app.NewService(serviceConfig())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if !opts.SkipSchemaInit {
		// Schema warmup is best-effort: tools retry on demand, and an
		// offline start must still serve the CLI runners.
		if _, err := service.InitSchemas(ctx, false); err != nil {
			log.Ctx(ctx).Warn().Str("error", errorMessage(err)).
				Msg("schema warmup failed, documentation lookups will retry")
		}
	}

	log.Ctx(ctx).Info().Str("version", version).Msg("serving MCP over stdio")
	return mcpserver.ServeStdio(mcpserver.New(service, version))
}
