package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/app"
)

func newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <resource-type>",
		Short: "Print the schema documentation for one ARM resource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0])
		},
	}
	return cmd
}

func runLookup(cmd *cobra.Command, resourceType string) error {
	service, err := app.NewService(serviceConfig())
	if err != nil {
		return err
	}
	if _, err := service.InitSchemas(cmd.Context(), false); err != nil {
		return err
	}
	doc := service.SchemaDocumentation(resourceType)
	if doc == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no schema found for resource type %q", resourceType))
	}
	fmt.Println(doc)
	return nil
}
