package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/adapters"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/core"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/ports"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// Config carries the runtime settings resolved by the CLI layer.
type Config struct {
	DataDir          string
	GitHubToken      string
	TerraformBinary  string
	TFLintBinary     string
	ConftestBinary   string
	AztfexportBinary string
	PolicyDir        string
}

// Service owns the schema generator and the CLI tool collaborators; it
// is constructed once and passed explicitly, there is no hidden global
// state.
type Service struct {
	Generator  *core.Generator
	Terraform  ports.TerraformPort
	TFLint     ports.TFLintPort
	Conftest   ports.ConftestPort
	Aztfexport ports.AztfexportPort
	Practices  adapters.BestPracticesAdapter
	PolicyDir  string
}

func NewService(cfg Config) (Service, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	fetcher := adapters.NewGitHubReleaseAdapter(
		"Azure", "terraform-provider-azapi", cfg.GitHubToken,
		filepath.Join(cfg.DataDir, "downloads"),
	)
	cache := adapters.NewSchemaCacheFileAdapter(cfg.DataDir)

	practices, err := adapters.NewBestPracticesAdapter()
	if err != nil {
		return Service{}, err
	}

	return Service{
		Generator:  core.NewGenerator(fetcher, cache),
		Terraform:  adapters.NewTerraformExecutor(cfg.TerraformBinary),
		TFLint:     adapters.NewTFLintRunner(cfg.TFLintBinary),
		Conftest:   adapters.NewConftestRunner(cfg.ConftestBinary),
		Aztfexport: adapters.NewAztfexportRunner(cfg.AztfexportBinary, filepath.Join(cfg.DataDir, "exports")),
		Practices:  practices,
		PolicyDir:  cfg.PolicyDir,
	}, nil
}

// InitSchemas warms the schema documentation map, regenerating when the
// upstream version moved or forceRegenerate is set.
func (s Service) InitSchemas(ctx context.Context, forceRegenerate bool) (map[string]string, error) {
	return s.Generator.LoadOrGenerate(ctx, forceRegenerate)
}

// SchemaDocumentation looks up the rendered documentation for one
// resource type: exact match first, then case-insensitive, else "".
func (s Service) SchemaDocumentation(resourceType string) string {
	return core.GetSchema(resourceType, s.Generator.Schemas())
}

// ParentType reports the parent resource type for an ARM type path.
func (s Service) ParentType(resourceType string) string {
	return core.GetParentType(resourceType)
}

// Installations reports the availability of every wrapped CLI tool.
func (s Service) Installations(ctx context.Context) []types.InstallationStatus {
	return []types.InstallationStatus{
		s.Terraform.CheckInstallation(ctx),
		s.TFLint.CheckInstallation(ctx),
		s.Conftest.CheckInstallation(ctx),
		s.Aztfexport.CheckInstallation(ctx),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".tf-mcp-server", "data")
}
