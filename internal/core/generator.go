package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/ports"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// typesSubdir is where the provider release keeps its bicep types files.
const typesSubdir = "internal/azure/generated"

// Decide applies the cache-versioning policy. Regenerate when forced,
// when no local version exists, or when local and upstream (each with a
// leading "v" stripped) differ as plain strings.
func Decide(record types.VersionRecord, forceRegenerate bool) types.CacheDecision {
	if forceRegenerate || record.LocalVersion == "" {
		return types.DecisionRegenerate
	}
	local := strings.TrimPrefix(record.LocalVersion, "v")
	upstream := strings.TrimPrefix(record.UpstreamVersion, "v")
	if local != upstream {
		return types.DecisionRegenerate
	}
	return types.DecisionUseCached
}

// Generator owns the schema-documentation pipeline: it decides between
// cache reuse and regeneration, runs the full resolution pass when
// regenerating, and keeps the resulting map in memory. One mutex
// serializes LoadOrGenerate so concurrent callers cannot duplicate work
// or interleave writes to the same cache file.
type Generator struct {
	mu      sync.Mutex
	fetcher ports.ReleaseFetcher
	cache   ports.SchemaCache

	schemas map[string]string
	version string
}

func NewGenerator(fetcher ports.ReleaseFetcher, cache ports.SchemaCache) *Generator {
	return &Generator{fetcher: fetcher, cache: cache}
}

// Version reports the release version backing the in-memory map.
func (g *Generator) Version() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Schemas returns the current in-memory documentation map, which may be
// empty before the first LoadOrGenerate.
func (g *Generator) Schemas() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schemas
}

// LoadOrGenerate returns the best documentation map it can produce.
// When upstream is unreachable it prefers any local cache over failing;
// a corrupt cache artifact is treated as a miss and regenerated.
func (g *Generator) LoadOrGenerate(ctx context.Context, forceRegenerate bool) (map[string]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	localVersion, hasLocal := g.cache.LatestLocalVersion()

	upstream, err := g.fetcher.LatestVersion(ctx)
	if err != nil {
		if !hasLocal {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("upstream release metadata unavailable and no local schema cache exists").
				WithCause(err)
		}
		log.Ctx(ctx).Warn().Err(err).Str("local_version", localVersion).
			Msg("upstream unavailable, serving local schema cache")
		return g.loadCached(ctx, localVersion)
	}

	record := types.VersionRecord{UpstreamVersion: upstream}
	if hasLocal {
		record.LocalVersion = localVersion
	}

	if Decide(record, forceRegenerate) == types.DecisionUseCached {
		schemas, err := g.loadCached(ctx, localVersion)
		if err == nil {
			return schemas, nil
		}
		log.Ctx(ctx).Warn().Err(err).Str("version", localVersion).
			Msg("cached schemas unreadable, regenerating")
	}

	return g.generate(ctx, upstream)
}

func (g *Generator) loadCached(ctx context.Context, localVersion string) (map[string]string, error) {
	schemas, err := g.cache.Load("v" + localVersion)
	if err != nil {
		return nil, err
	}
	g.schemas = schemas
	g.version = "v" + localVersion
	log.Ctx(ctx).Info().Int("schemas", len(schemas)).Str("version", g.version).
		Msg("loaded schema documentation from cache")
	return schemas, nil
}

// generate runs the full pipeline for one release: download, load each
// types file, select version winners, synthesize and render each, then
// persist the map. Partial failures reduce coverage, never abort.
func (g *Generator) generate(ctx context.Context, version string) (map[string]string, error) {
	dir, err := g.fetcher.Download(ctx, version)
	if err != nil {
		return nil, err
	}

	typesDir := filepath.Join(dir, filepath.FromSlash(typesSubdir))
	if _, err := os.Stat(typesDir); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bicep types directory not found in release archive").
			WithCause(err)
	}

	schemas := map[string]string{}
	walkErr := filepath.WalkDir(typesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		g.processFile(ctx, path, schemas)
		return nil
	})
	if walkErr != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to walk bicep types directory").
			WithCause(walkErr)
	}

	if err := g.cache.Save(version, schemas); err != nil {
		return nil, err
	}

	g.schemas = schemas
	g.version = version
	log.Ctx(ctx).Info().Int("schemas", len(schemas)).Str("version", version).
		Msg("generated schema documentation")
	return schemas, nil
}

// processFile resolves one types file. The store is discarded once its
// resource types are synthesized. A file that fails to load, or a
// resource type that fails to synthesize, is logged and skipped.
func (g *Generator) processFile(ctx context.Context, path string, schemas map[string]string) {
	store, err := LoadStore(path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("file", path).Msg("skipping unreadable types file")
		return
	}

	synthesizer := NewSynthesizer(store)
	for _, winner := range SelectLatest(store.ResourceTypes()) {
		schema, err := synthesizer.Synthesize(ctx, winner)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("resource_type", winner.Node.Name).
				Msg("skipping resource type")
			continue
		}
		schemas[schema.ResourceType()] = synthesizer.Render(schema)
	}
}

// GetSchema looks up one documentation text: exact match first, then
// case-insensitive, else empty string.
func GetSchema(resourceType string, schemas map[string]string) string {
	if doc, ok := schemas[resourceType]; ok {
		return doc
	}
	lower := strings.ToLower(resourceType)
	for key, doc := range schemas {
		if strings.ToLower(key) == lower {
			return doc
		}
	}
	return ""
}

// GetParentType applies the path-segmentation heuristic independent of
// any schema lookup: the path with its last segment dropped for nested
// types, the resource group type otherwise.
func GetParentType(resourceType string) string {
	parts := strings.Split(resourceType, "/")
	if len(parts) > 2 {
		return strings.Join(parts[:len(parts)-1], "/")
	}
	return "Microsoft.Resources/resourceGroups"
}
