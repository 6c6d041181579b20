package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
)

const schemaFilePrefix = "azapi_schemas"

var schemaFilePattern = regexp.MustCompile(`^azapi_schemas_v(\d+\.\d+\.\d+)\.json$`)

// SchemaCacheFileAdapter persists the documentation map as a flat JSON
// object in a version-stamped file under the data directory, e.g.
// data/azapi_schemas_v2.6.1.json.
type SchemaCacheFileAdapter struct {
	Dir string
}

func NewSchemaCacheFileAdapter(dir string) SchemaCacheFileAdapter {
	return SchemaCacheFileAdapter{Dir: dir}
}

func (a SchemaCacheFileAdapter) schemaFile(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return filepath.Join(a.Dir, schemaFilePrefix+"_"+version+".json")
}

// LatestLocalVersion scans the data directory for version-stamped cache
// files and returns the newest version without its leading "v".
// Versions sort semantically here, not as strings: 2.10.0 must beat
// 2.9.0 when several artifacts linger.
func (a SchemaCacheFileAdapter) LatestLocalVersion() (string, bool) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return "", false
	}

	var versions []pep440.Version
	for _, entry := range entries {
		match := schemaFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		parsed, err := pep440.Parse(match[1])
		if err != nil {
			continue
		}
		versions = append(versions, parsed)
	}
	if len(versions) == 0 {
		return "", false
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].LessThan(versions[j])
	})
	return versions[len(versions)-1].String(), true
}

// Load reads one persisted documentation map. Read or parse failures
// surface as errors; the generator treats them as a cache miss.
func (a SchemaCacheFileAdapter) Load(version string) (map[string]string, error) {
	data, err := os.ReadFile(a.schemaFile(version))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("schema cache file not readable").
			WithCause(err)
	}
	var schemas map[string]string
	if err := json.Unmarshal(data, &schemas); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("schema cache file is corrupt").
			WithCause(err)
	}
	return schemas, nil
}

// Save persists the documentation map for a version.
func (a SchemaCacheFileAdapter) Save(version string, schemas map[string]string) error {
	if a.Dir == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("schema cache directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create schema cache directory").
			WithCause(err)
	}
	data, err := json.MarshalIndent(schemas, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode schema cache").
			WithCause(err)
	}
	return os.WriteFile(a.schemaFile(version), data, 0644)
}
