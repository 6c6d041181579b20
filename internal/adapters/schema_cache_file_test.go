package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCacheRoundtrip(t *testing.T) {
	cache := NewSchemaCacheFileAdapter(t.TempDir())
	schemas := map[string]string{
		"Foo.Bar/widgets@2023-01-01": "# Resource Type: Foo.Bar/widgets@2023-01-01",
	}

	require.NoError(t, cache.Save("v2.6.1", schemas))

	loaded, err := cache.Load("v2.6.1")
	require.NoError(t, err)
	assert.Equal(t, schemas, loaded)

	// Load accepts the version with or without the leading v.
	loaded, err = cache.Load("2.6.1")
	require.NoError(t, err)
	assert.Equal(t, schemas, loaded)
}

func TestLatestLocalVersionSortsSemantically(t *testing.T) {
	dir := t.TempDir()
	cache := NewSchemaCacheFileAdapter(dir)

	for _, version := range []string{"v2.9.0", "v2.10.0", "v2.1.0"} {
		require.NoError(t, cache.Save(version, map[string]string{}))
	}
	// Noise that must not be picked up.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "azapi_schemas_vlatest.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	version, ok := cache.LatestLocalVersion()
	require.True(t, ok)
	assert.Equal(t, "2.10.0", version)
}

func TestLatestLocalVersionEmpty(t *testing.T) {
	cache := NewSchemaCacheFileAdapter(t.TempDir())
	_, ok := cache.LatestLocalVersion()
	assert.False(t, ok)

	cache = NewSchemaCacheFileAdapter(filepath.Join(t.TempDir(), "missing"))
	_, ok = cache.LatestLocalVersion()
	assert.False(t, ok)
}

func TestLoadCorruptCacheFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewSchemaCacheFileAdapter(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "azapi_schemas_v2.6.1.json"), []byte("{bad"), 0644))

	_, err := cache.Load("v2.6.1")
	require.Error(t, err)
}

func TestLoadMissingCacheFile(t *testing.T) {
	cache := NewSchemaCacheFileAdapter(t.TempDir())
	_, err := cache.Load("v9.9.9")
	require.Error(t, err)
}

func TestSaveWithoutDirectory(t *testing.T) {
	cache := NewSchemaCacheFileAdapter("")
	assert.Error(t, cache.Save("v1.0.0", map[string]string{}))
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cache := NewSchemaCacheFileAdapter(dir)
	require.NoError(t, cache.Save("v1.0.0", map[string]string{"a": "b"}))

	_, err := os.Stat(filepath.Join(dir, "azapi_schemas_v1.0.0.json"))
	assert.NoError(t, err)
}
