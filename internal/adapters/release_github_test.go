package adapters

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTarGz builds a GitHub-style tarball: every entry lives under one
// top-level directory.
func makeTarGz(t *testing.T, topLevel string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     topLevel + "/",
		Typeflag: tar.TypeDir,
		Mode:     0755,
	}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     topLevel + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// releaseServer fakes the two GitHub endpoints the adapter touches:
// release metadata and the tarball itself.
func releaseServer(t *testing.T, releaseName string, tarball []byte, hits *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/repos/Azure/terraform-provider-azapi/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": %q, "tarball_url": %q}`, releaseName, server.URL+"/tarball")
	})
	mux.HandleFunc("/repos/Azure/terraform-provider-azapi/releases/tags/"+releaseName, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": %q, "tarball_url": %q}`, releaseName, server.URL+"/tarball")
	})
	mux.HandleFunc("/tarball", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Write(tarball)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestAdapter(t *testing.T, serverURL string) GitHubReleaseAdapter {
	t.Helper()
	adapter := NewGitHubReleaseAdapter("Azure", "terraform-provider-azapi", "", t.TempDir())
	adapter.BaseURL = serverURL
	return adapter
}

func TestLatestVersion(t *testing.T) {
	server := releaseServer(t, "v2.6.1", nil, nil)
	adapter := newTestAdapter(t, server.URL)

	version, err := adapter.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2.6.1", version)
}

func TestLatestVersionUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	adapter := newTestAdapter(t, server.URL)

	_, err := adapter.LatestVersion(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDownloadExtractsAndStripsTopLevel(t *testing.T) {
	tarball := makeTarGz(t, "Azure-terraform-provider-azapi-abc123", map[string]string{
		"internal/azure/generated/foo/types.json": "[]",
		"README.md":                               "provider",
	})
	hits := 0
	server := releaseServer(t, "v2.6.1", tarball, &hits)
	adapter := newTestAdapter(t, server.URL)

	dir, err := adapter.Download(context.Background(), "v2.6.1")
	require.NoError(t, err)

	// top-level wrapper directory is flattened away
	data, err := os.ReadFile(filepath.Join(dir, "internal", "azure", "generated", "foo", "types.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// second download of the same release reuses the on-disk artifact
	again, err := adapter.Download(context.Background(), "v2.6.1")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.Equal(t, 1, hits)
}

func TestDownloadRejectsIncompleteMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "", "tarball_url": ""}`))
	}))
	t.Cleanup(server.Close)
	adapter := newTestAdapter(t, server.URL)

	_, err := adapter.Download(context.Background(), "v1.0.0")
	require.Error(t, err)
}

func TestReleaseRequestSendsToken(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		w.Write([]byte(`{"name": "v1.0.0", "tarball_url": "http://unused"}`))
	}))
	t.Cleanup(server.Close)

	adapter := newTestAdapter(t, server.URL)
	adapter.Token = "ghp_secret"

	_, err := adapter.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_secret", authorization)
}

func TestStripTopLevel(t *testing.T) {
	assert.Equal(t, "internal/types.json", stripTopLevel("owner-repo-sha/internal/types.json"))
	assert.Equal(t, "internal/types.json", stripTopLevel("./owner-repo-sha/internal/types.json"))
	assert.Equal(t, "", stripTopLevel("owner-repo-sha"))
}

func TestExtractTarGzPathTraversalIgnored(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "evil"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "top/../../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     int64(len(content)),
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	base := t.TempDir()
	tarballPath := filepath.Join(base, "evil.tar.gz")
	require.NoError(t, os.WriteFile(tarballPath, buf.Bytes(), 0644))

	destDir := filepath.Join(base, "extracted")
	require.NoError(t, extractTarGz(tarballPath, destDir))

	_, err = os.Stat(filepath.Join(base, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(filepath.Dir(base), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}
