package adapters

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// GitHubReleaseAdapter downloads and extracts provider release tarballs
// from the GitHub releases API. Downloads and extractions are keyed by
// release name and skipped when already present, so repeated
// regenerations of the same version reuse the on-disk artifact.
type GitHubReleaseAdapter struct {
	Owner       string
	Repo        string
	Token       string
	DownloadDir string
	BaseURL     string
	Client      *http.Client
}

type releaseInfo struct {
	Name       string `json:"name"`
	TarballURL string `json:"tarball_url"`
}

func NewGitHubReleaseAdapter(owner, repo, token, downloadDir string) GitHubReleaseAdapter {
	return GitHubReleaseAdapter{
		Owner:       owner,
		Repo:        repo,
		Token:       token,
		DownloadDir: downloadDir,
		BaseURL:     "https://api.github.com",
		Client:      &http.Client{Timeout: 60 * time.Second},
	}
}

// LatestVersion reports the name of the latest release, e.g. "v2.6.1".
func (a GitHubReleaseAdapter) LatestVersion(ctx context.Context) (string, error) {
	info, err := a.releaseMetadata(ctx, "latest")
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// Download fetches the release tarball for a tag and extracts it under
// the download directory, returning the extraction root.
func (a GitHubReleaseAdapter) Download(ctx context.Context, tag string) (string, error) {
	info, err := a.releaseMetadata(ctx, tag)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.DownloadDir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create download directory").
			WithCause(err)
	}

	tarballPath := filepath.Join(a.DownloadDir, info.Name+".tar.gz")
	if _, err := os.Stat(tarballPath); err != nil {
		log.Ctx(ctx).Info().Str("url", info.TarballURL).Str("release", info.Name).
			Msg("downloading release tarball")
		if err := a.fetchFile(ctx, info.TarballURL, tarballPath); err != nil {
			return "", err
		}
	}

	extractDir := filepath.Join(a.DownloadDir, "extracted_"+info.Name)
	if _, err := os.Stat(extractDir); err != nil {
		log.Ctx(ctx).Info().Str("tarball", tarballPath).Msg("extracting release tarball")
		if err := extractTarGz(tarballPath, extractDir); err != nil {
			return "", err
		}
	}
	return extractDir, nil
}

func (a GitHubReleaseAdapter) releaseMetadata(ctx context.Context, tag string) (releaseInfo, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/%s", a.BaseURL, a.Owner, a.Repo, tag)
	if tag != "latest" && !strings.HasPrefix(tag, "tags/") {
		url = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", a.BaseURL, a.Owner, a.Repo, tag)
	}

	body, err := a.get(ctx, url)
	if err != nil {
		return releaseInfo{}, err
	}
	defer body.Close()

	var info releaseInfo
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return releaseInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to decode release metadata").
			WithCause(err)
	}
	if info.Name == "" || info.TarballURL == "" {
		return releaseInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("release metadata is missing name or tarball url")
	}
	return info, nil
}

func (a GitHubReleaseAdapter) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build release request").
			WithCause(err)
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("upstream release request failed").
			WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("upstream returned status %d for %s", resp.StatusCode, url))
	}
	return resp.Body, nil
}

func (a GitHubReleaseAdapter) fetchFile(ctx context.Context, url, dest string) error {
	body, err := a.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create tarball file").
			WithCause(err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(tmp)
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("tarball download interrupted").
			WithCause(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// extractTarGz extracts the archive into destDir, flattening the
// tarball's single top-level directory (GitHub tarballs wrap everything
// in <owner>-<repo>-<sha>/).
func extractTarGz(tarballPath, destDir string) error {
	file, err := os.Open(tarballPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open tarball").
			WithCause(err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("tarball is not gzip data").
			WithCause(err)
	}
	defer gz.Close()

	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read tarball entry").
				WithCause(err)
		}

		relative := stripTopLevel(header.Name)
		if relative == "" {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(relative))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, reader); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

func stripTopLevel(name string) string {
	_, rest, found := strings.Cut(strings.TrimPrefix(name, "./"), "/")
	if !found {
		return ""
	}
	return rest
}
