package ports

import "context"

// ReleaseFetcher supplies provider release artifacts. Implementations
// own all network access; the resolution pipeline itself never touches
// the network.
type ReleaseFetcher interface {
	// LatestVersion reports the upstream release name, e.g. "v2.6.1".
	LatestVersion(ctx context.Context) (string, error)
	// Download fetches and extracts the release for the given tag
	// ("latest" allowed) and returns the extraction root directory.
	Download(ctx context.Context, tag string) (string, error)
}
