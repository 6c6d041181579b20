package ports

// SchemaCache persists the synthesized documentation map across runs,
// stamped with the provider release version that produced it.
type SchemaCache interface {
	// LatestLocalVersion reports the newest cached version without the
	// leading "v", or ok=false when no cache artifact exists.
	LatestLocalVersion() (string, bool)
	// Load reads the documentation map persisted for a version
	// (given with its leading "v"). Corrupt artifacts return an error;
	// callers treat it as a cache miss.
	Load(version string) (map[string]string, error)
	// Save persists the documentation map for a version.
	Save(version string, schemas map[string]string) error
}
