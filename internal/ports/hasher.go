package ports

// Hasher computes content digests with one algorithm fixed at construction
type Hasher interface {
	// Algorithm returns the digest name (e.g. "sha256")
	Algorithm() string

	// Hash streams the file through the digest and returns lowercase hex
	Hash(path string) (string, error)

	// FilesEqual reports whether both files exist and have the same digest.
	// A missing file is never equal and is not an error.
	FilesEqual(pathA, pathB string) (bool, error)
}
