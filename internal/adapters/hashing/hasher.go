package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"drivebak/internal/application"
	"drivebak/internal/ports"
)

// DefaultAlgorithm is used when none is configured
const DefaultAlgorithm = "sha256"

// ChunkSize is the read size used when streaming a file through the digest
const ChunkSize = 4096

var algorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// Algorithms returns the supported digest names, sorted
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Hasher implements ports.Hasher
type Hasher struct {
	algorithm string
	newHash   func() hash.Hash
}

// Ensure Hasher implements ports.Hasher
var _ ports.Hasher = (*Hasher)(nil)

// New creates a Hasher for the named algorithm. An empty name selects
// DefaultAlgorithm.
func New(algorithm string) (*Hasher, error) {
	name := strings.ToLower(strings.TrimSpace(algorithm))
	if name == "" {
		name = DefaultAlgorithm
	}

	newHash, ok := algorithms[name]
	if !ok {
		return nil, &application.ConfigError{
			Key:     "algorithm",
			Message: fmt.Sprintf("unsupported hash algorithm %q (supported: %s)", algorithm, strings.Join(Algorithms(), ", ")),
		}
	}

	return &Hasher{algorithm: name, newHash: newHash}, nil
}

// Algorithm returns the digest name
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash streams the file in ChunkSize reads and returns the lowercase hex digest
func (h *Hasher) Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &application.NotFoundError{Path: path}
		}
		return "", &application.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	digest := h.newHash()
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &application.IOError{Op: "read", Path: path, Err: err}
		}
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// FilesEqual compares the digests of two files. Missing files, and paths
// that are not regular files, are reported as not equal without hashing.
func (h *Hasher) FilesEqual(pathA, pathB string) (bool, error) {
	for _, p := range []string{pathA, pathB} {
		ok, err := isRegular(p)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	hashA, err := h.Hash(pathA)
	if err != nil {
		return false, notFoundAsUnequal(err)
	}
	hashB, err := h.Hash(pathB)
	if err != nil {
		return false, notFoundAsUnequal(err)
	}

	return hashA == hashB, nil
}

func isRegular(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &application.IOError{Op: "stat", Path: path, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

// A file removed between stat and open is still just "not equal"
func notFoundAsUnequal(err error) error {
	if errors.Is(err, application.ErrNotFound) {
		return nil
	}
	return err
}
