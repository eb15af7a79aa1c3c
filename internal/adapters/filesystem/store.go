package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drivebak/internal/application"
	"drivebak/internal/ports"
)

const dirPerm = 0o755

// Store implements ports.FileStore using the local filesystem
type Store struct{}

// Ensure Store implements FileStore
var _ ports.FileStore = (*Store)(nil)

// NewStore creates a new filesystem store
func NewStore() *Store {
	return &Store{}
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Stat returns file info, following symlinks
func (s *Store) Stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapPathError("stat", path, err)
	}
	return info, nil
}

// Exists reports whether path exists. Only "does not exist" is answered
// with false; any other stat failure is an error.
func (s *Store) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &application.IOError{Op: "stat", Path: path, Err: err}
	}
}

// Walk walks the tree rooted at root in lexical order. A root that is a
// symlink to a directory is walked through; fn still sees paths under root.
func (s *Store) Walk(root string, fn fs.WalkDirFunc) error {
	start := root
	if info, err := os.Stat(root); err == nil && info.IsDir() && !strings.HasSuffix(root, string(filepath.Separator)) {
		// a trailing separator makes the walk's Lstat resolve the link
		start = root + string(filepath.Separator)
	}

	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if path == start {
			path = root
		}
		return fn(path, d, err)
	})
}

// MkdirAll creates path and any missing parents
func (s *Store) MkdirAll(path string) error {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return &application.IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// CopyFile copies content, permission bits and modification time. The
// destination is created exclusively so an existing file is never replaced.
func (s *Store) CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, wrapPathError("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, &application.IOError{Op: "stat", Path: src, Err: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, &application.IOError{Op: "create", Path: dst, Err: err}
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, &application.IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return n, &application.IOError{Op: "close", Path: dst, Err: err}
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, &application.IOError{Op: "chmod", Path: dst, Err: err}
	}
	// Zero atime leaves the access time alone
	if err := os.Chtimes(dst, time.Time{}, info.ModTime()); err != nil {
		return n, &application.IOError{Op: "chtimes", Path: dst, Err: err}
	}

	return n, nil
}

func wrapPathError(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &application.NotFoundError{Path: path}
	}
	return &application.IOError{Op: op, Path: path, Err: err}
}
