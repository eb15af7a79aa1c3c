package ports

import (
	"io/fs"
)

// FileStore is the filesystem surface the sync engine works against
type FileStore interface {
	// Stat follows symlinks
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	Walk(root string, fn fs.WalkDirFunc) error
	MkdirAll(path string) error

	// CopyFile copies bytes, permissions and modification time from src to
	// dst. dst must not exist. Returns the number of bytes copied.
	CopyFile(src, dst string) (int64, error)
}
