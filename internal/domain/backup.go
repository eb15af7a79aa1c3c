package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// FileEntry is a single file discovered under the source root
type FileEntry struct {
	RelativePath string // path relative to the source root, OS separators
	SourcePath   string // absolute path of the source file
}

// BackupTarget is the destination root a source tree is mirrored into:
// driveRoot/[relativeSubpath/]basename(sourceRoot)
type BackupTarget struct {
	DriveRoot    string
	RelativePath string
	SourceRoot   string
	Root         string
}

// NewBackupTarget builds the destination root for sourceRoot on driveRoot.
// relativePath may be empty.
func NewBackupTarget(driveRoot, relativePath, sourceRoot string) (BackupTarget, error) {
	if strings.TrimSpace(driveRoot) == "" {
		return BackupTarget{}, errors.New("drive root is required")
	}
	if strings.TrimSpace(sourceRoot) == "" {
		return BackupTarget{}, errors.New("source root is required")
	}

	source := filepath.Clean(sourceRoot)
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) || filepath.VolumeName(source)+string(filepath.Separator) == source {
		return BackupTarget{}, fmt.Errorf("cannot back up a filesystem root: %s", sourceRoot)
	}

	root := driveRoot
	if relativePath != "" {
		root = filepath.Join(root, filepath.FromSlash(relativePath))
	}
	root = filepath.Join(root, base)

	return BackupTarget{
		DriveRoot:    driveRoot,
		RelativePath: relativePath,
		SourceRoot:   source,
		Root:         root,
	}, nil
}

// CandidatePath returns the path a file is written to when nothing occupies it
func (t BackupTarget) CandidatePath(relativePath string) string {
	if relativePath == "" {
		return t.Root
	}
	return filepath.Join(t.Root, relativePath)
}

// SplitExt splits a path into stem and extension. Leading dots of the
// base name belong to the stem, so ".bashrc" has no extension and
// "archive.tar.gz" splits into "archive.tar" and ".gz".
func SplitExt(path string) (stem, ext string) {
	dir, base := filepath.Split(path)

	trimmed := strings.TrimLeft(base, ".")
	idx := strings.LastIndex(trimmed, ".")
	if idx <= 0 {
		return path, ""
	}

	cut := len(base) - len(trimmed) + idx
	return dir + base[:cut], base[cut:]
}

// VersionedPath returns the n-th member of the version chain of candidate:
// name.ext -> name_v{n}.ext
func VersionedPath(candidate string, n int) string {
	stem, ext := SplitExt(candidate)
	return fmt.Sprintf("%s_v%d%s", stem, n, ext)
}

// Action is the outcome the engine chose for one file
type Action int

const (
	ActionSkipUnchanged Action = iota
	ActionSkipDuplicate
	ActionWrite
	ActionWriteVersion
)

func (a Action) String() string {
	switch a {
	case ActionSkipUnchanged:
		return "skip-unchanged"
	case ActionSkipDuplicate:
		return "skip-duplicate"
	case ActionWrite:
		return "write"
	case ActionWriteVersion:
		return "write-version"
	default:
		return "unknown"
	}
}

// ParseAction is the inverse of Action.String
func ParseAction(s string) (Action, error) {
	switch s {
	case "skip-unchanged":
		return ActionSkipUnchanged, nil
	case "skip-duplicate":
		return ActionSkipDuplicate, nil
	case "write":
		return ActionWrite, nil
	case "write-version":
		return ActionWriteVersion, nil
	default:
		return 0, fmt.Errorf("unknown action: %q", s)
	}
}

// Writes reports whether the action puts bytes on the destination
func (a Action) Writes() bool {
	return a == ActionWrite || a == ActionWriteVersion
}

// MarshalText lets decisions serialize with readable actions
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the textual form produced by MarshalText
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Decision records what happened (or, in a dry run, would happen) to one file
type Decision struct {
	RelativePath string `json:"relative_path"`
	SourcePath   string `json:"source"`
	Candidate    string `json:"candidate"`
	Target       string `json:"target"` // written path, or the matching copy for skips
	Action       Action `json:"action"`
	Version      int    `json:"version,omitempty"` // N of name_v{N}, 0 for the candidate itself
	CreatedDir   string `json:"created_dir,omitempty"`
	Bytes        int64  `json:"bytes"`
}

// RunStats aggregates decisions of one run
type RunStats struct {
	FilesScanned     int   `json:"files_scanned"`
	FilesWritten     int   `json:"files_written"`
	FilesVersioned   int   `json:"files_versioned"`
	SkippedUnchanged int   `json:"skipped_unchanged"`
	SkippedDuplicate int   `json:"skipped_duplicate"`
	DirsCreated      int   `json:"dirs_created"`
	BytesCopied      int64 `json:"bytes_copied"`
}

// Add folds a decision into the counters
func (s *RunStats) Add(d Decision) {
	s.FilesScanned++
	switch d.Action {
	case ActionSkipUnchanged:
		s.SkippedUnchanged++
	case ActionSkipDuplicate:
		s.SkippedDuplicate++
	case ActionWrite:
		s.FilesWritten++
	case ActionWriteVersion:
		s.FilesVersioned++
	}
	if d.CreatedDir != "" {
		s.DirsCreated++
	}
	s.BytesCopied += d.Bytes
}

// Writes is the number of files written, fresh or versioned
func (s RunStats) Writes() int {
	return s.FilesWritten + s.FilesVersioned
}

// RunSummary is what the user sees before a run starts
type RunSummary struct {
	Source      string
	Destination string
	Volume      Volume
	Algorithm   string
	Verbose     bool
	DryRun      bool
}
