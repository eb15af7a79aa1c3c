// Package engine implements the incremental copy-with-dedup procedure:
// for every file under a source root it decides whether the destination
// already holds an identical copy, needs a fresh copy, or needs a new
// entry in the file's version chain.
package engine

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"drivebak/internal/application"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// Options control a single run
type Options struct {
	DryRun   bool
	Excludes []string // doublestar globs matched against slash-separated relative paths
}

// Report is the outcome of a run. It is returned even when the run fails,
// holding every decision made before the failure.
type Report struct {
	Target    domain.BackupTarget
	Decisions []domain.Decision
	Stats     domain.RunStats
	DryRun    bool
}

func (r *Report) add(d domain.Decision) {
	r.Decisions = append(r.Decisions, d)
	r.Stats.Add(d)
}

// Engine walks a source tree and applies skip/write/version decisions
type Engine struct {
	store    ports.FileStore
	hasher   ports.Hasher
	reporter ports.Reporter
	logger   *slog.Logger
}

// New creates an Engine. reporter may be nil.
func New(store ports.FileStore, hasher ports.Hasher, reporter ports.Reporter) *Engine {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Engine{
		store:    store,
		hasher:   hasher,
		reporter: reporter,
		logger:   slog.Default().With("component", "engine"),
	}
}

// run holds the per-invocation state
type run struct {
	*Engine
	target  domain.BackupTarget
	opts    Options
	report  *Report
	planned []string          // directories a dry run would have created
	written map[string]string // dry run: target -> source it would be copied from
}

// Run backs up target.SourceRoot into target.Root. Any error other than a
// missing comparison file aborts the run.
func (e *Engine) Run(ctx context.Context, target domain.BackupTarget, opts Options) (*Report, error) {
	report := &Report{Target: target, DryRun: opts.DryRun}

	if err := application.ValidateExcludes(opts.Excludes); err != nil {
		return report, err
	}

	info, err := e.store.Stat(target.SourceRoot)
	if err != nil {
		return report, err
	}

	r := &run{Engine: e, target: target, opts: opts, report: report, written: map[string]string{}}

	e.reporter.Event(domain.Event{Kind: domain.EventStart, Source: target.SourceRoot, Target: target.Root, DryRun: opts.DryRun})
	e.logger.Info("backup started", "source", target.SourceRoot, "destination", target.Root, "dry_run", opts.DryRun, "algorithm", e.hasher.Algorithm())

	if !info.IsDir() {
		err = r.backupFile(ctx, domain.FileEntry{SourcePath: target.SourceRoot})
	} else {
		err = e.store.Walk(target.SourceRoot, r.visit(ctx))
	}
	if err != nil {
		e.logger.Error("backup aborted", "error", err, "files_scanned", report.Stats.FilesScanned)
		return report, err
	}

	e.logger.Info("backup finished",
		"files_scanned", report.Stats.FilesScanned,
		"written", report.Stats.FilesWritten,
		"versioned", report.Stats.FilesVersioned,
		"unchanged", report.Stats.SkippedUnchanged,
		"duplicates", report.Stats.SkippedDuplicate,
	)
	return report, nil
}

func (r *run) visit(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && path == r.target.SourceRoot {
				return &application.NotFoundError{Path: path}
			}
			return &application.IOError{Op: "walk", Path: path, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(r.target.SourceRoot, path)
		if err != nil {
			return &application.IOError{Op: "rel", Path: path, Err: err}
		}
		if rel == "." {
			return nil
		}

		if r.excluded(rel) {
			r.logger.Debug("excluded", "path", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			info, err := r.store.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				r.logger.Warn("skipping non-regular file", "path", path)
				r.reporter.Event(domain.Event{Kind: domain.EventSkip, Source: path, DryRun: r.opts.DryRun})
				return nil
			}
		}

		return r.backupFile(ctx, domain.FileEntry{RelativePath: rel, SourcePath: path})
	}
}

func (r *run) excluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	for _, pattern := range r.opts.Excludes {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}

// backupFile decides and, unless dry-running, applies the outcome for one file
func (r *run) backupFile(ctx context.Context, entry domain.FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	decision, err := r.decide(entry)
	if err != nil {
		return err
	}

	if decision.Action.Writes() {
		r.reporter.Event(domain.Event{Kind: domain.EventWrite, Source: entry.SourcePath, Target: decision.Target, DryRun: r.opts.DryRun})
		if r.opts.DryRun {
			r.written[decision.Target] = entry.SourcePath
		} else {
			n, err := r.store.CopyFile(entry.SourcePath, decision.Target)
			if err != nil {
				return err
			}
			decision.Bytes = n
		}
	}

	r.logger.Debug("decision", "source", entry.SourcePath, "target", decision.Target, "action", decision.Action.String())
	r.report.add(decision)
	return nil
}

func (r *run) decide(entry domain.FileEntry) (domain.Decision, error) {
	candidate := r.target.CandidatePath(entry.RelativePath)
	decision := domain.Decision{
		RelativePath: entry.RelativePath,
		SourcePath:   entry.SourcePath,
		Candidate:    candidate,
	}

	r.reporter.Event(domain.Event{Kind: domain.EventCompare, Source: entry.SourcePath, Target: candidate, DryRun: r.opts.DryRun})

	occupied, err := r.exists(candidate)
	if err != nil {
		return decision, err
	}

	if occupied {
		equal, err := r.filesEqual(entry.SourcePath, candidate)
		if err != nil {
			return decision, err
		}
		if equal {
			decision.Action = domain.ActionSkipUnchanged
			decision.Target = candidate
			return decision, nil
		}
		return r.scanChain(entry, decision)
	}

	created, err := r.ensureParent(candidate)
	if err != nil {
		return decision, err
	}
	decision.CreatedDir = created
	decision.Action = domain.ActionWrite
	decision.Target = candidate
	return decision, nil
}

// scanChain walks name_v1, name_v2, ... until it finds a free slot or a
// copy identical to the source. There is no upper bound.
func (r *run) scanChain(entry domain.FileEntry, decision domain.Decision) (domain.Decision, error) {
	for n := 1; ; n++ {
		path := domain.VersionedPath(decision.Candidate, n)
		r.reporter.Event(domain.Event{Kind: domain.EventProbe, Source: entry.SourcePath, Target: path, DryRun: r.opts.DryRun})

		occupied, err := r.exists(path)
		if err != nil {
			return decision, err
		}
		if !occupied {
			decision.Action = domain.ActionWriteVersion
			decision.Target = path
			decision.Version = n
			return decision, nil
		}

		equal, err := r.filesEqual(entry.SourcePath, path)
		if err != nil {
			return decision, err
		}
		if equal {
			r.reporter.Event(domain.Event{Kind: domain.EventDuplicate, Source: entry.SourcePath, Target: path, DryRun: r.opts.DryRun})
			decision.Action = domain.ActionSkipDuplicate
			decision.Target = path
			decision.Version = n
			return decision, nil
		}
	}
}

// exists reports whether path is on the destination, counting files a dry
// run has already decided to write
func (r *run) exists(path string) (bool, error) {
	if _, ok := r.written[path]; ok {
		return true, nil
	}
	return r.store.Exists(path)
}

// filesEqual compares source with a destination path. A file a dry run
// would have written is compared through the source it would be copied from.
func (r *run) filesEqual(source, path string) (bool, error) {
	if from, ok := r.written[path]; ok {
		return r.hasher.FilesEqual(source, from)
	}
	return r.hasher.FilesEqual(source, path)
}

// ensureParent creates the candidate's parent directory when missing and
// returns it, or "" when it already existed. A dry run only remembers it.
func (r *run) ensureParent(candidate string) (string, error) {
	parent := filepath.Dir(candidate)

	if r.opts.DryRun && r.isPlanned(parent) {
		return "", nil
	}
	exists, err := r.store.Exists(parent)
	if err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}

	r.reporter.Event(domain.Event{Kind: domain.EventMkdir, Target: parent, DryRun: r.opts.DryRun})
	if r.opts.DryRun {
		r.planned = append(r.planned, parent)
		return parent, nil
	}
	if err := r.store.MkdirAll(parent); err != nil {
		return "", err
	}
	return parent, nil
}

// isPlanned reports whether dir is, or is an ancestor of, a directory the
// dry run already decided to create
func (r *run) isPlanned(dir string) bool {
	prefix := dir + string(filepath.Separator)
	for _, p := range r.planned {
		if p == dir || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

type nopReporter struct{}

func (nopReporter) Announce(domain.RunSummary) {}
func (nopReporter) Event(domain.Event)         {}
