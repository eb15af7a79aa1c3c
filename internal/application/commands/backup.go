package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"drivebak/internal/application"
	"drivebak/internal/application/engine"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// BackupRequest holds everything a single run needs from the user
type BackupRequest struct {
	SourcePath   string
	Serial       domain.SerialNumber
	RelativePath string
	Excludes     []string
	DryRun       bool
	Verbose      bool
	SkipConfirm  bool
}

// BackupDeps are the collaborators a backup runs against
type BackupDeps struct {
	Resolver  ports.DriveResolver
	Store     ports.FileStore
	Hasher    ports.Hasher
	Reporter  ports.Reporter  // optional
	Confirmer ports.Confirmer // required unless DryRun or SkipConfirm
	Journal   ports.Journal   // optional
}

// BackupResult contains the result of a backup run
type BackupResult struct {
	Volume  domain.Volume
	Report  *engine.Report
	RunID   string
	Message string
}

// BackupCommand resolves the destination drive, confirms with the user and
// runs the sync engine
type BackupCommand struct {
	deps    BackupDeps
	Request BackupRequest

	now   func() time.Time
	newID func() string
}

// NewBackupCommand creates a new BackupCommand
func NewBackupCommand(deps BackupDeps, req BackupRequest) *BackupCommand {
	return &BackupCommand{
		deps:    deps,
		Request: req,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Validate checks the request before anything touches a drive
func (c *BackupCommand) Validate() error {
	if err := application.ValidateRequired("sourcePath", c.Request.SourcePath); err != nil {
		return err
	}

	if c.Request.Serial.IsZero() {
		return &application.ValidationError{
			Field:   "serial",
			Message: "drive serial number is required",
		}
	}

	if err := application.ValidateRelativePath(c.Request.RelativePath); err != nil {
		return err
	}

	if err := application.ValidateExcludes(c.Request.Excludes); err != nil {
		return err
	}

	if c.needsConfirmation() && c.deps.Confirmer == nil {
		return fmt.Errorf("%w: confirmation required but no prompt available (use --yes)", application.ErrInvalidOperation)
	}

	return nil
}

func (c *BackupCommand) needsConfirmation() bool {
	return !c.Request.DryRun && !c.Request.SkipConfirm
}

// Execute runs the backup command
func (c *BackupCommand) Execute(ctx context.Context) (*BackupResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	source, err := filepath.Abs(c.Request.SourcePath)
	if err != nil {
		return nil, &application.ValidationError{Field: "sourcePath", Message: err.Error()}
	}

	volume, err := c.deps.Resolver.Resolve(ctx, c.Request.Serial)
	if err != nil {
		return nil, err
	}

	target, err := domain.NewBackupTarget(volume.Root, c.Request.RelativePath, source)
	if err != nil {
		return nil, &application.ValidationError{Field: "sourcePath", Message: err.Error()}
	}

	summary := domain.RunSummary{
		Source:      source,
		Destination: target.Root,
		Volume:      volume,
		Algorithm:   c.deps.Hasher.Algorithm(),
		Verbose:     c.Request.Verbose,
		DryRun:      c.Request.DryRun,
	}
	if c.deps.Reporter != nil {
		c.deps.Reporter.Announce(summary)
	}

	if c.needsConfirmation() {
		ok, err := c.deps.Confirmer.Confirm(ctx, summary)
		if err != nil {
			return nil, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			return nil, application.ErrAborted
		}
	}

	started := c.now()
	eng := engine.New(c.deps.Store, c.deps.Hasher, c.deps.Reporter)
	report, runErr := eng.Run(ctx, target, engine.Options{
		DryRun:   c.Request.DryRun,
		Excludes: c.Request.Excludes,
	})

	result := &BackupResult{
		Volume: volume,
		Report: report,
	}

	if !c.Request.DryRun && c.deps.Journal != nil {
		result.RunID = c.record(summary, report, started, runErr)
	}

	if runErr != nil {
		return result, fmt.Errorf("backup failed: %w", runErr)
	}

	result.Message = FormatStats(report.Stats, c.Request.DryRun)
	return result, nil
}

// record writes the run to the journal. A journal failure does not fail
// the backup itself.
func (c *BackupCommand) record(summary domain.RunSummary, report *engine.Report, started time.Time, runErr error) string {
	finished := c.now()
	run := &domain.RunRecord{
		ID:          c.newID(),
		StartedAt:   started,
		FinishedAt:  finished,
		Source:      summary.Source,
		Destination: summary.Destination,
		Serial:      summary.Volume.Serial.String(),
		VolumeLabel: summary.Volume.Label,
		Algorithm:   summary.Algorithm,
		Status:      domain.RunCompleted,
		Stats:       report.Stats,
		Duration:    finished.Sub(started),
	}
	if runErr != nil {
		run.Status = domain.RunFailed
		run.Error = runErr.Error()
	}

	if err := c.deps.Journal.RecordRun(run, report.Decisions); err != nil {
		slog.Warn("failed to record run in journal", "run_id", run.ID, "error", err)
		return ""
	}
	return run.ID
}

// FormatStats renders run counters for people
func FormatStats(s domain.RunStats, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("Dry run: would write %d files (%d versioned), %d unchanged, %d duplicates, %d directories to create",
			s.Writes(), s.FilesVersioned, s.SkippedUnchanged, s.SkippedDuplicate, s.DirsCreated)
	}
	return fmt.Sprintf("Backup complete: wrote %d files (%s, %d versioned), %d unchanged, %d duplicates, %d directories created",
		s.Writes(), humanize.Bytes(uint64(s.BytesCopied)), s.FilesVersioned, s.SkippedUnchanged, s.SkippedDuplicate, s.DirsCreated)
}

// IsAborted reports whether err means the user declined the run
func IsAborted(err error) bool {
	return errors.Is(err, application.ErrAborted)
}
