package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebak/internal/adapters/filesystem"
	"drivebak/internal/adapters/hashing"
	"drivebak/internal/application"
	"drivebak/internal/domain"
)

var testSerial = domain.SerialFromUint32(0x499602D2)

type fakeResolver struct {
	volumes []domain.Volume
	err     error
}

func (f *fakeResolver) ListVolumes(ctx context.Context) ([]domain.Volume, error) {
	return f.volumes, f.err
}

func (f *fakeResolver) Resolve(ctx context.Context, serial domain.SerialNumber) (domain.Volume, error) {
	if f.err != nil {
		return domain.Volume{}, f.err
	}
	if v, ok := domain.FindVolume(f.volumes, serial); ok {
		return v, nil
	}
	return domain.Volume{}, &application.NoDriveError{Serial: serial.Hex()}
}

type fakeConfirmer struct {
	answer bool
	err    error
	asked  int
	seen   domain.RunSummary
}

func (f *fakeConfirmer) Confirm(ctx context.Context, summary domain.RunSummary) (bool, error) {
	f.asked++
	f.seen = summary
	return f.answer, f.err
}

type fakeReporter struct {
	announced []domain.RunSummary
	events    []domain.Event
}

func (f *fakeReporter) Announce(s domain.RunSummary) { f.announced = append(f.announced, s) }
func (f *fakeReporter) Event(ev domain.Event)        { f.events = append(f.events, ev) }

type fakeJournal struct {
	runs      []domain.RunRecord
	decisions map[string][]domain.Decision
	err       error
}

func (f *fakeJournal) RecordRun(run *domain.RunRecord, decisions []domain.Decision) error {
	if f.err != nil {
		return f.err
	}
	if f.decisions == nil {
		f.decisions = make(map[string][]domain.Decision)
	}
	f.runs = append(f.runs, *run)
	f.decisions[run.ID] = decisions
	return nil
}

func (f *fakeJournal) ListRuns(limit int) ([]domain.RunRecord, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeJournal) GetRun(id string) (*domain.RunRecord, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, &application.NotFoundError{Path: id}
}

func (f *fakeJournal) RunDecisions(runID string) ([]domain.Decision, error) {
	return f.decisions[runID], nil
}

func (f *fakeJournal) Close() error { return nil }

type backupFixture struct {
	source    string
	drive     string
	resolver  *fakeResolver
	confirmer *fakeConfirmer
	reporter  *fakeReporter
	journal   *fakeJournal
}

func newBackupFixture(t *testing.T) *backupFixture {
	t.Helper()

	tmp := t.TempDir()
	source := filepath.Join(tmp, "home", "Documents")
	drive := filepath.Join(tmp, "mnt", "usb")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "notes"), 0o755))
	require.NoError(t, os.MkdirAll(drive, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "notes", "b.md"), []byte("bravo"), 0o644))

	return &backupFixture{
		source: source,
		drive:  drive,
		resolver: &fakeResolver{volumes: []domain.Volume{
			{Root: filepath.Join(tmp, "elsewhere"), Serial: domain.SerialFromUint32(1)},
			{Root: drive, Label: "BACKUP", Serial: testSerial},
		}},
		confirmer: &fakeConfirmer{answer: true},
		reporter:  &fakeReporter{},
		journal:   &fakeJournal{},
	}
}

func (f *backupFixture) command(t *testing.T, req BackupRequest) *BackupCommand {
	t.Helper()

	hasher, err := hashing.New(hashing.DefaultAlgorithm)
	require.NoError(t, err)

	if req.SourcePath == "" {
		req.SourcePath = f.source
	}
	if req.Serial.IsZero() {
		req.Serial = testSerial
	}

	cmd := NewBackupCommand(BackupDeps{
		Resolver:  f.resolver,
		Store:     filesystem.NewStore(),
		Hasher:    hasher,
		Reporter:  f.reporter,
		Confirmer: f.confirmer,
		Journal:   f.journal,
	}, req)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cmd.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	cmd.newID = func() string { return "run-1" }
	return cmd
}

func TestBackupCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BackupRequest
		deps    BackupDeps
		wantErr error
		errMsg  string
	}{
		{
			name: "valid",
			req:  BackupRequest{SourcePath: "/home/u/Documents", Serial: testSerial, SkipConfirm: true},
		},
		{
			name:    "missing source",
			req:     BackupRequest{Serial: testSerial, SkipConfirm: true},
			wantErr: application.ErrConfig,
			errMsg:  "source path is required",
		},
		{
			name:    "missing serial",
			req:     BackupRequest{SourcePath: "/home/u/Documents", SkipConfirm: true},
			wantErr: application.ErrConfig,
			errMsg:  "drive serial number is required",
		},
		{
			name:    "escaping relative path",
			req:     BackupRequest{SourcePath: "/home/u/Documents", Serial: testSerial, RelativePath: "../x", SkipConfirm: true},
			wantErr: application.ErrConfig,
		},
		{
			name:    "bad exclude",
			req:     BackupRequest{SourcePath: "/home/u/Documents", Serial: testSerial, Excludes: []string{"[oops"}, SkipConfirm: true},
			wantErr: application.ErrConfig,
		},
		{
			name:    "no confirmer for a real run",
			req:     BackupRequest{SourcePath: "/home/u/Documents", Serial: testSerial},
			wantErr: application.ErrInvalidOperation,
			errMsg:  "--yes",
		},
		{
			name: "dry run needs no confirmer",
			req:  BackupRequest{SourcePath: "/home/u/Documents", Serial: testSerial, DryRun: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackupCommand(tt.deps, tt.req).Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestBackupCommand_Execute(t *testing.T) {
	f := newBackupFixture(t)

	result, err := f.command(t, BackupRequest{Verbose: true}).Execute(context.Background())
	require.NoError(t, err)

	dest := filepath.Join(f.drive, "Documents")
	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.FileExists(t, filepath.Join(dest, "notes", "b.md"))

	assert.Equal(t, f.drive, result.Volume.Root)
	assert.Equal(t, 2, result.Report.Stats.FilesWritten)
	assert.Equal(t, "run-1", result.RunID)
	assert.True(t, strings.HasPrefix(result.Message, "Backup complete"), result.Message)

	require.Len(t, f.reporter.announced, 1)
	summary := f.reporter.announced[0]
	assert.Equal(t, f.source, summary.Source)
	assert.Equal(t, dest, summary.Destination)
	assert.Equal(t, "sha256", summary.Algorithm)
	assert.True(t, summary.Verbose)

	assert.Equal(t, 1, f.confirmer.asked)
	assert.Equal(t, summary, f.confirmer.seen)

	require.Len(t, f.journal.runs, 1)
	run := f.journal.runs[0]
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, testSerial.String(), run.Serial)
	assert.Equal(t, "BACKUP", run.VolumeLabel)
	assert.Equal(t, time.Second, run.Duration)
	assert.Len(t, f.journal.decisions["run-1"], 2)
}

func TestBackupCommand_RelativePath(t *testing.T) {
	f := newBackupFixture(t)

	result, err := f.command(t, BackupRequest{RelativePath: "Backups/laptop", SkipConfirm: true}).Execute(context.Background())
	require.NoError(t, err)

	dest := filepath.Join(f.drive, "Backups", "laptop", "Documents")
	assert.Equal(t, dest, result.Report.Target.Root)
	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.Zero(t, f.confirmer.asked)
}

func TestBackupCommand_Declined(t *testing.T) {
	f := newBackupFixture(t)
	f.confirmer.answer = false

	result, err := f.command(t, BackupRequest{}).Execute(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, application.ErrAborted)
	assert.True(t, IsAborted(err))

	assert.NoDirExists(t, filepath.Join(f.drive, "Documents"))
	assert.Empty(t, f.journal.runs)
	assert.Len(t, f.reporter.announced, 1)
}

func TestBackupCommand_ConfirmError(t *testing.T) {
	f := newBackupFixture(t)
	f.confirmer.err = errors.New("stdin closed")

	_, err := f.command(t, BackupRequest{}).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin closed")
	assert.NoDirExists(t, filepath.Join(f.drive, "Documents"))
}

func TestBackupCommand_NoDrive(t *testing.T) {
	f := newBackupFixture(t)

	_, err := f.command(t, BackupRequest{Serial: domain.SerialFromUint32(42)}).Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrPreconditionFailed)
	assert.Empty(t, f.reporter.announced)
	assert.Zero(t, f.confirmer.asked)
}

func TestBackupCommand_DryRun(t *testing.T) {
	f := newBackupFixture(t)

	result, err := f.command(t, BackupRequest{DryRun: true}).Execute(context.Background())
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(f.drive, "Documents"))
	assert.Equal(t, 2, result.Report.Stats.FilesWritten)
	assert.True(t, strings.HasPrefix(result.Message, "Dry run"), result.Message)
	assert.Empty(t, result.RunID)
	assert.Zero(t, f.confirmer.asked)
	assert.Empty(t, f.journal.runs)
	assert.True(t, f.reporter.announced[0].DryRun)
}

func TestBackupCommand_FailedRunIsJournaled(t *testing.T) {
	f := newBackupFixture(t)
	// A regular file where the destination directory must go
	require.NoError(t, os.WriteFile(filepath.Join(f.drive, "Documents"), []byte("x"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(f.source, "a.txt")))

	result, err := f.command(t, BackupRequest{SkipConfirm: true}).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrIO)
	require.NotNil(t, result)
	assert.Equal(t, "run-1", result.RunID)

	require.Len(t, f.journal.runs, 1)
	assert.Equal(t, domain.RunFailed, f.journal.runs[0].Status)
	assert.NotEmpty(t, f.journal.runs[0].Error)
}

func TestBackupCommand_JournalFailureDoesNotFailRun(t *testing.T) {
	f := newBackupFixture(t)
	f.journal.err = errors.New("disk full")

	result, err := f.command(t, BackupRequest{SkipConfirm: true}).Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.RunID)
	assert.Equal(t, 2, result.Report.Stats.FilesWritten)
}

func TestFormatStats(t *testing.T) {
	stats := domain.RunStats{
		FilesWritten:     2,
		FilesVersioned:   1,
		SkippedUnchanged: 4,
		SkippedDuplicate: 1,
		DirsCreated:      1,
		BytesCopied:      2048,
	}

	assert.Equal(t,
		"Backup complete: wrote 3 files (2.0 kB, 1 versioned), 4 unchanged, 1 duplicates, 1 directories created",
		FormatStats(stats, false))
	assert.Equal(t,
		"Dry run: would write 3 files (1 versioned), 4 unchanged, 1 duplicates, 1 directories to create",
		FormatStats(stats, true))
}
