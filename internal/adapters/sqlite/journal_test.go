package sqlite

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebak/internal/application"
	"drivebak/internal/domain"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testRun(id string, started time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:          id,
		StartedAt:   started,
		FinishedAt:  started.Add(3 * time.Second),
		Source:      "/home/u/Documents",
		Destination: "/media/usb/Documents",
		Serial:      "1234567890",
		VolumeLabel: "BACKUP",
		Algorithm:   "sha256",
		Status:      domain.RunCompleted,
		Stats: domain.RunStats{
			FilesScanned:     4,
			FilesWritten:     1,
			FilesVersioned:   1,
			SkippedUnchanged: 1,
			SkippedDuplicate: 1,
			DirsCreated:      1,
			BytesCopied:      10,
		},
		Duration: 3 * time.Second,
	}
}

func testDecisions() []domain.Decision {
	return []domain.Decision{
		{RelativePath: "a.txt", SourcePath: "/src/a.txt", Candidate: "/dst/a.txt", Target: "/dst/a.txt", Action: domain.ActionSkipUnchanged},
		{RelativePath: "b.txt", SourcePath: "/src/b.txt", Candidate: "/dst/b.txt", Target: "/dst/b_v2.txt", Action: domain.ActionWriteVersion, Version: 2, Bytes: 4},
		{RelativePath: "c.txt", SourcePath: "/src/c.txt", Candidate: "/dst/c.txt", Target: "/dst/c_v1.txt", Action: domain.ActionSkipDuplicate, Version: 1},
		{RelativePath: "sub/d.txt", SourcePath: "/src/sub/d.txt", Candidate: "/dst/sub/d.txt", Target: "/dst/sub/d.txt", Action: domain.ActionWrite, CreatedDir: "/dst/sub", Bytes: 6},
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "drivebak", "journal.db"), DefaultPath())
}

func TestRecordAndGetRun(t *testing.T) {
	j := openTestJournal(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	run := testRun("run-1", started)
	require.NoError(t, j.RecordRun(run, testDecisions()))

	got, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, *run, *got)

	decisions, err := j.RunDecisions("run-1")
	require.NoError(t, err)
	require.Len(t, decisions, 2, "only writes are journaled")
	assert.Equal(t, "b.txt", decisions[0].RelativePath)
	assert.Equal(t, domain.ActionWriteVersion, decisions[0].Action)
	assert.Equal(t, 2, decisions[0].Version)
	assert.Equal(t, "sub/d.txt", decisions[1].RelativePath)
	assert.Equal(t, "/dst/sub", decisions[1].CreatedDir)
	assert.Equal(t, int64(6), decisions[1].Bytes)
}

func TestGetRun_NotFound(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.GetRun("missing")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	j := openTestJournal(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "newest", "middle"} {
		offset := map[int]time.Duration{0: 0, 1: 2 * time.Hour, 2: time.Hour}[i]
		require.NoError(t, j.RecordRun(testRun(id, base.Add(offset)), nil))
	}

	runs, err := j.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"newest", "middle", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = j.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "newest", runs[0].ID)
}

func TestRecordRun_FailedRun(t *testing.T) {
	j := openTestJournal(t)

	run := testRun("run-failed", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	run.Status = domain.RunFailed
	run.Error = "backup failed: copy /dst/a.txt: no space left on device"
	require.NoError(t, j.RecordRun(run, nil))

	got, err := j.GetRun("run-failed")
	require.NoError(t, err)
	assert.Equal(t, domain.RunFailed, got.Status)
	assert.Equal(t, run.Error, got.Error)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	j := openTestJournal(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordRun(testRun("dup", started), testDecisions()))
	err := j.RecordRun(testRun("dup", started.Add(time.Hour)), testDecisions())
	require.Error(t, err)

	decisions, err := j.RunDecisions("dup")
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordRun(testRun("keep", time.Now().UTC()), nil))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = j.GetRun("keep")
	assert.NoError(t, err)
	assert.Equal(t, path, j.Path())
}

func TestOpen_PathWithURIMetacharacters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("'?' is not allowed in Windows file names")
	}

	path := filepath.Join(t.TempDir(), "odd?dir#1", "journal 1.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordRun(testRun("run-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), nil))
	require.NoError(t, j.Close())

	assert.FileExists(t, path)

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}

func TestJournalDSN(t *testing.T) {
	dsn, err := journalDSN("/data/odd?dir#1/journal 1.db")
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, "file:///data/odd%3Fdir%231/journal%201.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dsn)
	}
	assert.Equal(t, 1, strings.Count(dsn, "?"))
	assert.NotContains(t, dsn, "#")
}
