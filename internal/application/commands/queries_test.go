package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebak/internal/adapters/hashing"
	"drivebak/internal/application"
	"drivebak/internal/domain"
)

func TestListDrivesCommand(t *testing.T) {
	resolver := &fakeResolver{volumes: []domain.Volume{
		{Root: "/mnt/a", Serial: domain.SerialFromUint32(1)},
		{Root: "/mnt/b", Serial: domain.SerialFromUint32(2)},
	}}

	volumes, err := NewListDrivesCommand(resolver).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, volumes, 2)
}

func TestResolveDriveCommand(t *testing.T) {
	resolver := &fakeResolver{volumes: []domain.Volume{
		{Root: "/mnt/a", Serial: testSerial},
	}}

	t.Run("found", func(t *testing.T) {
		result, err := NewResolveDriveCommand(resolver, testSerial).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/mnt/a", result.Volume.Root)
		assert.Equal(t, "Drive 4996-02D2 is mounted at /mnt/a", result.Message)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := NewResolveDriveCommand(resolver, domain.SerialFromUint32(7)).Execute(context.Background())
		assert.ErrorIs(t, err, application.ErrPreconditionFailed)
	})

	t.Run("zero serial", func(t *testing.T) {
		_, err := NewResolveDriveCommand(resolver, domain.SerialNumber{}).Execute(context.Background())
		assert.ErrorIs(t, err, application.ErrConfig)
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHashFileCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hello.txt", "hello")

	hasher, err := hashing.New("sha256")
	require.NoError(t, err)

	result, err := NewHashFileCommand(hasher, path).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", result.Digest)
	assert.Equal(t, "sha256", result.Algorithm)
	assert.Equal(t, result.Digest+"  "+path, result.Message)

	_, err = NewHashFileCommand(hasher, filepath.Join(dir, "missing")).Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrNotFound)

	_, err = NewHashFileCommand(hasher, "").Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrConfig)
}

func TestCompareFilesCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", "same")
	b := writeFile(t, dir, "b", "same")
	c := writeFile(t, dir, "c", "other")

	hasher, err := hashing.New("md5")
	require.NoError(t, err)

	tests := []struct {
		name  string
		pathA string
		pathB string
		equal bool
	}{
		{name: "identical", pathA: a, pathB: b, equal: true},
		{name: "different", pathA: a, pathB: c, equal: false},
		{name: "missing", pathA: a, pathB: filepath.Join(dir, "nope"), equal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewCompareFilesCommand(hasher, tt.pathA, tt.pathB).Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.equal, result.Equal)
			assert.Equal(t, "md5", result.Algorithm)
		})
	}

	_, err = NewCompareFilesCommand(hasher, a, "").Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second path is required")
}

func TestHistoryCommands(t *testing.T) {
	journal := &fakeJournal{}
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, journal.RecordRun(&domain.RunRecord{ID: id, Status: domain.RunCompleted},
			[]domain.Decision{{RelativePath: id + ".txt", Action: domain.ActionWrite}}))
	}

	runs, err := NewListRunsCommand(journal, 2).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	assert.Equal(t, DefaultHistoryLimit, NewListRunsCommand(journal, 0).Limit)

	result, err := NewShowRunCommand(journal, "r2").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r2", result.Run.ID)
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, "r2.txt", result.Decisions[0].RelativePath)

	_, err = NewShowRunCommand(journal, "nope").Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrNotFound)

	_, err = NewShowRunCommand(journal, "").Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrConfig)
}
