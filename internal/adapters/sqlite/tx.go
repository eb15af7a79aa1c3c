package sqlite

import (
	"database/sql"

	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// journalTx implements ports.JournalTx
type journalTx struct {
	tx  *sql.Tx
	seq int
}

// Ensure journalTx implements JournalTx
var _ ports.JournalTx = (*journalTx)(nil)

// InsertRun adds a run row
func (t *journalTx) InsertRun(run *domain.RunRecord) error {
	_, err := t.tx.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(), run.Source, run.Destination,
		run.Serial, run.VolumeLabel, run.Algorithm, string(run.Status), run.Error,
		run.Stats.FilesScanned, run.Stats.FilesWritten, run.Stats.FilesVersioned,
		run.Stats.SkippedUnchanged, run.Stats.SkippedDuplicate, run.Stats.DirsCreated,
		run.Stats.BytesCopied, int64(run.Duration))
	return err
}

// InsertDecision adds one file row to a run
func (t *journalTx) InsertDecision(runID string, d *domain.Decision) error {
	t.seq++
	_, err := t.tx.Exec(`
		INSERT INTO files (run_id, seq, relative_path, source_path, candidate, target, action, version, created_dir, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, t.seq, d.RelativePath, d.SourcePath, d.Candidate, d.Target,
		d.Action.String(), d.Version, d.CreatedDir, d.Bytes)
	return err
}

// Commit commits the transaction
func (t *journalTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *journalTx) Rollback() error {
	return t.tx.Rollback()
}
