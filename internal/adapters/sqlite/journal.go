package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"drivebak/internal/application"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

const schemaVersion = "1"

// Journal implements ports.Journal using SQLite
type Journal struct {
	db     *sql.DB
	dbPath string
}

// Ensure Journal implements ports.Journal
var _ ports.Journal = (*Journal)(nil)

// DefaultPath returns the journal location under the XDG data directory
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "drivebak", "journal.db")
}

// Open opens (creating if needed) the journal database at path
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn, err := journalDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			serial TEXT NOT NULL,
			volume_label TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			files_scanned INTEGER NOT NULL,
			files_written INTEGER NOT NULL,
			files_versioned INTEGER NOT NULL,
			skipped_unchanged INTEGER NOT NULL,
			skipped_duplicate INTEGER NOT NULL,
			dirs_created INTEGER NOT NULL,
			bytes_copied INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS files (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			relative_path TEXT NOT NULL,
			source_path TEXT NOT NULL,
			candidate TEXT NOT NULL,
			target TEXT NOT NULL,
			action TEXT NOT NULL,
			version INTEGER NOT NULL,
			created_dir TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '` + schemaVersion + `');
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Journal{db: db, dbPath: path}, nil
}

// journalDSN builds a file: URI for path. The path is percent-encoded so
// '?' and '#' in directory names are not read as query or fragment.
func journalDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve journal path: %w", err)
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// C:/... becomes /C:/..., which SQLite accepts on Windows
		p = "/" + p
	}

	u := url.URL{Scheme: "file", Path: p}
	return u.String() + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", nil
}

// Path returns the database file location
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// BeginTx starts a new transaction
func (j *Journal) BeginTx() (ports.JournalTx, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return nil, err
	}
	return &journalTx{tx: tx}, nil
}

// RecordRun stores the run and the files it wrote in one transaction
func (j *Journal) RecordRun(run *domain.RunRecord, decisions []domain.Decision) (err error) {
	tx, err := j.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.InsertRun(run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i := range decisions {
		if !decisions[i].Action.Writes() {
			continue
		}
		if err = tx.InsertDecision(run.ID, &decisions[i]); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", decisions[i].RelativePath, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, source, destination, serial, volume_label,
	algorithm, status, error, files_scanned, files_written, files_versioned,
	skipped_unchanged, skipped_duplicate, dirs_created, bytes_copied, duration_ns`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.RunRecord, error) {
	var (
		run               domain.RunRecord
		started, finished int64
		duration          int64
		status            string
	)
	err := row.Scan(&run.ID, &started, &finished, &run.Source, &run.Destination,
		&run.Serial, &run.VolumeLabel, &run.Algorithm, &status, &run.Error,
		&run.Stats.FilesScanned, &run.Stats.FilesWritten, &run.Stats.FilesVersioned,
		&run.Stats.SkippedUnchanged, &run.Stats.SkippedDuplicate, &run.Stats.DirsCreated,
		&run.Stats.BytesCopied, &duration)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(0, started).UTC()
	run.FinishedAt = time.Unix(0, finished).UTC()
	run.Status = domain.RunStatus(status)
	run.Duration = time.Duration(duration)
	return &run, nil
}

// ListRuns returns the most recent runs first
func (j *Journal) ListRuns(limit int) ([]domain.RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+runColumns+`
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run by ID
func (j *Journal) GetRun(id string) (*domain.RunRecord, error) {
	run, err := scanRun(j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &application.NotFoundError{Path: "run " + id}
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RunDecisions returns the files a run wrote, in the order it wrote them
func (j *Journal) RunDecisions(runID string) ([]domain.Decision, error) {
	rows, err := j.db.Query(`
		SELECT relative_path, source_path, candidate, target, action, version, created_dir, bytes
		FROM files WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		var d domain.Decision
		var action string
		if err := rows.Scan(&d.RelativePath, &d.SourcePath, &d.Candidate, &d.Target,
			&action, &d.Version, &d.CreatedDir, &d.Bytes); err != nil {
			return nil, err
		}
		if d.Action, err = domain.ParseAction(action); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}
