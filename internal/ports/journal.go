package ports

import "drivebak/internal/domain"

// Journal keeps a history of backup runs. It is write-only from the
// engine's point of view: no decision ever reads it.
type Journal interface {
	// RecordRun stores a finished run and the files it wrote atomically
	RecordRun(run *domain.RunRecord, decisions []domain.Decision) error

	// ListRuns returns the most recent runs first
	ListRuns(limit int) ([]domain.RunRecord, error)
	GetRun(id string) (*domain.RunRecord, error)
	RunDecisions(runID string) ([]domain.Decision, error)

	Close() error
}

// JournalTx represents a transaction used while recording one run
type JournalTx interface {
	InsertRun(run *domain.RunRecord) error
	InsertDecision(runID string, d *domain.Decision) error

	Commit() error
	Rollback() error
}
