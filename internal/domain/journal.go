package domain

import "time"

// RunStatus is the final state of a recorded run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one backup run as kept in the journal
type RunRecord struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Serial      string        `json:"serial"`
	VolumeLabel string        `json:"volume_label"`
	Algorithm   string        `json:"algorithm"`
	Status      RunStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	Stats       RunStats      `json:"stats"`
	Duration    time.Duration `json:"duration"`
}
