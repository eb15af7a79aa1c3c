package commands

import (
	"context"

	"drivebak/internal/application"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// DefaultHistoryLimit is how many runs are listed when no limit is given
const DefaultHistoryLimit = 20

// ListRunsCommand lists recent backup runs from the journal
type ListRunsCommand struct {
	journal ports.Journal
	Limit   int
}

// NewListRunsCommand creates a new ListRunsCommand
func NewListRunsCommand(journal ports.Journal, limit int) *ListRunsCommand {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ListRunsCommand{
		journal: journal,
		Limit:   limit,
	}
}

// Execute runs the list runs command
func (c *ListRunsCommand) Execute(ctx context.Context) ([]domain.RunRecord, error) {
	return c.journal.ListRuns(c.Limit)
}

// ShowRunCommand loads one run with every file it touched
type ShowRunCommand struct {
	journal ports.Journal
	RunID   string
}

// ShowRunResult contains a run and its decisions
type ShowRunResult struct {
	Run       *domain.RunRecord `json:"run"`
	Decisions []domain.Decision `json:"decisions"`
}

// NewShowRunCommand creates a new ShowRunCommand
func NewShowRunCommand(journal ports.Journal, runID string) *ShowRunCommand {
	return &ShowRunCommand{
		journal: journal,
		RunID:   runID,
	}
}

// Validate validates the command parameters
func (c *ShowRunCommand) Validate() error {
	return application.ValidateRequired("runID", c.RunID)
}

// Execute runs the show run command
func (c *ShowRunCommand) Execute(ctx context.Context) (*ShowRunResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	run, err := c.journal.GetRun(c.RunID)
	if err != nil {
		return nil, err
	}

	decisions, err := c.journal.RunDecisions(c.RunID)
	if err != nil {
		return nil, err
	}

	return &ShowRunResult{Run: run, Decisions: decisions}, nil
}
