package ports

import (
	"context"

	"drivebak/internal/domain"
)

// Reporter receives progress from a backup run
type Reporter interface {
	// Announce is called once before anything is written
	Announce(summary domain.RunSummary)
	Event(ev domain.Event)
}

// Confirmer asks the user whether a run should go ahead
type Confirmer interface {
	Confirm(ctx context.Context, summary domain.RunSummary) (bool, error)
}
