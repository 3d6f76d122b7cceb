package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Scheduler runs background maintenance: index flushes and vectorization reconciliation.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// History returns recent results for a task, most recent first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
