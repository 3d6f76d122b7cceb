package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// ProjectService manages projects.
type ProjectService interface {
	// EnsureUnassigned returns the Unassigned project, creating it if absent.
	EnsureUnassigned(ctx context.Context) (*domain.Project, error)

	// Create adds a project. Each listed activity is copied into a new document.
	Create(ctx context.Context, name string, activityIDs []int64) (*domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id int64) (*domain.Project, error)

	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Rename changes a project's name.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a project, its documents and their index entries.
	Delete(ctx context.Context, id int64) error
}
