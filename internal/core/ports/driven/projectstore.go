package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// Create inserts a project and assigns its ID.
	// Returns domain.ErrAlreadyExists if the name is taken.
	Create(ctx context.Context, project *domain.Project) error

	// Get retrieves a project with its ordered document IDs.
	Get(ctx context.Context, id int64) (*domain.Project, error)

	// GetByName retrieves a project by its unique name.
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// List returns all projects ordered by ID.
	List(ctx context.Context) ([]domain.Project, error)

	// Rename changes a project's name.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a project and all of its documents.
	Delete(ctx context.Context, id int64) error
}
