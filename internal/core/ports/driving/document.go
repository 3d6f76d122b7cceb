package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// DocumentService manages project documents.
type DocumentService interface {
	// Create adds a document. A zero projectID means the Unassigned project;
	// empty name and text fall back to the document defaults.
	Create(ctx context.Context, projectID int64, name, text string) (*domain.DocumentRecord, domain.VectorizationResult, error)

	// UpdateText replaces a document's text and submits it for vectorization.
	UpdateText(ctx context.Context, id int64, text string, opts domain.VectorizeOptions) (domain.VectorizationResult, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.DocumentRecord, error)

	// List returns the documents of a project.
	List(ctx context.Context, projectID int64) ([]domain.DocumentRecord, error)

	// Rename changes a document's display name.
	Rename(ctx context.Context, id int64, name string) error

	// Move reassigns a document to another project.
	Move(ctx context.Context, id, projectID int64) error

	// Delete removes a document and its index entry.
	Delete(ctx context.Context, id int64) error
}
