package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// DocumentStore persists project documents.
// Text writes go through RecordStore.WriteText so the trigger is evaluated.
type DocumentStore interface {
	// Create inserts a new document and assigns its ID.
	Create(ctx context.Context, doc *domain.DocumentRecord) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.DocumentRecord, error)

	// List returns the documents of a project in project order.
	List(ctx context.Context, projectID int64) ([]domain.DocumentRecord, error)

	// Rename changes the display name.
	Rename(ctx context.Context, id int64, name string) error

	// Move reassigns a document to another project.
	Move(ctx context.Context, id, projectID int64) error

	// Delete removes a document.
	Delete(ctx context.Context, id int64) error
}
