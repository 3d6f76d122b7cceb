package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// ActivityStore persists captured activities.
type ActivityStore interface {
	// Save inserts a new activity and assigns its ID.
	Save(ctx context.Context, activity *domain.ActivityRecord) error

	// Get retrieves an activity by ID.
	Get(ctx context.Context, id int64) (*domain.ActivityRecord, error)

	// List returns activities newest first.
	List(ctx context.Context, offset, limit int) ([]domain.ActivityRecord, error)

	// Delete removes an activity and its metadata.
	Delete(ctx context.Context, id int64) error

	// GetMetadata returns all key/value metadata for an activity.
	GetMetadata(ctx context.Context, id int64) (map[string]string, error)

	// SetMetadata stores one key/value pair, replacing any existing value.
	SetMetadata(ctx context.Context, id int64, key, value string) error
}
