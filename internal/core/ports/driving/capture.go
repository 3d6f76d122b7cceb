package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// ActivityService handles the capture trigger and activity history.
type ActivityService interface {
	// Capture stores a new activity and submits it for vectorization.
	Capture(ctx context.Context, req domain.CaptureRequest) (*domain.ActivityRecord, domain.VectorizationResult, error)

	// History returns activities newest first.
	History(ctx context.Context, offset, limit int) ([]domain.ActivityRecord, error)

	// Get retrieves an activity by ID.
	Get(ctx context.Context, id int64) (*domain.ActivityRecord, error)

	// Delete removes an activity and its index entry.
	Delete(ctx context.Context, id int64) error

	// Metadata returns the key/value metadata of an activity.
	Metadata(ctx context.Context, id int64) (map[string]string, error)

	// SetMetadata stores a metadata value on an activity.
	SetMetadata(ctx context.Context, id int64, key, value string) error
}
