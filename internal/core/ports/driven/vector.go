package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// VectorIndex is the replaceable ANN structure behind the index handle.
// It stores only tags and vectors, never text.
//
// Implementations need not be safe for concurrent mutation; the index
// handle serialises every call.
type VectorIndex interface {
	// Add inserts the vector for tag, replacing any existing entry.
	// Returns an error wrapping domain.ErrIndexCorrupt on dimension mismatch.
	Add(ctx context.Context, tag domain.Tag, vector []float32) error

	// Delete removes the entry for tag. Deleting a missing tag is not an error.
	Delete(ctx context.Context, tag domain.Tag) error

	// Search returns up to k entries ordered by descending similarity,
	// ties broken by insertion order. An empty index returns no hits.
	Search(ctx context.Context, query []float32, k int) ([]domain.IndexHit, error)

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the vector size the index accepts.
	Dimensions() int

	// Flush persists buffered state.
	Flush(ctx context.Context) error

	// Close flushes and releases resources.
	Close() error
}
