package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Vectorizer decides whether a written record is embedded and indexed.
type Vectorizer interface {
	// Submit writes text for tag and then vectorizes it if eligible.
	// The error is non-nil only when the text write fails.
	Submit(ctx context.Context, tag domain.Tag, text string, opts domain.VectorizeOptions) (domain.VectorizationResult, error)

	// Vectorize evaluates an already persisted record.
	Vectorize(ctx context.Context, tag domain.Tag, opts domain.VectorizeOptions) domain.VectorizationResult
}

// IndexAdmin exposes maintenance operations on the shared index.
type IndexAdmin interface {
	// Stats describes the index.
	Stats(ctx context.Context) domain.IndexStats

	// Flush persists buffered index state.
	Flush(ctx context.Context) error

	// Reconcile retries vectorization for eligible, unvectorized records
	// and returns how many were indexed.
	Reconcile(ctx context.Context) (int, error)
}
