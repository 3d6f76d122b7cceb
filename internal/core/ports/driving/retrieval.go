package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// RetrievalService answers similarity queries for chat grounding.
type RetrievalService interface {
	// Retrieve returns up to k records most similar to query, best first.
	// Embedding failures wrap domain.ErrEmbeddingUnavailable; an empty or
	// unavailable index yields an empty result.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedItem, error)
}
