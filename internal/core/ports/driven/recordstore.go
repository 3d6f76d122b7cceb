package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// RecordStore is the slice of the relational store the vectorizer and
// retrieval service need. Every method is keyed by tag so one store
// serves both record kinds.
type RecordStore interface {
	// WriteText persists text for a document and reports, from the same
	// transaction, whether the record now qualifies for vectorization
	// (text longer than minLength characters and vectorized flag false).
	// Activities are immutable and return domain.ErrImmutable.
	WriteText(ctx context.Context, tag domain.Tag, text string, minLength int) (bool, error)

	// GetFlag returns the vectorized flag.
	GetFlag(ctx context.Context, tag domain.Tag) (bool, error)

	// SetFlag marks the record as vectorized.
	SetFlag(ctx context.Context, tag domain.Tag) error

	// ResetFlag clears the vectorized flag.
	ResetFlag(ctx context.Context, tag domain.Tag) error

	// GetText returns the current text, or domain.ErrNotFound.
	GetText(ctx context.Context, tag domain.Tag) (string, error)

	// ListUnvectorized returns up to limit records of either kind whose
	// flag is false and whose text exceeds minLength characters.
	ListUnvectorized(ctx context.Context, minLength, limit int) ([]domain.Tag, error)
}
