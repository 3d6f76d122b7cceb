package services

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
)

// Ensure IndexService implements the interface.
var _ driving.IndexAdmin = (*IndexService)(nil)

// IndexService exposes index maintenance to the CLI and scheduler.
type IndexService struct {
	index      *IndexHandle
	reconciler *Reconciler
}

// NewIndexService creates an index service.
func NewIndexService(index *IndexHandle, reconciler *Reconciler) *IndexService {
	return &IndexService{index: index, reconciler: reconciler}
}

// Stats describes the index.
func (s *IndexService) Stats(ctx context.Context) domain.IndexStats {
	return s.index.Stats(ctx)
}

// Flush persists buffered index state.
func (s *IndexService) Flush(ctx context.Context) error {
	return s.index.Flush(ctx)
}

// Reconcile runs one reconciliation pass.
func (s *IndexService) Reconcile(ctx context.Context) (int, error) {
	if s.reconciler == nil {
		return 0, nil
	}
	return s.reconciler.Run(ctx)
}
