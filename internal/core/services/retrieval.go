package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers "what prior text is most relevant to this query"
// for the chat engine's context assembly.
type RetrievalService struct {
	records  driven.RecordStore
	embedder driven.EmbeddingService
	index    *IndexHandle
}

// NewRetrievalService creates a retrieval service. embedder may be nil.
func NewRetrievalService(
	records driven.RecordStore,
	embedder driven.EmbeddingService,
	index *IndexHandle,
) *RetrievalService {
	return &RetrievalService{
		records:  records,
		embedder: embedder,
		index:    index,
	}
}

// Retrieve embeds query, searches the index and hydrates each hit with the
// record's current text. Hits whose record no longer exists are dropped and
// pruned from the index.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedItem, error) {
	logger.Section("Retrieval")

	if strings.TrimSpace(query) == "" || k <= 0 {
		return []domain.RetrievedItem{}, nil
	}

	if s.index.Len(ctx) == 0 {
		logger.Debug("Index empty or unavailable, returning no context")
		return []domain.RetrievedItem{}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	logger.Debug("Embedding query (%d chars)", len(query))
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		if errors.Is(err, domain.ErrIndexCorrupt) {
			logger.Error("retrieval: index search failed: %v", err)
		} else {
			logger.Warn("Index search failed: %v", err)
		}
		return []domain.RetrievedItem{}, nil
	}
	logger.Debug("Index returned %d hits", len(hits))

	return s.hydrate(ctx, hits), nil
}

// hydrate maps hits to records, preserving index order.
func (s *RetrievalService) hydrate(ctx context.Context, hits []domain.IndexHit) []domain.RetrievedItem {
	items := make([]domain.RetrievedItem, 0, len(hits))
	var dangling []domain.Tag

	for _, hit := range hits {
		text, err := s.records.GetText(ctx, hit.Tag)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Dropping %s: record no longer exists", hit.Tag)
			dangling = append(dangling, hit.Tag)
			continue
		}
		if err != nil {
			logger.Warn("Skipping %s: %v", hit.Tag, err)
			continue
		}
		items = append(items, domain.RetrievedItem{
			Kind:  hit.Tag.Kind,
			ID:    hit.Tag.ID,
			Text:  text,
			Score: hit.Score,
		})
	}

	s.prune(ctx, dangling)
	return items
}

// prune removes entries whose records were deleted.
func (s *RetrievalService) prune(ctx context.Context, tags []domain.Tag) {
	if len(tags) == 0 {
		return
	}
	err := s.index.WithWrite(ctx, func(h *ScopedHandle) error {
		for _, tag := range tags {
			if err := h.Delete(ctx, tag); err != nil {
				return fmt.Errorf("prune %s: %w", tag, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Pruning dangling index entries: %v", err)
		return
	}
	logger.Debug("Pruned %d dangling index entries", len(tags))
}
