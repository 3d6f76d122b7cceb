package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure ActivityService implements the interface.
var _ driving.ActivityService = (*ActivityService)(nil)

// ActivityService turns capture triggers into activity records.
type ActivityService struct {
	activities driven.ActivityStore
	vectorizer driving.Vectorizer
	index      *IndexHandle
	settings   settingsReader
}

// NewActivityService creates an activity service.
func NewActivityService(
	activities driven.ActivityStore,
	vectorizer driving.Vectorizer,
	index *IndexHandle,
	settings settingsReader,
) *ActivityService {
	return &ActivityService{
		activities: activities,
		vectorizer: vectorizer,
		index:      index,
		settings:   settings,
	}
}

// Capture stores a new activity and runs it through the vectorizer.
// Vectorization problems are reported in the result, never as an error.
func (s *ActivityService) Capture(
	ctx context.Context,
	req domain.CaptureRequest,
) (*domain.ActivityRecord, domain.VectorizationResult, error) {
	defaults := domain.DefaultAppSettings().Capture
	if s.settings != nil {
		if settings, err := s.settings.Get(); err == nil {
			defaults = settings.Capture
		}
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = defaults.UserID
	}
	if userID == "" {
		return nil, domain.VectorizationResult{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.VectorizationResult{}, fmt.Errorf("%w: captured text is empty", domain.ErrInvalidInput)
	}

	interval := req.IntervalLength
	if interval <= 0 {
		interval = defaults.DefaultInterval
	}

	record := &domain.ActivityRecord{
		UserID:         userID,
		Text:           req.Text,
		WindowTitle:    strings.TrimSpace(req.WindowTitle),
		IntervalLength: interval,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.activities.Save(ctx, record); err != nil {
		return nil, domain.VectorizationResult{}, fmt.Errorf("saving activity: %w", err)
	}
	logger.Debug("Captured activity %d for %s (%d chars)", record.ID, userID, len(record.Text))

	result := s.vectorizer.Vectorize(ctx, record.Tag(), domain.VectorizeOptions{})
	record.Vectorized = result.Outcome == domain.OutcomeIndexed
	return record, result, nil
}

// History returns activities newest first.
func (s *ActivityService) History(ctx context.Context, offset, limit int) ([]domain.ActivityRecord, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	return s.activities.List(ctx, offset, limit)
}

// Get retrieves an activity by ID.
func (s *ActivityService) Get(ctx context.Context, id int64) (*domain.ActivityRecord, error) {
	return s.activities.Get(ctx, id)
}

// Delete removes an activity and purges its index entry.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.activities.Delete(ctx, id); err != nil {
		return err
	}
	purge(ctx, s.index, domain.ActivityTag(id))
	return nil
}

// Metadata returns the key/value metadata of an activity.
func (s *ActivityService) Metadata(ctx context.Context, id int64) (map[string]string, error) {
	return s.activities.GetMetadata(ctx, id)
}

// SetMetadata stores a metadata value on an activity.
func (s *ActivityService) SetMetadata(ctx context.Context, id int64, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: metadata key is required", domain.ErrInvalidInput)
	}
	return s.activities.SetMetadata(ctx, id, key, value)
}

// purge removes tag from the index. A missing index is not an error;
// any other failure leaves a dangling entry that retrieval prunes later.
func purge(ctx context.Context, index *IndexHandle, tag domain.Tag) {
	if index == nil {
		return
	}
	err := index.Delete(ctx, tag)
	if err != nil && !errors.Is(err, domain.ErrIndexUnavailable) {
		logger.Warn("Purging %s from index: %v", tag, err)
	}
}
