package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure Vectorizer implements the interface.
var _ driving.Vectorizer = (*Vectorizer)(nil)

// settingsReader is the part of SettingsService the pipeline needs.
// Settings are re-read on every call so the feature flag and credential
// reflect the configuration at call time.
type settingsReader interface {
	Get() (*domain.AppSettings, error)
}

// Vectorizer decides, per write, whether a record is embedded and indexed.
//
// Failures never propagate to the write that triggered them. A record whose
// embedding fails keeps vectorized=false and is retried the next time a
// qualifying write happens.
type Vectorizer struct {
	records  driven.RecordStore
	embedder driven.EmbeddingService
	index    *IndexHandle
	settings settingsReader
}

// NewVectorizer creates a vectorizer. embedder may be nil, in which case
// every eligible record is skipped for lack of a credential.
func NewVectorizer(
	records driven.RecordStore,
	embedder driven.EmbeddingService,
	index *IndexHandle,
	settings settingsReader,
) *Vectorizer {
	return &Vectorizer{
		records:  records,
		embedder: embedder,
		index:    index,
		settings: settings,
	}
}

// Submit persists text for tag unconditionally and then vectorizes the
// record if it qualifies. The returned error is non-nil only when the text
// write itself failed.
func (v *Vectorizer) Submit(
	ctx context.Context,
	tag domain.Tag,
	text string,
	opts domain.VectorizeOptions,
) (domain.VectorizationResult, error) {
	settings := v.currentSettings()
	policy := settings.Vectorization.Policy()

	qualifies, err := v.records.WriteText(ctx, tag, text, policy.MinTextLength)
	if err != nil {
		return domain.VectorizationResult{Tag: tag, Outcome: domain.OutcomeSkippedIneligible, Err: err},
			fmt.Errorf("write text for %s: %w", tag, err)
	}

	if opts.Force {
		if err := v.records.ResetFlag(ctx, tag); err != nil {
			logger.Warn("vectorize %s: reset flag: %v", tag, err)
		} else {
			qualifies = policy.LongEnough(text)
		}
	}

	return v.process(ctx, tag, text, qualifies, settings), nil
}

// Vectorize evaluates a record that is already persisted, such as a freshly
// captured activity or a reconciliation candidate.
func (v *Vectorizer) Vectorize(ctx context.Context, tag domain.Tag, opts domain.VectorizeOptions) domain.VectorizationResult {
	settings := v.currentSettings()
	policy := settings.Vectorization.Policy()

	text, err := v.records.GetText(ctx, tag)
	if err != nil {
		logger.Debug("vectorize %s: read text: %v", tag, err)
		return domain.VectorizationResult{Tag: tag, Outcome: domain.OutcomeSkippedIneligible, Err: err}
	}

	if opts.Force {
		if err := v.records.ResetFlag(ctx, tag); err != nil {
			logger.Warn("vectorize %s: reset flag: %v", tag, err)
		}
	}

	vectorized, err := v.records.GetFlag(ctx, tag)
	if err != nil {
		logger.Debug("vectorize %s: read flag: %v", tag, err)
		return domain.VectorizationResult{Tag: tag, Outcome: domain.OutcomeSkippedIneligible, Err: err}
	}

	return v.process(ctx, tag, text, policy.Qualifies(text, vectorized), settings)
}

// process runs the gated embed, insert, flag sequence.
func (v *Vectorizer) process(
	ctx context.Context,
	tag domain.Tag,
	text string,
	qualifies bool,
	settings *domain.AppSettings,
) domain.VectorizationResult {
	result := domain.VectorizationResult{Tag: tag}

	switch {
	case !qualifies:
		result.Outcome = domain.OutcomeSkippedIneligible
	case !settings.Vectorization.Enabled:
		result.Outcome = domain.OutcomeSkippedDisabled
	case v.embedder == nil || !settings.Embedding.IsConfigured():
		result.Outcome = domain.OutcomeSkippedNoCredential
	}
	if result.Outcome != "" {
		logger.Debug("vectorize %s: %s", tag, result.Outcome)
		return result
	}

	// The embedding call may take a full network round trip; the index
	// lock is not held here.
	vector, err := v.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("vectorize %s: embedding failed, record stays eligible: %v", tag, err)
		result.Outcome = domain.OutcomeEmbeddingFailed
		result.Err = err
		return result
	}

	if err := v.index.Insert(ctx, tag, vector); err != nil {
		if errors.Is(err, domain.ErrIndexCorrupt) {
			logger.Error("vectorize %s: index rejected entry: %v", tag, err)
		} else {
			logger.Warn("vectorize %s: index insert failed: %v", tag, err)
		}
		result.Outcome = domain.OutcomeIndexFailed
		result.Err = err
		return result
	}

	if err := v.records.SetFlag(ctx, tag); err != nil {
		logger.Warn("vectorize %s: indexed but flag update failed, will overwrite on next qualifying edit: %v", tag, err)
		result.Outcome = domain.OutcomeFlagDrift
		result.Err = err
		return result
	}

	logger.Info("vectorize %s: indexed (%d dims)", tag, len(vector))
	result.Outcome = domain.OutcomeIndexed
	return result
}

func (v *Vectorizer) currentSettings() *domain.AppSettings {
	if v.settings != nil {
		settings, err := v.settings.Get()
		if err == nil && settings != nil {
			return settings
		}
		logger.Warn("vectorize: reading settings: %v", err)
	}
	defaults := domain.DefaultAppSettings()
	return &defaults
}
