package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Reconciliation defaults.
const (
	defaultReconcileBatch       = 100
	defaultReconcileParallelism = 4
)

// Reconciler retries vectorization for records that are eligible but were
// never indexed, typically because their single qualifying write hit an
// embedding failure. It is an opt-in alternative to retry-by-recurrence.
type Reconciler struct {
	records     driven.RecordStore
	vectorizer  driving.Vectorizer
	settings    settingsReader
	batchSize   int
	parallelism int
}

// NewReconciler creates a reconciler.
func NewReconciler(records driven.RecordStore, vectorizer driving.Vectorizer, settings settingsReader) *Reconciler {
	return &Reconciler{
		records:     records,
		vectorizer:  vectorizer,
		settings:    settings,
		batchSize:   defaultReconcileBatch,
		parallelism: defaultReconcileParallelism,
	}
}

// Run scans one batch of candidates and returns how many were indexed.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	policy := domain.DefaultAppSettings().Vectorization.Policy()
	if r.settings != nil {
		if settings, err := r.settings.Get(); err == nil {
			policy = settings.Vectorization.Policy()
		}
	}
	if !policy.Enabled {
		logger.Debug("Reconcile: vectorization disabled")
		return 0, nil
	}

	tags, err := r.records.ListUnvectorized(ctx, policy.MinTextLength, r.batchSize)
	if err != nil {
		return 0, err
	}
	logger.Debug("Reconcile: %d candidates", len(tags))

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for _, tag := range tags {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := r.vectorizer.Vectorize(gctx, tag, domain.VectorizeOptions{})
			if result.Outcome == domain.OutcomeIndexed {
				indexed.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()

	n := int(indexed.Load())
	if n > 0 {
		logger.Info("Reconcile: indexed %d of %d candidates", n, len(tags))
	}
	return n, err
}
