package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// errHandleReleased is returned when a scoped handle is used after Release.
var errHandleReleased = errors.New("index handle already released")

// IndexHandle owns the single vector index shared by activities and documents.
// It is constructed once by the composition root and passed to every service
// that reads or writes the index.
//
// Every call, reads included, is serialised behind one exclusive lock.
// The lock is a one-slot channel so waiting callers can give up when their
// context is cancelled.
type IndexHandle struct {
	sem     chan struct{}
	index   driven.VectorIndex
	backend string
}

// NewIndexHandle wraps index. A nil index produces a handle that reports
// domain.ErrIndexUnavailable, which is how a failed startup initialisation
// is represented.
func NewIndexHandle(index driven.VectorIndex, backend string) *IndexHandle {
	return &IndexHandle{
		sem:     make(chan struct{}, 1),
		index:   index,
		backend: backend,
	}
}

// ScopedHandle grants exclusive write access until Release is called.
type ScopedHandle struct {
	h    *IndexHandle
	once sync.Once
	done bool
}

// AcquireForWrite blocks until exclusive access is granted or ctx is done.
// The caller must call Release; WithWrite does this automatically.
func (h *IndexHandle) AcquireForWrite(ctx context.Context) (*ScopedHandle, error) {
	if err := h.acquire(ctx); err != nil {
		return nil, err
	}
	return &ScopedHandle{h: h}, nil
}

// WithWrite runs fn with exclusive access. The lock is released on every
// exit path, including a panic inside fn.
func (h *IndexHandle) WithWrite(ctx context.Context, fn func(*ScopedHandle) error) error {
	scoped, err := h.AcquireForWrite(ctx)
	if err != nil {
		return err
	}
	defer scoped.Release()
	return fn(scoped)
}

// Insert adds or replaces the entry for tag.
func (s *ScopedHandle) Insert(ctx context.Context, tag domain.Tag, vector []float32) error {
	if s.done {
		return errHandleReleased
	}
	return s.h.insert(ctx, tag, vector)
}

// Delete removes the entry for tag.
func (s *ScopedHandle) Delete(ctx context.Context, tag domain.Tag) error {
	if s.done {
		return errHandleReleased
	}
	if s.h.index == nil {
		return domain.ErrIndexUnavailable
	}
	return s.h.index.Delete(ctx, tag)
}

// Release gives up exclusive access. Calling it more than once is safe.
func (s *ScopedHandle) Release() {
	s.once.Do(func() {
		s.done = true
		s.h.release()
	})
}

// Insert acquires the handle and adds or replaces the entry for tag.
func (h *IndexHandle) Insert(ctx context.Context, tag domain.Tag, vector []float32) error {
	return h.WithWrite(ctx, func(s *ScopedHandle) error {
		return s.Insert(ctx, tag, vector)
	})
}

// Delete acquires the handle and removes the entry for tag.
func (h *IndexHandle) Delete(ctx context.Context, tag domain.Tag) error {
	return h.WithWrite(ctx, func(s *ScopedHandle) error {
		return s.Delete(ctx, tag)
	})
}

// Search returns up to k entries nearest to query, most similar first.
// An empty index yields no hits and no error.
func (h *IndexHandle) Search(ctx context.Context, query []float32, k int) ([]domain.IndexHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := h.acquire(ctx); err != nil {
		return nil, err
	}
	defer h.release()

	if h.index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if h.index.Len() == 0 {
		return nil, nil
	}
	if err := checkDimensions(h.index, query); err != nil {
		return nil, err
	}
	if isZero(query) {
		return nil, nil
	}
	return h.index.Search(ctx, query, k)
}

// Available reports whether an index was initialised. It reports false
// when ctx is done before the handle could be acquired.
func (h *IndexHandle) Available(ctx context.Context) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()
	return h.index != nil
}

// Len returns the number of entries, or zero when unavailable or when ctx
// is done before the handle could be acquired.
func (h *IndexHandle) Len(ctx context.Context) int {
	if err := h.acquire(ctx); err != nil {
		return 0
	}
	defer h.release()
	if h.index == nil {
		return 0
	}
	return h.index.Len()
}

// Stats describes the index.
func (h *IndexHandle) Stats(ctx context.Context) domain.IndexStats {
	stats := domain.IndexStats{Backend: h.backend}
	if err := h.acquire(ctx); err != nil {
		return stats
	}
	defer h.release()
	if h.index == nil {
		return stats
	}
	stats.Available = true
	stats.Entries = h.index.Len()
	stats.Dimensions = h.index.Dimensions()
	return stats
}

// Flush persists buffered index state.
func (h *IndexHandle) Flush(ctx context.Context) error {
	return h.WithWrite(ctx, func(_ *ScopedHandle) error {
		if h.index == nil {
			return nil
		}
		return h.index.Flush(ctx)
	})
}

// Close flushes and releases the index. Afterwards the handle behaves as
// unavailable. Closing twice is safe.
func (h *IndexHandle) Close(ctx context.Context) error {
	if err := h.acquire(ctx); err != nil {
		return fmt.Errorf("closing vector index: %w", err)
	}
	defer h.release()
	if h.index == nil {
		return nil
	}
	err := h.index.Close()
	h.index = nil
	if err != nil {
		return fmt.Errorf("closing vector index: %w", err)
	}
	logger.Debug("index handle closed")
	return nil
}

func (h *IndexHandle) insert(ctx context.Context, tag domain.Tag, vector []float32) error {
	if h.index == nil {
		return domain.ErrIndexUnavailable
	}
	if !tag.IsValid() {
		return fmt.Errorf("%w: tag %s", domain.ErrInvalidInput, tag)
	}
	if err := checkDimensions(h.index, vector); err != nil {
		return err
	}
	if isZero(vector) {
		return fmt.Errorf("%w: zero vector for %s", domain.ErrIndexCorrupt, tag)
	}
	return h.index.Add(ctx, tag, vector)
}

func (h *IndexHandle) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *IndexHandle) release() {
	<-h.sem
}

// checkDimensions rejects vectors the index was not initialised for.
func checkDimensions(index driven.VectorIndex, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrIndexCorrupt)
	}
	if dims := index.Dimensions(); dims > 0 && len(vector) != dims {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			domain.ErrIndexCorrupt, len(vector), dims)
	}
	return nil
}

// isZero reports whether vector has no direction to compare by.
func isZero(vector []float32) bool {
	for _, x := range vector {
		if x != 0 {
			return false
		}
	}
	return true
}
