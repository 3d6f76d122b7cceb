// Package inbox turns JSON capture drops in a directory into activities.
//
// An external capture scheduler writes one file per capture:
//
//	{"user_id": "u1", "text": "...", "window_title": "...", "interval_length": 20}
//
// Processed files are removed. Files that cannot be decoded, or that the
// activity service rejects as invalid, are renamed with a .rejected suffix.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

const (
	// DropExt is the extension of capture drop files.
	DropExt = ".json"

	// RejectedExt is appended to drops that could not be captured.
	RejectedExt = ".rejected"

	// DefaultSettle is how long a drop must be quiet before it is read.
	DefaultSettle = 250 * time.Millisecond
)

// Watcher watches an inbox directory for capture drops.
type Watcher struct {
	dir        string
	activities driving.ActivityService
	settle     time.Duration
}

// New creates a watcher for dir. Drops are handed to activities.
func New(dir string, activities driving.ActivityService) *Watcher {
	return &Watcher{
		dir:        dir,
		activities: activities,
		settle:     DefaultSettle,
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run processes any drops already present, then watches for new ones.
// It blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("inbox: creating %s: %w", w.dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("inbox: watching %s: %w", w.dir, err)
	}
	logger.Info("inbox: watching %s", w.dir)

	w.drainBacklog(ctx)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isDrop(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[event.Name] = time.Now()
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(pending, event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox: watcher error: %v", err)

		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.settle {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

// ProcessFile captures a single drop and removes or rejects it.
// A store failure leaves the file in place so it is retried on the next run.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading drop: %w", err)
	}

	var req domain.CaptureRequest
	if err := json.Unmarshal(data, &req); err != nil {
		reject(path)
		return fmt.Errorf("%w: decoding %s: %w", domain.ErrInvalidInput, filepath.Base(path), err)
	}

	record, result, err := w.activities.Capture(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			reject(path)
		}
		return err
	}
	logger.Debug("inbox: %s captured as activity %d (%s)", filepath.Base(path), record.ID, result.Outcome)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing drop: %w", err)
	}
	return nil
}

func (w *Watcher) process(ctx context.Context, path string) {
	if err := w.ProcessFile(ctx, path); err != nil {
		logger.Warn("inbox: %v", err)
	}
}

// drainBacklog processes drops in name order.
func (w *Watcher) drainBacklog(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("inbox: listing %s: %v", w.dir, err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isDrop(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, filepath.Join(w.dir, name))
	}
}

func isDrop(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, DropExt) && !strings.HasPrefix(base, ".")
}

func reject(path string) {
	if err := os.Rename(path, path+RejectedExt); err != nil {
		logger.Warn("inbox: rejecting %s: %v", filepath.Base(path), err)
	}
}
