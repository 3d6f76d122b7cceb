package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/recall-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/services"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

const (
	defaultDirName = ".recall"
	dbDirName      = "data"
	inboxDirName   = "inbox"

	// closeTimeout bounds the wait for in-flight index writes at shutdown.
	closeTimeout = 30 * time.Second
)

func resolveDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if env := os.Getenv("RECALL_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}

// bootstrap wires the driven adapters into the core services. The returned
// closer flushes the index and releases the embedder and database.
func bootstrap(ctx context.Context, dataDir string) (*cli.Services, func() error, error) {
	dir, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dir, dbDirName))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("database: %s", store.Path())

	initResult := ai.Initialise(ctx, settings, dir)
	for _, w := range initResult.Warnings {
		logger.Warn("%s", w)
	}
	embedder := initResult.EmbeddingService

	backend := settings.VectorIndex.Backend
	if backend == "" {
		backend = domain.VectorBackendHNSW
	}
	handle := services.NewIndexHandle(initResult.VectorIndex, string(backend))

	records := store.RecordStore()
	vectorizer := services.NewVectorizer(records, embedder, handle, settingsService)
	reconciler := services.NewReconciler(records, vectorizer, settingsService)
	indexService := services.NewIndexService(handle, reconciler)

	inbox := settings.Capture.InboxDir
	if inbox == "" {
		inbox = filepath.Join(dir, inboxDirName)
	}

	svc := &cli.Services{
		Activity:  services.NewActivityService(store.ActivityStore(), vectorizer, handle, settingsService),
		Document:  services.NewDocumentService(store.DocumentStore(), store.ProjectStore(), vectorizer, handle, settingsService),
		Project:   services.NewProjectService(store.ProjectStore(), store.DocumentStore(), store.ActivityStore(), vectorizer, handle),
		Retrieval: services.NewRetrievalService(records, embedder, handle),
		Settings:  settingsService,
		Index:     indexService,
		Scheduler: services.NewScheduler(domain.SchedulerConfigFrom(settings.Scheduler), store.SchedulerStore(), indexService),
		InboxDir:  inbox,
	}

	closer := func() error {
		var errs []error
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := handle.Close(closeCtx); err != nil {
			errs = append(errs, err)
		}
		if embedder != nil {
			if err := embedder.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing embedder: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
		return errors.Join(errs...)
	}

	return svc, closer, nil
}
