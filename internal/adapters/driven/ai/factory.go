// Package ai provides factory functions for creating embedding services and
// the vector index they feed.
package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding"
	geminiembed "github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/gemini"
	hashembed "github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/vector/hnsw"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// IndexDirName is the directory under the data dir holding the hnsw file.
const IndexDirName = "index"

// InitResult contains the result of embedding and index initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	VectorIndex      driven.VectorIndex
	Warnings         []string // Non-fatal issues that left a component unavailable.
}

// Close releases all resources held by InitResult. The vector index is
// normally owned by the index handle and closed there instead.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
}

// Initialise builds the embedding client and vector index from settings.
// Neither failure is fatal: the component is left nil and a warning is
// recorded, so records are still stored and vectorization resumes once
// the problem is fixed.
func Initialise(ctx context.Context, settings *domain.AppSettings, dataDir string) *InitResult {
	result := &InitResult{}

	svc, err := CreateEmbeddingService(ctx, &settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding disabled: %v", err))
	case svc != nil:
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		if perr := svc.Ping(pctx); perr != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("embedding provider unreachable: %v", perr))
		}
		cancel()
		result.EmbeddingService = svc
	}

	dims := settings.Embedding.ResolvedDimensions()
	if result.EmbeddingService != nil && result.EmbeddingService.Dimensions() > 0 {
		dims = result.EmbeddingService.Dimensions()
	}

	index, err := CreateVectorIndex(ctx, &settings.VectorIndex, dataDir, dims)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("vector index unavailable: %v", err))
	}
	result.VectorIndex = index

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil, nil when no provider is configured.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'recall settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'recall settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service from settings and pings it once.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pctx)
}

// CreateEmbeddingService creates the provider named in settings, wrapped in
// the retrying embedding.Client. Returns nil if no provider is configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		inner driven.EmbeddingService
		err   error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.ResolvedDimensions(),
		})

	case domain.AIProviderOpenAI:
		inner, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini:
		inner, err = geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderHash:
		inner = hashembed.NewEmbeddingService(settings.ResolvedDimensions())

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return embedding.NewClient(inner, embedding.Options{
		MaxAttempts:       settings.MaxRetries,
		Timeout:           settings.Timeout,
		RequestsPerMinute: settings.RequestsPerMinute,
	}), nil
}

// CreateVectorIndex opens the configured backend. The hnsw file lives in
// dataDir/index; qdrant requires a known dimension.
func CreateVectorIndex(ctx context.Context, settings *domain.VectorIndexSettings,
	dataDir string, dimensions int) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.VectorBackendHNSW, "":
		return hnsw.Open(filepath.Join(dataDir, IndexDirName), dimensions)

	case domain.VectorBackendQdrant:
		if dimensions <= 0 {
			return nil, fmt.Errorf("qdrant needs embedding.dimensions for an unknown model: %w",
				domain.ErrInvalidInput)
		}
		return qdrant.New(ctx, qdrant.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			Collection: settings.Collection,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported vector backend %q: %w", settings.Backend, domain.ErrInvalidInput)
	}
}
