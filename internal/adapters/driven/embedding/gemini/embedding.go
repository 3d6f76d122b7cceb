// Package gemini provides an embedding service adapter for the Gemini API
// through google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const provider = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "text-embedding-004"

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model to use.
	Model string

	// Dimensions requests a reduced output size when set.
	Dimensions int
}

// models is the slice of *genai.Models this adapter uses.
type models interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// EmbeddingService generates embeddings using the Gemini API.
type EmbeddingService struct {
	models     models
	model      string
	dimensions int
	reduce     bool
}

// NewEmbeddingService creates a Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required: %w", domain.ErrAuthInvalid)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return newWithModels(client.Models, cfg), nil
}

func newWithModels(m models, cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	return &EmbeddingService{
		models:     m,
		model:      cfg.Model,
		dimensions: dimensions,
		reduce:     cfg.Dimensions > 0,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds each text as its own content in a single call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{}
	if s.reduce {
		cfg.OutputDimensionality = genai.Ptr(int32(s.dimensions))
	}

	resp, err := s.models.EmbedContent(ctx, s.model, contents, cfg)
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, embedding.Terminal(provider, errors.New("embedding count does not match input"))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, embedding.Terminal(provider, fmt.Errorf("empty embedding for input %d", i))
		}
		out[i] = e.Values
	}
	if s.dimensions == 0 {
		s.dimensions = len(out[0])
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short test string.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (s *EmbeddingService) Close() error {
	return nil
}

// classify maps genai errors onto the shared status classification.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &embedding.StatusError{
			Provider:   provider,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &embedding.StatusError{
			Provider:   provider,
			StatusCode: apiErrPtr.Code,
			Message:    apiErrPtr.Message,
		}
	}
	// Anything else is transport-level.
	return embedding.Transient(provider, err)
}
