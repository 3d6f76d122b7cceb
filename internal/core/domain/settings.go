package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderHash is the offline feature-hashing embedder.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// IsLocal returns true if this provider runs without a remote service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderHash:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the credential for cloud providers.
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int

	// Timeout bounds a single embedding attempt.
	Timeout time.Duration

	// MaxRetries is the total number of attempts made for a request that
	// keeps failing transiently, the first included.
	MaxRetries int

	// RequestsPerMinute throttles outgoing embedding calls.
	RequestsPerMinute int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ResolvedDimensions returns the configured dimension override or the
// known size of the model, or zero if neither is known.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}

// VectorizationSettings controls when records are embedded.
type VectorizationSettings struct {
	// Enabled is the global feature flag. A missing config key means enabled.
	Enabled bool

	// MinTextLength is the exclusive character threshold.
	MinTextLength int

	// ReindexOnEdit resets the vectorized flag whenever a document's text changes.
	ReindexOnEdit bool
}

// Policy returns the trigger policy for these settings.
func (v VectorizationSettings) Policy() VectorizationPolicy {
	return VectorizationPolicy{Enabled: v.Enabled, MinTextLength: v.MinTextLength}
}

// VectorBackend selects the ANN index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendHNSW is the embedded on-disk HNSW graph.
	VectorBackendHNSW VectorBackend = "hnsw"

	// VectorBackendQdrant is a remote Qdrant collection.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendHNSW || b == VectorBackendQdrant
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// QdrantHost and QdrantPort locate the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Collection is the Qdrant collection name.
	Collection string
}

// CaptureSettings holds defaults for the capture trigger.
type CaptureSettings struct {
	// DefaultInterval is used when a capture omits its interval, in seconds.
	DefaultInterval int

	// UserID is used when a capture omits its user.
	UserID string

	// InboxDir is watched for capture drops by 'recall serve'.
	InboxDir string
}

// SchedulerSettings controls background maintenance tasks.
type SchedulerSettings struct {
	// ReconcileEnabled turns on the periodic retry of eligible, unvectorized records.
	ReconcileEnabled bool

	// ReconcileInterval is how often reconciliation runs.
	ReconcileInterval time.Duration

	// FlushInterval is how often the index is flushed to disk.
	FlushInterval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Vectorization VectorizationSettings
	Embedding     EmbeddingSettings
	VectorIndex   VectorIndexSettings
	Capture       CaptureSettings
	Scheduler     SchedulerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured; without it nothing is vectorized.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Vectorization: VectorizationSettings{
			Enabled:       true,
			MinTextLength: DefaultMinTextLength,
		},
		Embedding: EmbeddingSettings{
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RequestsPerMinute: 60,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendHNSW,
			QdrantHost: "localhost",
			QdrantPort: 6334,
			Collection: "recall",
		},
		Capture: CaptureSettings{
			DefaultInterval: 20,
		},
		Scheduler: SchedulerSettings{
			ReconcileEnabled:  false,
			ReconcileInterval: 30 * time.Minute,
			FlushInterval:     5 * time.Minute,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderGemini,
		AIProviderHash,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
		AIProviderHash:   "hash-256",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004":   768,
		"gemini-embedding-001": 3072,
		// Offline
		"hash-256": 256,
	}
}
