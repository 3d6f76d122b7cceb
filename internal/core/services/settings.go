package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyVecEnabled        = "vectorization.enabled"
	keyVecMinLength      = "vectorization.min_text_length"
	keyVecReindexOnEdit  = "vectorization.reindex_on_edit"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDims         = "embedding.dimensions"
	keyEmbedTimeout      = "embedding.timeout_seconds"
	keyEmbedMaxRetries   = "embedding.max_retries"
	keyEmbedRPM          = "embedding.requests_per_minute"
	keyIndexBackend      = "vector_index.backend"
	keyIndexQdrantHost   = "vector_index.qdrant_host"
	keyIndexQdrantPort   = "vector_index.qdrant_port"
	keyIndexCollection   = "vector_index.collection"
	keyCaptureInterval   = "capture.default_interval"
	keyCaptureUserID     = "capture.user_id"
	keyCaptureInboxDir   = "capture.inbox_dir"
	keySchedReconcile    = "scheduler.reconcile_enabled"
	keySchedReconcileMin = "scheduler.reconcile_interval_minutes"
	keySchedFlushMin     = "scheduler.flush_interval_minutes"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Vectorization: domain.VectorizationSettings{
			Enabled:       s.getBool(keyVecEnabled, defaults.Vectorization.Enabled),
			MinTextLength: s.getInt(keyVecMinLength, defaults.Vectorization.MinTextLength),
			ReindexOnEdit: s.getBool(keyVecReindexOnEdit, defaults.Vectorization.ReindexOnEdit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			Timeout:           s.getSeconds(keyEmbedTimeout, defaults.Embedding.Timeout),
			MaxRetries:        s.getInt(keyEmbedMaxRetries, defaults.Embedding.MaxRetries),
			RequestsPerMinute: s.getInt(keyEmbedRPM, defaults.Embedding.RequestsPerMinute),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getBackend(defaults.VectorIndex.Backend),
			QdrantHost: s.getString(keyIndexQdrantHost, defaults.VectorIndex.QdrantHost),
			QdrantPort: s.getInt(keyIndexQdrantPort, defaults.VectorIndex.QdrantPort),
			Collection: s.getString(keyIndexCollection, defaults.VectorIndex.Collection),
		},
		Capture: domain.CaptureSettings{
			DefaultInterval: s.getInt(keyCaptureInterval, defaults.Capture.DefaultInterval),
			UserID:          s.configStore.GetString(keyCaptureUserID),
			InboxDir:        s.configStore.GetString(keyCaptureInboxDir),
		},
		Scheduler: domain.SchedulerSettings{
			ReconcileEnabled:  s.getBool(keySchedReconcile, defaults.Scheduler.ReconcileEnabled),
			ReconcileInterval: s.getMinutes(keySchedReconcileMin, defaults.Scheduler.ReconcileInterval),
			FlushInterval:     s.getMinutes(keySchedFlushMin, defaults.Scheduler.FlushInterval),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyVecEnabled, settings.Vectorization.Enabled},
		{keyVecMinLength, settings.Vectorization.MinTextLength},
		{keyVecReindexOnEdit, settings.Vectorization.ReindexOnEdit},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedTimeout, int(settings.Embedding.Timeout / time.Second)},
		{keyEmbedMaxRetries, settings.Embedding.MaxRetries},
		{keyEmbedRPM, settings.Embedding.RequestsPerMinute},
		{keyIndexBackend, settings.VectorIndex.Backend.String()},
		{keyIndexQdrantHost, settings.VectorIndex.QdrantHost},
		{keyIndexQdrantPort, settings.VectorIndex.QdrantPort},
		{keyIndexCollection, settings.VectorIndex.Collection},
		{keyCaptureInterval, settings.Capture.DefaultInterval},
		{keyCaptureUserID, settings.Capture.UserID},
		{keyCaptureInboxDir, settings.Capture.InboxDir},
		{keySchedReconcile, settings.Scheduler.ReconcileEnabled},
		{keySchedReconcileMin, int(settings.Scheduler.ReconcileInterval / time.Minute)},
		{keySchedFlushMin, int(settings.Scheduler.FlushInterval / time.Minute)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// An empty key never overwrites a stored one, so it can live in the environment.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

// SetVectorization updates the feature flag and length threshold.
func (s *SettingsService) SetVectorization(enabled bool, minTextLength int) error {
	if minTextLength < 0 {
		return fmt.Errorf("%w: min text length must not be negative", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyVecEnabled, enabled); err != nil {
		return fmt.Errorf("save %s: %w", keyVecEnabled, err)
	}
	if err := s.configStore.Set(keyVecMinLength, minTextLength); err != nil {
		return fmt.Errorf("save %s: %w", keyVecMinLength, err)
	}
	return nil
}

// valueKind is the type a config key holds.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindProvider
	kindBackend
)

// settableKeys lists every key Set accepts.
var settableKeys = map[string]valueKind{
	keyVecEnabled:        kindBool,
	keyVecMinLength:      kindInt,
	keyVecReindexOnEdit:  kindBool,
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDims:         kindInt,
	keyEmbedTimeout:      kindInt,
	keyEmbedMaxRetries:   kindInt,
	keyEmbedRPM:          kindInt,
	keyIndexBackend:      kindBackend,
	keyIndexQdrantHost:   kindString,
	keyIndexQdrantPort:   kindInt,
	keyIndexCollection:   kindString,
	keyCaptureInterval:   kindInt,
	keyCaptureUserID:     kindString,
	keyCaptureInboxDir:   kindString,
	keySchedReconcile:    kindBool,
	keySchedReconcileMin: kindInt,
	keySchedFlushMin:     kindInt,
}

// SettableKeys returns the config keys Set accepts, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set parses value for a known key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var typed any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
		}
		typed = value
	case kindBackend:
		if !domain.VectorBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, value)
		}
		typed = value
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Minute
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
