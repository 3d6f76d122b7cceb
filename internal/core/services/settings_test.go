package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.False(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("vectorization.enabled", false)
	_ = store.Set("vectorization.min_text_length", 50)
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("embedding.api_key", "sk-test")
	_ = store.Set("embedding.timeout_seconds", 5)
	_ = store.Set("vector_index.backend", "qdrant")
	_ = store.Set("capture.user_id", "alice")
	_ = store.Set("scheduler.reconcile_enabled", true)
	_ = store.Set("scheduler.flush_interval_minutes", 0)

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.False(t, settings.Vectorization.Enabled)
	assert.Equal(t, 50, settings.Vectorization.MinTextLength)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 5*time.Second, settings.Embedding.Timeout)
	assert.Equal(t, 3072, settings.Embedding.ResolvedDimensions())
	assert.Equal(t, domain.VectorBackendQdrant, settings.VectorIndex.Backend)
	assert.Equal(t, "alice", settings.Capture.UserID)
	assert.True(t, settings.Scheduler.ReconcileEnabled)
	assert.Zero(t, settings.Scheduler.FlushInterval, "zero disables the flush task")
}

func TestSettingsService_Get_MissingFlagMeansEnabled(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "hash")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.True(t, settings.Vectorization.Enabled)
	assert.Equal(t, "hash-256", settings.Embedding.Model, "model defaults per provider")
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("vector_index.backend", "faiss")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.VectorIndex.Backend, settings.VectorIndex.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Vectorization.ReindexOnEdit = true
	settings.Embedding.Provider = domain.AIProviderOllama
	settings.Embedding.Model = "all-minilm"
	settings.Embedding.BaseURL = "http://gpu:11434"
	settings.Capture.InboxDir = "/var/spool/recall"
	settings.Scheduler.ReconcileInterval = 10 * time.Minute

	require.NoError(t, service.Save(&settings))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_EmptyAPIKeyKeepsStored(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.api_key", "sk-existing")
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "sk-existing", store.GetString("embedding.api_key"))
}

func TestSettingsService_Save_StoreError(t *testing.T) {
	store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: "embedding.model"}
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	err := service.Save(&settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.model")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		model    string
		apiKey   string
		wantURL  string
		wantDims int
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", "http://localhost:11434", 768},
		{"openai", domain.AIProviderOpenAI, "text-embedding-3-small", "sk-test", "", 1536},
		{"gemini", domain.AIProviderGemini, "", "AIza-test", "", 768},
		{"hash", domain.AIProviderHash, "", "", "", 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantURL, settings.Embedding.BaseURL)
			assert.Equal(t, tt.wantDims, settings.Embedding.ResolvedDimensions())
			assert.True(t, settings.Embedding.IsConfigured())
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_PreservesOllamaBaseURL(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.base_url", "http://gpu:11434")
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
}

func TestSettingsService_SetEmbeddingProvider_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.ErrorIs(t, service.SetEmbeddingProvider("anthropic", "", "key"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetVectorization(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetVectorization(false, 80))
	assert.ErrorIs(t, service.SetVectorization(true, -1), domain.ErrInvalidInput)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.False(t, settings.Vectorization.Enabled)
	assert.Equal(t, 80, settings.Vectorization.MinTextLength)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{"vectorization.enabled", "false", func(t *testing.T, s *domain.AppSettings) {
			assert.False(t, s.Vectorization.Enabled)
		}},
		{"vectorization.min_text_length", " 120 ", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 120, s.Vectorization.MinTextLength)
		}},
		{"embedding.provider", "gemini", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderGemini, s.Embedding.Provider)
		}},
		{"vector_index.backend", "qdrant", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.VectorBackendQdrant, s.VectorIndex.Backend)
		}},
		{"capture.inbox_dir", "/tmp/drops", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, "/tmp/drops", s.Capture.InboxDir)
		}},
		{"scheduler.reconcile_interval_minutes", "15", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 15*time.Minute, s.Scheduler.ReconcileInterval)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	tests := []struct{ key, value string }{
		{"search.mode", "hybrid"},
		{"vectorization.enabled", "maybe"},
		{"vectorization.min_text_length", "-5"},
		{"embedding.max_retries", "three"},
		{"embedding.provider", "anthropic"},
		{"vector_index.backend", "faiss"},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput, tt.key)
	}
}

func TestSettableKeys(t *testing.T) {
	keys := SettableKeys()

	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "vectorization.enabled")
	assert.Contains(t, keys, "embedding.api_key")
	assert.Len(t, keys, len(settableKeys))
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	t.Run("nil validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
	})

	t.Run("delegates current settings", func(t *testing.T) {
		validator := &mockAIConfigValidator{embedErr: domain.ErrAuthInvalid}
		service := NewSettingsService(memory.NewConfigStore(), validator)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-bad"))

		assert.ErrorIs(t, service.ValidateEmbeddingConfig(), domain.ErrAuthInvalid)
		require.NotNil(t, validator.got)
		assert.Equal(t, "sk-bad", validator.got.APIKey)
	})
}

type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if f.failOn == "" || key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

type mockAIConfigValidator struct {
	embedErr error
	got      *domain.EmbeddingSettings
}

func (m *mockAIConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.got = cfg
	return m.embedErr
}
