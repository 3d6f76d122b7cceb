package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrImmutable", ErrImmutable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrEmbeddingTransient", ErrEmbeddingTransient},
		{"ErrEmbeddingTerminal", ErrEmbeddingTerminal},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrIndexCorrupt", ErrIndexCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestEmbeddingErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEmbeddingTransient, ErrEmbeddingTerminal))
	assert.False(t, errors.Is(ErrEmbeddingTerminal, ErrEmbeddingTransient))
}

func TestErrors_WrappedTwice(t *testing.T) {
	err := fmt.Errorf("openai: status 429: %w: %w", ErrRateLimited, ErrEmbeddingTransient)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, ErrEmbeddingTransient)
	assert.NotErrorIs(t, err, ErrEmbeddingTerminal)
}

func TestIndexErrors_AreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("%w: dimension 3, want 4", ErrIndexCorrupt)

	assert.ErrorIs(t, wrapped, ErrIndexCorrupt)
	assert.NotErrorIs(t, wrapped, ErrIndexUnavailable)
}
