package qdrant

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestNew_RequiresDimensions(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPointID_StablePerTag(t *testing.T) {
	a := pointID(domain.ActivityTag(7))
	assert.Equal(t, a, pointID(domain.ActivityTag(7)))
	assert.NotEqual(t, a, pointID(domain.DocumentTag(7)), "kinds never collide")
	assert.Len(t, a, 36)
}

func TestHitFromPayload(t *testing.T) {
	payload := qdrant.NewValueMap(payloadFor(domain.DocumentTag(12), 99))

	h, err := hitFromPayload(payload, 0.5)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTag(12), h.hit.Tag)
	assert.InDelta(t, 0.5, h.hit.Score, 1e-6)
	assert.Equal(t, int64(99), h.seq)

	_, err = hitFromPayload(map[string]*qdrant.Value{}, 0.1)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestOrderHits(t *testing.T) {
	hits := orderHits([]scoredHit{
		{hit: domain.IndexHit{Tag: domain.ActivityTag(1), Score: 0.5}, seq: 3},
		{hit: domain.IndexHit{Tag: domain.ActivityTag(2), Score: 0.9}, seq: 9},
		{hit: domain.IndexHit{Tag: domain.DocumentTag(3), Score: 0.5}, seq: 1},
	})

	require.Len(t, hits, 3)
	assert.Equal(t, domain.ActivityTag(2), hits[0].Tag)
	assert.Equal(t, domain.DocumentTag(3), hits[1].Tag)
	assert.Equal(t, domain.ActivityTag(1), hits[2].Tag)
}
