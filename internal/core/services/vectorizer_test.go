package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestVectorizer_ThresholdIsExclusive(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome domain.VectorizationOutcome
	}{
		{"at threshold", strings.Repeat("a", domain.DefaultMinTextLength), domain.OutcomeSkippedIneligible},
		{"one over", strings.Repeat("a", domain.DefaultMinTextLength+1), domain.OutcomeIndexed},
		{"multibyte at threshold", strings.Repeat("é", domain.DefaultMinTextLength), domain.OutcomeSkippedIneligible},
		{"multibyte one over", strings.Repeat("é", domain.DefaultMinTextLength+1), domain.OutcomeIndexed},
		{"empty", "", domain.OutcomeSkippedIneligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()
			ctx := context.Background()

			doc, _, err := p.documents.Create(ctx, 0, "Doc", "seed")
			require.NoError(t, err)

			result, err := p.documents.UpdateText(ctx, doc.ID, tt.text, domain.VectorizeOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome)

			flag, err := p.store.GetFlag(ctx, doc.Tag())
			require.NoError(t, err)
			assert.Equal(t, tt.outcome == domain.OutcomeIndexed, flag)
		})
	}
}

func TestVectorizer_NoDoubleIndexing(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	doc, result, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeIndexed, result.Outcome)
	assert.True(t, doc.Vectorized)

	for _, word := range []string{"beta", "gamma", "delta"} {
		result, err = p.documents.UpdateText(ctx, doc.ID, longText(word), domain.VectorizeOptions{})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSkippedIneligible, result.Outcome)
	}

	assert.Equal(t, 1, p.embedder.calls())
	assert.Equal(t, 1, p.index.adds)

	// Text writes still land even though nothing is re-embedded.
	text, err := p.store.GetText(ctx, doc.Tag())
	require.NoError(t, err)
	assert.Equal(t, longText("delta"), text)
}

func TestVectorizer_ForceReembedsCurrentText(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	doc, _, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	result, err := p.documents.UpdateText(ctx, doc.ID, longText("omega"), domain.VectorizeOptions{Force: true})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIndexed, result.Outcome)
	assert.Equal(t, 2, p.embedder.calls())
	assert.Equal(t, 1, p.index.Len(), "re-embedding replaces the entry")
	assert.Equal(t, textVector(longText("omega"), testDims), p.index.entries[doc.Tag()])
}

func TestVectorizer_ForceWithShortTextClearsFlag(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	doc, _, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	result, err := p.documents.UpdateText(ctx, doc.ID, "tiny", domain.VectorizeOptions{Force: true})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedIneligible, result.Outcome)
	flag, err := p.store.GetFlag(ctx, doc.Tag())
	require.NoError(t, err)
	assert.False(t, flag)
}

func TestVectorizer_ReindexOnEdit(t *testing.T) {
	p := newPipeline()
	p.settings.update(func(s *domain.AppSettings) { s.Vectorization.ReindexOnEdit = true })
	ctx := context.Background()

	doc, _, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	result, err := p.documents.UpdateText(ctx, doc.ID, longText("alpha"), domain.VectorizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkippedIneligible, result.Outcome, "unchanged text is not re-embedded")

	result, err = p.documents.UpdateText(ctx, doc.ID, longText("beta"), domain.VectorizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIndexed, result.Outcome)
	assert.Equal(t, 2, p.embedder.calls())
}

func TestVectorizer_FeatureFlagOff(t *testing.T) {
	p := newPipeline()
	p.settings.update(func(s *domain.AppSettings) { s.Vectorization.Enabled = false })
	ctx := context.Background()

	doc, result, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedDisabled, result.Outcome)
	assert.False(t, doc.Vectorized)
	assert.Zero(t, p.embedder.calls())

	// Turning the flag back on picks the record up on its next qualifying write.
	p.settings.update(func(s *domain.AppSettings) { s.Vectorization.Enabled = true })
	result, err = p.documents.UpdateText(ctx, doc.ID, longText("beta"), domain.VectorizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIndexed, result.Outcome)
}

func TestVectorizer_NoCredential(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		p := newPipeline()
		p.wire(p.store.RecordStore(), nil)

		_, result, err := p.documents.Create(context.Background(), 0, "Notes", longText("alpha"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSkippedNoCredential, result.Outcome)
	})

	t.Run("key missing", func(t *testing.T) {
		p := newPipeline()
		p.settings.update(func(s *domain.AppSettings) {
			s.Embedding.Provider = domain.AIProviderOpenAI
			s.Embedding.APIKey = ""
		})

		_, result, err := p.documents.Create(context.Background(), 0, "Notes", longText("alpha"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSkippedNoCredential, result.Outcome)
		assert.Zero(t, p.embedder.calls())
	})

	t.Run("settings unreadable falls back to defaults", func(t *testing.T) {
		p := newPipeline()
		p.settings.err = errors.New("config locked")

		_, result, err := p.documents.Create(context.Background(), 0, "Notes", longText("alpha"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSkippedNoCredential, result.Outcome)
	})
}

func TestVectorizer_EmbeddingFailureRetriedByRecurrence(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()
	p.embedder.setErr(fmt.Errorf("%w: 503", domain.ErrEmbeddingTransient))

	doc, result, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err, "embedding failures never fail the write")
	assert.Equal(t, domain.OutcomeEmbeddingFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrEmbeddingTransient)
	assert.Zero(t, p.index.Len())

	flag, err := p.store.GetFlag(ctx, doc.Tag())
	require.NoError(t, err)
	assert.False(t, flag)

	p.embedder.setErr(nil)
	result, err = p.documents.UpdateText(ctx, doc.ID, longText("beta"), domain.VectorizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIndexed, result.Outcome)
	assert.True(t, p.index.has(doc.Tag()))
}

func TestVectorizer_IndexUnavailable(t *testing.T) {
	p := newPipeline()
	p.handle = NewIndexHandle(nil, "hnsw")
	p.wire(p.store.RecordStore(), p.embedder)
	ctx := context.Background()

	doc, result, err := p.documents.Create(ctx, 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIndexFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrIndexUnavailable)
	got, err := p.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, longText("alpha"), got.Text)
	assert.False(t, got.Vectorized)
}

func TestVectorizer_DimensionMismatchIsCorruption(t *testing.T) {
	p := newPipeline()
	p.index.dims = testDims * 2

	_, result, err := p.documents.Create(context.Background(), 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIndexFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrIndexCorrupt)
	assert.Zero(t, p.index.Len())
}

func TestVectorizer_FlagDrift(t *testing.T) {
	p := newPipeline()
	p.wire(&flagFailingStore{RecordStore: p.store.RecordStore(), err: errors.New("disk full")}, p.embedder)

	doc, result, err := p.documents.Create(context.Background(), 0, "Notes", longText("alpha"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeFlagDrift, result.Outcome)
	assert.True(t, p.index.has(doc.Tag()), "entry stays in the index")
	assert.False(t, doc.Vectorized)
}

func TestVectorizer_SubmitRejectsActivityText(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	rec, _, err := p.activities.Capture(ctx, domain.CaptureRequest{UserID: "u1", Text: "short"})
	require.NoError(t, err)

	_, err = p.vectorizer.Submit(ctx, rec.Tag(), longText("rewrite"), domain.VectorizeOptions{})
	assert.ErrorIs(t, err, domain.ErrImmutable)
}

func TestVectorizer_VectorizeMissingRecord(t *testing.T) {
	p := newPipeline()

	result := p.vectorizer.Vectorize(context.Background(), domain.DocumentTag(404), domain.VectorizeOptions{})

	assert.Equal(t, domain.OutcomeSkippedIneligible, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrNotFound)
}

func TestVectorizer_SameIDAcrossKinds(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	rec, _, err := p.activities.Capture(ctx, domain.CaptureRequest{UserID: "u1", Text: longText("activity")})
	require.NoError(t, err)
	doc, _, err := p.documents.Create(ctx, 0, "Notes", longText("document"))
	require.NoError(t, err)
	require.Equal(t, rec.ID, doc.ID, "ids are allocated per table")

	assert.Equal(t, 2, p.index.Len())
	assert.True(t, p.index.has(domain.ActivityTag(rec.ID)))
	assert.True(t, p.index.has(domain.DocumentTag(doc.ID)))
}
