package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall-cli/internal/adapters/driven/vector/hnsw"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

const (
	invoiceText = "Reconciling the March vendor invoices against purchase orders in the finance " +
		"spreadsheet, flagging two duplicate payments to the cloud hosting provider and " +
		"drafting a note to accounts payable about the missing receipt for the conference booking."
	hiringText = "Reviewing candidate portfolios for the senior designer role, scheduling the second " +
		"round interviews with the product team and writing feedback on the take-home exercise " +
		"submitted by the final applicant from the referral programme."
)

func TestPipeline_CaptureEditRetrieve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	embedder := hash.NewEmbeddingService(256)
	index, err := hnsw.Open(dir, embedder.Dimensions())
	require.NoError(t, err)
	handle := NewIndexHandle(index, "hnsw")

	store := memory.NewStore()
	settings := newStubSettings()
	vectorizer := NewVectorizer(store.RecordStore(), embedder, handle, settings)
	activities := NewActivityService(store.ActivityStore(), vectorizer, handle, settings)
	documents := NewDocumentService(store.DocumentStore(), store.ProjectStore(), vectorizer, handle, settings)
	retrieval := NewRetrievalService(store.RecordStore(), embedder, handle)

	require.Greater(t, len(invoiceText), domain.DefaultMinTextLength)
	require.Greater(t, len(hiringText), domain.DefaultMinTextLength)

	act, result, err := activities.Capture(ctx, domain.CaptureRequest{UserID: "u1", Text: invoiceText})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeIndexed, result.Outcome)

	doc, result, err := documents.Create(ctx, 0, "Hiring", "")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSkippedIneligible, result.Outcome)

	result, err = documents.UpdateText(ctx, doc.ID, hiringText, domain.VectorizeOptions{})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeIndexed, result.Outcome)

	items, err := retrieval.Retrieve(ctx, "duplicate invoices and payments", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.RecordKindActivity, items[0].Kind)
	assert.Equal(t, act.ID, items[0].ID)

	items, err = retrieval.Retrieve(ctx, "designer candidate interviews", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.RecordKindDocument, items[0].Kind)
	assert.Equal(t, doc.ID, items[0].ID)

	// Close flushes to disk; a reopened index serves the same entries.
	require.NoError(t, handle.Close(ctx))
	reopened, err := hnsw.Open(dir, embedder.Dimensions())
	require.NoError(t, err)
	handle = NewIndexHandle(reopened, "hnsw")
	defer handle.Close(ctx)
	retrieval = NewRetrievalService(store.RecordStore(), embedder, handle)

	assert.Equal(t, 2, handle.Len(ctx))
	items, err = retrieval.Retrieve(ctx, "duplicate invoices and payments", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, act.ID, items[0].ID)
}

func TestPipeline_DeleteAndReplaceWithFileIndex(t *testing.T) {
	ctx := context.Background()

	embedder := hash.NewEmbeddingService(256)
	index, err := hnsw.Open(t.TempDir(), embedder.Dimensions())
	require.NoError(t, err)
	handle := NewIndexHandle(index, "hnsw")
	defer handle.Close(ctx)

	store := memory.NewStore()
	settings := newStubSettings()
	vectorizer := NewVectorizer(store.RecordStore(), embedder, handle, settings)
	documents := NewDocumentService(store.DocumentStore(), store.ProjectStore(), vectorizer, handle, settings)
	retrieval := NewRetrievalService(store.RecordStore(), embedder, handle)

	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	ids := make([]int64, len(words))
	for i, w := range words {
		doc, result, err := documents.Create(ctx, 0, w, longText(w))
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeIndexed, result.Outcome)
		ids[i] = doc.ID
	}

	for i := 0; i < len(ids); i += 2 {
		require.NoError(t, documents.Delete(ctx, ids[i]))
	}
	assert.Equal(t, len(words)/2, handle.Len(ctx))

	doc, result, err := documents.Create(ctx, 0, "kilo", longText("kilo"))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeIndexed, result.Outcome)

	result, err = documents.UpdateText(ctx, ids[1], longText("lima"), domain.VectorizeOptions{Force: true})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeIndexed, result.Outcome)
	assert.Equal(t, len(words)/2+1, handle.Len(ctx))

	items, err := retrieval.Retrieve(ctx, "kilo", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, doc.ID, items[0].ID)

	items, err = retrieval.Retrieve(ctx, "lima", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ids[1], items[0].ID)

	items, err = retrieval.Retrieve(ctx, "alpha", 10)
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, ids[0], item.ID, "deleted document returned")
	}
}

func TestPipeline_PunctuationOnlyTextIsNotIndexed(t *testing.T) {
	ctx := context.Background()

	embedder := hash.NewEmbeddingService(testDims)
	p := newPipeline()
	p.wire(p.store.RecordStore(), embedder)

	text := strings.Repeat("-- ", domain.DefaultMinTextLength)
	doc, result, err := p.documents.Create(ctx, 0, "Divider", text)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIndexFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrIndexCorrupt)
	assert.Zero(t, p.handle.Len(ctx))

	flagged, err := p.store.RecordStore().GetFlag(ctx, domain.DocumentTag(doc.ID))
	require.NoError(t, err)
	assert.False(t, flagged)
}
