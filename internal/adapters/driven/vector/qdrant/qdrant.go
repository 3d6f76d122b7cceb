// Package qdrant implements driven.VectorIndex against a Qdrant collection
// over gRPC. It is the remote alternative to the file-backed hnsw index.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default connection values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 6334
	DefaultCollection = "recall"
)

// Payload keys stored with every point.
const (
	payloadKind     = "kind"
	payloadRecordID = "record_id"
	payloadSeq      = "seq"
)

// pointNamespace derives stable point IDs from tags.
var pointNamespace = uuid.MustParse("5b0c7c1e-4a53-4d0e-9a3e-8f1f3f0f6b21")

// Config holds Qdrant connection settings.
type Config struct {
	Host       string
	Port       int
	Collection string
	Dimensions int
}

// Index stores tag vectors as points in one Qdrant collection.
type Index struct {
	client     *qdrant.Client
	collection string
	dimension  int

	mu    sync.Mutex
	count int
}

// New connects to Qdrant and ensures the collection exists with the
// configured vector size.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions must be positive: %w", domain.ErrInvalidInput)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connecting: %w", err)
	}

	idx := &Index{
		client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimensions,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	if err := idx.refreshCount(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) ensureCollection(ctx context.Context) error {
	exists, err := idx.client.CollectionExists(ctx, idx.collection)
	if err != nil {
		return fmt.Errorf("qdrant: checking collection: %w", err)
	}
	if !exists {
		err := idx.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: idx.collection,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(idx.dimension),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("qdrant: creating collection: %w", err)
		}
		return nil
	}

	info, err := idx.client.GetCollectionInfo(ctx, idx.collection)
	if err != nil {
		return fmt.Errorf("qdrant: reading collection: %w", err)
	}
	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != 0 && int(size) != idx.dimension {
		return fmt.Errorf("qdrant: collection %q has %d dimensions, want %d: %w",
			idx.collection, size, idx.dimension, domain.ErrIndexCorrupt)
	}
	return nil
}

func (idx *Index) refreshCount(ctx context.Context) error {
	n, err := idx.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: idx.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: counting points: %w", err)
	}
	idx.mu.Lock()
	idx.count = int(n)
	idx.mu.Unlock()
	return nil
}

// Add upserts the point for tag.
func (idx *Index) Add(ctx context.Context, tag domain.Tag, vector []float32) error {
	if len(vector) != idx.dimension {
		return fmt.Errorf("qdrant: vector has %d dimensions, index has %d: %w",
			len(vector), idx.dimension, domain.ErrIndexCorrupt)
	}

	_, err := idx.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: idx.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(pointID(tag)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(payloadFor(tag, time.Now().UnixNano())),
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upserting point: %w", err)
	}
	return idx.refreshCount(ctx)
}

// Delete removes the point for tag.
func (idx *Index) Delete(ctx context.Context, tag domain.Tag) error {
	_, err := idx.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: idx.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(pointID(tag))),
	})
	if err != nil {
		return fmt.Errorf("qdrant: deleting point: %w", err)
	}
	return idx.refreshCount(ctx)
}

// Search queries the k nearest points.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.IndexHit, error) {
	if k <= 0 || idx.Len() == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("qdrant: query has %d dimensions, index has %d: %w",
			len(query), idx.dimension, domain.ErrIndexCorrupt)
	}

	limit := uint64(k)
	points, err := idx.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: idx.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(query...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: querying: %w", err)
	}

	hits := make([]scoredHit, 0, len(points))
	for _, p := range points {
		h, err := hitFromPayload(p.GetPayload(), p.GetScore())
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return orderHits(hits), nil
}

// Len returns the point count observed after the last write.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.count
}

// Dimensions returns the collection vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Flush is a no-op; writes wait for the server to apply them.
func (idx *Index) Flush(context.Context) error {
	return nil
}

// Close closes the gRPC connection.
func (idx *Index) Close() error {
	return idx.client.Close()
}

// pointID maps a tag to a deterministic UUID.
func pointID(tag domain.Tag) string {
	return uuid.NewSHA1(pointNamespace, []byte(tag.String())).String()
}

func payloadFor(tag domain.Tag, seq int64) map[string]any {
	return map[string]any{
		payloadKind:     string(tag.Kind),
		payloadRecordID: tag.ID,
		payloadSeq:      seq,
	}
}

type scoredHit struct {
	hit domain.IndexHit
	seq int64
}

func hitFromPayload(payload map[string]*qdrant.Value, score float32) (scoredHit, error) {
	tag := domain.Tag{
		Kind: domain.RecordKind(payload[payloadKind].GetStringValue()),
		ID:   payload[payloadRecordID].GetIntegerValue(),
	}
	if !tag.IsValid() {
		return scoredHit{}, fmt.Errorf("qdrant: point without a valid tag: %w", domain.ErrIndexCorrupt)
	}
	return scoredHit{
		hit: domain.IndexHit{Tag: tag, Score: float64(score)},
		seq: payload[payloadSeq].GetIntegerValue(),
	}, nil
}

// orderHits sorts by descending score, then by insertion sequence.
func orderHits(hits []scoredHit) []domain.IndexHit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Score != hits[j].hit.Score {
			return hits[i].hit.Score > hits[j].hit.Score
		}
		return hits[i].seq < hits[j].seq
	})
	out := make([]domain.IndexHit, len(hits))
	for i, h := range hits {
		out[i] = h.hit
	}
	return out
}
