package hnsw

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	chnsw "github.com/coder/hnsw"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// FileName is the index file created inside the data directory.
const FileName = "vectors.hnsw"

// Graph parameters.
const (
	DefaultM        = 16
	DefaultEfSearch = 64
)

const (
	fileMagic   = "RCLV"
	fileVersion = uint32(2)
)

// Index provides vector similarity search over a coder/hnsw graph.
//
// Graph nodes are keyed by insertion sequence and never removed from the
// graph in place. Replacing or deleting a tag leaves its old node behind as a
// tombstone that Search skips; Flush rebuilds the graph from the live
// vectors before writing it out.
type Index struct {
	mu         sync.Mutex
	graph      *chnsw.Graph[uint64]
	seqs       map[string]uint64
	tags       map[uint64]string
	vectors    map[uint64][]float32
	tombstones int
	next       uint64
	path       string
	dimension  int
	dirty      bool
	closed     bool
}

// New opens the index stored at path, or creates an empty one.
// A dimension of 0 adopts the size of the first vector added. Opening a
// file built for a different dimension fails with domain.ErrIndexCorrupt.
func New(path string, dimension int) (*Index, error) {
	if path == "" {
		return nil, errors.New("hnsw: path cannot be empty")
	}
	if dimension < 0 {
		return nil, errors.New("hnsw: dimension cannot be negative")
	}

	idx := &Index{
		graph:     newGraph(),
		seqs:      make(map[string]uint64),
		tags:      make(map[uint64]string),
		vectors:   make(map[uint64][]float32),
		path:      path,
		dimension: dimension,
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hnsw: opening index: %w", err)
	}
	defer f.Close()

	if err := idx.load(bufio.NewReader(f)); err != nil {
		return nil, err
	}
	return idx, nil
}

// Open opens the index file inside dataDir.
func Open(dataDir string, dimension int) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("hnsw: creating data directory: %w", err)
	}
	return New(filepath.Join(dataDir, FileName), dimension)
}

func newGraph() *chnsw.Graph[uint64] {
	g := chnsw.NewGraph[uint64]()
	g.M = DefaultM
	g.Ml = 1 / math.Log(float64(DefaultM))
	g.EfSearch = DefaultEfSearch
	g.Distance = chnsw.CosineDistance
	return g
}

// Add inserts the vector for tag, replacing any existing entry.
func (idx *Index) Add(_ context.Context, tag domain.Tag, vector []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return errors.New("hnsw: index is closed")
	}
	if len(vector) == 0 {
		return fmt.Errorf("hnsw: empty vector: %w", domain.ErrIndexCorrupt)
	}
	if idx.dimension != 0 && len(vector) != idx.dimension {
		return fmt.Errorf("hnsw: vector has %d dimensions, index has %d: %w",
			len(vector), idx.dimension, domain.ErrIndexCorrupt)
	}
	if isZero(vector) {
		return fmt.Errorf("hnsw: zero vector has no direction: %w", domain.ErrIndexCorrupt)
	}
	if idx.dimension == 0 {
		idx.dimension = len(vector)
	}

	key := tag.String()
	idx.remove(key)

	v := make([]float32, len(vector))
	copy(v, vector)

	idx.next++
	idx.graph.Add(chnsw.MakeNode(idx.next, v))
	idx.seqs[key] = idx.next
	idx.tags[idx.next] = key
	idx.vectors[idx.next] = v
	idx.dirty = true
	idx.maybeCompact()
	return nil
}

// Delete removes the entry for tag.
func (idx *Index) Delete(_ context.Context, tag domain.Tag) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return errors.New("hnsw: index is closed")
	}
	if idx.remove(tag.String()) {
		idx.dirty = true
		idx.maybeCompact()
	}
	return nil
}

// remove turns the live node for key into a tombstone.
func (idx *Index) remove(key string) bool {
	seq, ok := idx.seqs[key]
	if !ok {
		return false
	}
	delete(idx.seqs, key)
	delete(idx.tags, seq)
	delete(idx.vectors, seq)
	idx.tombstones++
	return true
}

// maybeCompact rebuilds the graph once tombstones outnumber live entries.
func (idx *Index) maybeCompact() {
	if idx.tombstones > len(idx.seqs) {
		idx.compact()
	}
}

// compact rebuilds the graph from the live vectors in insertion order.
func (idx *Index) compact() {
	g := newGraph()
	for _, seq := range idx.liveSeqs() {
		g.Add(chnsw.MakeNode(seq, idx.vectors[seq]))
	}
	idx.graph = g
	idx.tombstones = 0
}

func (idx *Index) liveSeqs() []uint64 {
	seqs := make([]uint64, 0, len(idx.tags))
	for seq := range idx.tags {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs
}

// Search finds the k nearest entries to the query vector.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.IndexHit, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil, errors.New("hnsw: index is closed")
	}
	if k <= 0 || len(idx.seqs) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("hnsw: query has %d dimensions, index has %d: %w",
			len(query), idx.dimension, domain.ErrIndexCorrupt)
	}
	if isZero(query) {
		return nil, nil
	}

	if k > len(idx.seqs) {
		k = len(idx.seqs)
	}
	fetch := k + idx.tombstones
	if fetch > idx.graph.Len() {
		fetch = idx.graph.Len()
	}
	if idx.graph.EfSearch < fetch {
		idx.graph.EfSearch = fetch
	}

	type scored struct {
		hit domain.IndexHit
		seq uint64
	}
	nodes := idx.graph.Search(query, fetch)
	found := make([]scored, 0, len(nodes))
	for _, n := range nodes {
		key, live := idx.tags[n.Key]
		if !live {
			continue
		}
		tag, err := domain.ParseTag(key)
		if err != nil {
			return nil, fmt.Errorf("hnsw: bad key %q: %w", key, domain.ErrIndexCorrupt)
		}
		found = append(found, scored{
			hit: domain.IndexHit{Tag: tag, Score: cosine(query, n.Value)},
			seq: n.Key,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].hit.Score != found[j].hit.Score {
			return found[i].hit.Score > found[j].hit.Score
		}
		return found[i].seq < found[j].seq
	})
	if len(found) > k {
		found = found[:k]
	}

	hits := make([]domain.IndexHit, len(found))
	for i, f := range found {
		hits[i] = f.hit
	}
	return hits, nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.seqs)
}

// Dimensions returns the vector size, or 0 before the first insert.
func (idx *Index) Dimensions() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.dimension
}

// Flush writes the index to disk if it changed since the last flush.
func (idx *Index) Flush(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.flushLocked()
}

// Close flushes and releases the graph. Further calls fail.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil
	}
	err := idx.flushLocked()
	idx.closed = true
	idx.graph = nil
	return err
}

func (idx *Index) flushLocked() error {
	if idx.closed || !idx.dirty {
		return nil
	}
	if idx.tombstones > 0 {
		idx.compact()
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.path), FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("hnsw: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	w := bufio.NewWriter(tmp)
	if err := idx.save(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("hnsw: writing index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("hnsw: syncing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("hnsw: closing index: %w", err)
	}
	if err := os.Rename(tmp.Name(), idx.path); err != nil {
		return fmt.Errorf("hnsw: replacing index: %w", err)
	}

	idx.dirty = false
	return nil
}

// header precedes the exported graph on disk.
type header struct {
	Magic     [4]byte
	Version   uint32
	Dimension uint32
	Next      uint64
	Count     uint32
}

func (idx *Index) save(w io.Writer) error {
	h := header{
		Version:   fileVersion,
		Dimension: uint32(idx.dimension),
		Next:      idx.next,
		Count:     uint32(len(idx.seqs)),
	}
	copy(h.Magic[:], fileMagic)
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("hnsw: writing header: %w", err)
	}

	for _, seq := range idx.liveSeqs() {
		key := idx.tags[seq]
		if err := binary.Write(w, binary.LittleEndian, uint16(len(key))); err != nil {
			return fmt.Errorf("hnsw: writing key: %w", err)
		}
		if _, err := io.WriteString(w, key); err != nil {
			return fmt.Errorf("hnsw: writing key: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, seq); err != nil {
			return fmt.Errorf("hnsw: writing sequence: %w", err)
		}
	}

	if len(idx.seqs) == 0 {
		return nil
	}
	if err := idx.graph.Export(w); err != nil {
		return fmt.Errorf("hnsw: exporting graph: %w", err)
	}
	return nil
}

func (idx *Index) load(r io.Reader) error {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("hnsw: reading header: %w: %w", domain.ErrIndexCorrupt, err)
	}
	if string(h.Magic[:]) != fileMagic || h.Version != fileVersion {
		return fmt.Errorf("hnsw: unrecognised file format: %w", domain.ErrIndexCorrupt)
	}
	if idx.dimension != 0 && h.Count > 0 && int(h.Dimension) != idx.dimension {
		return fmt.Errorf("hnsw: file has %d dimensions, want %d: %w",
			h.Dimension, idx.dimension, domain.ErrIndexCorrupt)
	}
	if idx.dimension == 0 {
		idx.dimension = int(h.Dimension)
	}
	idx.next = h.Next

	for i := uint32(0); i < h.Count; i++ {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("hnsw: reading key: %w: %w", domain.ErrIndexCorrupt, err)
		}
		key := make([]byte, n)
		if _, err := io.ReadFull(r, key); err != nil {
			return fmt.Errorf("hnsw: reading key: %w: %w", domain.ErrIndexCorrupt, err)
		}
		var seq uint64
		if err := binary.Read(r, binary.LittleEndian, &seq); err != nil {
			return fmt.Errorf("hnsw: reading sequence: %w: %w", domain.ErrIndexCorrupt, err)
		}
		idx.seqs[string(key)] = seq
		idx.tags[seq] = string(key)
	}

	if h.Count == 0 {
		return nil
	}
	if err := idx.graph.Import(r); err != nil {
		return fmt.Errorf("hnsw: importing graph: %w: %w", domain.ErrIndexCorrupt, err)
	}
	if idx.graph.Len() != len(idx.seqs) {
		return fmt.Errorf("hnsw: graph has %d nodes, table has %d: %w",
			idx.graph.Len(), len(idx.seqs), domain.ErrIndexCorrupt)
	}
	for seq := range idx.tags {
		vec, ok := idx.graph.Lookup(seq)
		if !ok {
			return fmt.Errorf("hnsw: sequence %d missing from graph: %w", seq, domain.ErrIndexCorrupt)
		}
		idx.vectors[seq] = vec
	}
	return nil
}

// cosine returns the cosine similarity of a and b, or 0 when either is zero.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
