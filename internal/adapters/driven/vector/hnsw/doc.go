// Package hnsw provides a pure Go, file-backed implementation of
// driven.VectorIndex on top of github.com/coder/hnsw.
//
// Graph nodes are keyed by insertion sequence and a table maps each live tag
// ("activity:7", "document:7") to its sequence, so the two record kinds share
// one graph without colliding. The table plus the compacted graph is
// persisted to a single file, written through a temporary file and renamed
// into place on Flush.
package hnsw
