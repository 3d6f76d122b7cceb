// Package domain defines the core business entities for recall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ActivityRecord: Captured on-screen activity text, immutable once stored
//   - DocumentRecord: An editable project document
//   - Project: A named, ordered group of documents
//   - Tag: The (record kind, record id) key carried by every index entry
//   - RetrievedItem: A ranked piece of grounding context
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
