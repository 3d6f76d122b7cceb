// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The index handle, vectorizer and retrieval service together form the
// vectorization pipeline: a write is persisted, evaluated against the
// trigger condition, embedded outside any lock, inserted under the index
// handle's exclusive lock, and finally flagged in the store.
package services
