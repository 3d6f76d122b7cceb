// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordStore: Text and vectorized-flag access for both record kinds
//   - ActivityStore: Activity persistence
//   - DocumentStore: Document persistence
//   - ProjectStore: Project persistence
//   - ConfigStore: Application configuration
//   - SchedulerStore: Background task state
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorIndex: ANN storage/search (HNSW or Qdrant). Without it nothing is indexed and retrieval returns nothing.
//   - EmbeddingService: Generates vector embeddings. Without it every write is "skipped_no_credential".
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
