// Package sqlite provides the relational store backing activities,
// documents, projects and scheduler bookkeeping.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the binary
// builds without CGO. One *sql.DB serves every store interface:
//
//   - RecordStore: text and vectorized flags for both record kinds
//   - ActivityStore: the immutable activity log and its metadata
//   - DocumentStore: project documents in project order
//   - ProjectStore: projects with unique names
//   - SchedulerStore: background task state and history
//
// # Schema
//
// Versioned migrations live in migrations/ as .up.sql/.down.sql pairs and
// are recorded in schema_migrations when applied.
//
// # Data Location
//
// By default, the database is stored at ~/.recall/data/metadata.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. WAL mode lets readers proceed
// while a single writer holds the lock.
package sqlite
