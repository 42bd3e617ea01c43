// Package sqlite provides the persisted similarity index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each persist directory holds one
// database file, index.db, which may contain several named collections.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Vectors
//
// Embeddings are stored as little-endian float32 BLOBs. Queries rank every
// entry of a collection by cosine distance; there is no approximate index.
//
// # Thread Safety
//
// Reads are safe for concurrent use. The database runs in WAL mode so readers
// are not blocked by a writer; a single writer per directory is expected.
package sqlite
