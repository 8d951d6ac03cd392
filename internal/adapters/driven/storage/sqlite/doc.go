// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - ChunkStore: Chunk metadata persistence; the source of truth for
//     chunk content. Vector indices hold only identity + vector.
//   - HistoryStore: Conversation and message persistence.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. Each call uses a short-lived connection
// from the database/sql pool; SQLite in WAL mode with a busy timeout
// provides the locking. No transaction spans more than one call.
package sqlite
