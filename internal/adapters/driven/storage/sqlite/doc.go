// Package sqlite provides a SQLite-based implementation of the record and
// scheduler stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - DrawStore: draw records, merged on write
//   - SchedulerStore: scheduled job state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.drawsync/data/draws.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Upsert reads, merges and writes
// a record inside one transaction, so concurrent runs for one date converge.
package sqlite
