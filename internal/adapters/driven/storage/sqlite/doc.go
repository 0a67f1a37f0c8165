// Package sqlite provides a SQLite-based implementation of the token and
// run history stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - TokenStore: API tokens keyed by host URL
//   - RunStore: one summary row per sync run
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.repotree/data/repotree.db and is
// readable only by its owner.
package sqlite
