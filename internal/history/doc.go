// Package history persists the set of article URLs that were already pushed.
//
// The set is loaded once per run, consulted per article, and saved once at the
// end, keeping only the most recent entries. Drivers:
//   - "file":     JSON array of URLs (default, pushed_history.json)
//   - "sqlite":   SQLite database file (modernc.org/sqlite, no cgo)
//   - "postgres": PostgreSQL via pgx, for runners without a persistent disk
package history
