// Package storage provides the audit record backends.
//
//   - memory: a map guarded by a mutex, for tests and throwaway runs
//   - sqlite: modernc.org/sqlite, pure Go, the default
//   - sqlite3: github.com/mattn/go-sqlite3, requires cgo
//
// Both SQLite drivers share one schema and one implementation.
package storage
