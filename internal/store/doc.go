// Package store persists integration events.
//
// Two EventStore implementations are provided: SQLiteStore, backed by the
// pure-Go modernc.org/sqlite driver, and MemoryStore for tests and
// throwaway demo runs. Listings are always ordered newest first by
// creation time, ties broken by id.
package store
