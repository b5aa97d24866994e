// Package history persists the content-state tokens a user has produced so
// they can be listed, re-opened in a viewer, or pruned later.
//
// Entries are keyed by a BLAKE3 digest of the token: recording the same
// reference twice bumps its use count instead of adding a row. Each entry
// also carries a random UUID that the CLI and HTTP API accept in full or as
// an unambiguous prefix.
//
// The store is SQLite (modernc.org/sqlite, no cgo) opened in WAL mode with a
// busy timeout so the CLI and the daemon can share one database file.
package history
