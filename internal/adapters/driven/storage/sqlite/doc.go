// Package sqlite provides the durable document store backed by a single
// SQLite file in WAL mode. It uses the pure-Go modernc.org/sqlite driver so
// the binary builds without cgo.
//
// Schema changes live in migrations/ as numbered NNN_name.up.sql files that
// are embedded at compile time and applied in order on open.
package sqlite
