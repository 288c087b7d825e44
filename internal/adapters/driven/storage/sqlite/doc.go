// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Documents are stored with their metadata as JSON and their embedding as a
// little-endian float32 BLOB. Queries embed the question and rank every stored
// vector by cosine distance.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.mediascope/index.db. The special path
// ":memory:" keeps the database in process memory.
package sqlite
