// Package storage provides the SQLite-backed document store and schema
// lifecycle for the AppleDocs index.
//
// One logical document is spread across three collections that share the
// uri key:
//   - docs_fts: FTS5 table over (uri, source, framework, language, title,
//     content, summary) — the text fed to it is shaped by the extraction
//     policy in content.go, not the raw page body.
//   - doc_metadata: bookkeeping (file path, content hash, word count, the
//     verbatim structured payload) plus the five per-platform minimum-version
//     columns and their provenance tag.
//   - doc_structured: queryable non-full-text facets (kind, declaration,
//     module, conformance lists, extracted attribute names).
//
// Auxiliary collections hold code examples (with their own FTS table),
// sample-code catalog entries, package-registry records with dependency
// edges, and framework name aliases.
//
// # Schema lifecycle
//
// A single integer schema version is persisted in PRAGMA user_version and
// checked at every open. Fresh stores get the current schema directly; older
// stores have pending migration steps applied in ascending order; stores
// newer than this build are rejected with ErrStoreTooNew. See migrations.go.
//
// # Concurrency
//
// All operations are serialized through a weighted semaphore of size one:
// exactly one logical operation runs against the store at a time. This is a
// deliberate simplification for a local, single-process index. The database
// handle is singly owned; do not close the store while operations are in
// flight.
//
// # Build tags
//
// Two driver configurations are supported:
//
//   - CGO_ENABLED=1 go build -tags "sqlite_cgo,fts5"   (mattn/go-sqlite3)
//   - CGO_ENABLED=0 go build                           (modernc.org/sqlite)
package storage
