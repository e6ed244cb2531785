// Package types provides shared type definitions for the AppleDocs MCP server.
//
// The central entity is Document: the canonical, normalized form of one page
// of technical documentation, regardless of which corpus it came from (API
// reference JSON, a Swift Evolution proposal, a chapter of the Swift book, an
// archived programming guide, or a Human Interface Guidelines article).
// Adapters in internal/indexer produce Documents; internal/storage persists
// them; internal/searcher returns them as SearchResults.
//
// # Closed enumerations
//
// Kind and Source are closed string-typed enumerations. Comparisons in the
// ranking and inference logic go through the typed constants so a typo cannot
// silently create a new category; the raw string token only appears at the
// storage boundary:
//
//	doc.Kind = types.KindStruct
//	row.kind = string(doc.Kind) // storage boundary
//
// # Identity
//
// Every Document is identified by a URI of the form {source}://{path}, e.g.
//
//	apple-docs://swiftui/view
//	swift-evolution://0306-actors
//
// Re-indexing a URI replaces all derived rows; there is never more than one
// logical document per URI.
package types
