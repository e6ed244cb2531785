// Package indexer turns crawled documentation artifacts into store rows.
//
// Each source has its own adapter that normalizes that source's on-disk
// format into the shared Document shape:
//
//   - apple-docs: structured JSON pages from the API reference crawler
//   - swift-evolution: proposal markdown with a status header
//   - swift-book, hig, archive: markdown with YAML front matter
//   - packages: a registry snapshot JSON
//   - sample-code: a catalog snapshot JSON
//
// Adapters never write to the store themselves; the orchestrator in
// indexer.go drives them source by source, hashes each artifact to skip
// unchanged ones, captures per-document failures without aborting the run,
// and reports progress through a callback.
//
// Only one build may run at a time per process; a second call fails fast
// with ErrIndexInProgress rather than queueing.
package indexer
