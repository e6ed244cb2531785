// Package searcher turns raw user queries into ranked search results.
//
// The pipeline has four stages:
//
//  1. Query processing (query.go): a leading source token scopes the search,
//     @-prefixed and bare attribute names become structural filters, and the
//     remaining text is sanitized into a safe FTS5 match expression.
//  2. Candidate fetch: the store returns an over-fetched bm25-ordered set.
//  3. Ranking (ranking.go): each candidate's bm25 score is adjusted by kind,
//     source and title-match heuristics. Scores are negative; dividing by a
//     multiplier below one improves a result, above one demotes it.
//  4. Availability filtering (availability.go): when the caller pins a
//     platform version, results requiring a newer OS are dropped. Results
//     with unknown availability always pass.
//
// Results are cached in a small LRU with a short TTL; the cache is purged
// after every index build.
package searcher
