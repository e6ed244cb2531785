package types

// SearchResult is one ranked hit returned to the facade.
type SearchResult struct {
	URI       string
	Source    Source
	Framework string
	Language  string
	Title     string
	Summary   string
	Kind      Kind

	// Score is the adjusted bm25 relevance; lower (more negative) is better.
	// Structured-field lookups return 0 and order by title instead.
	Score float64
	Rank  int // 1-based position in the final result set

	// Availability carries the per-platform minimums so the facade can show
	// them without a second lookup.
	Availability map[Platform]string
}

// Validate checks invariants the facade relies on.
func (r *SearchResult) Validate() error {
	if r.URI == "" {
		return ErrInvalidInput
	}
	if r.Rank < 1 {
		return ErrInvalidInput
	}
	return nil
}
