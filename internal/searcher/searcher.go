package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jgivens/appledocs-mcp/internal/storage"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

const (
	defaultLimit = 10
	maxLimit     = 100

	// Over-fetch ahead of re-ranking, capped so a huge limit cannot drag
	// thousands of rows through the ranking pass.
	overfetchFactor  = 20
	overfetchCeiling = 500

	cacheSize = 256
	cacheTTL  = 5 * time.Minute
)

// Request is one search call.
type Request struct {
	Query          string
	Limit          int
	Source         string // explicit source filter; disables source-token detection
	Framework      string
	Language       string
	IncludeArchive bool

	// MinPlatformVersions maps a platform to the caller's deployment
	// target; results requiring a newer version on any listed platform are
	// dropped.
	MinPlatformVersions map[types.Platform]string
}

type cacheEntry struct {
	results []types.SearchResult
	expires time.Time
}

// Searcher executes ranked full-text searches against a store.
type Searcher struct {
	store *storage.Store
	log   *slog.Logger
	cache *lru.Cache[uint64, cacheEntry]
}

// New creates a searcher with a warm result cache.
func New(store *storage.Store, logger *slog.Logger) (*Searcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[uint64, cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &Searcher{store: store, log: logger, cache: cache}, nil
}

// Search runs the full pipeline: parse, fetch, rank, filter, truncate.
func (s *Searcher) Search(ctx context.Context, req Request) ([]types.SearchResult, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}

	key := requestKey(req)
	if entry, ok := s.cache.Get(key); ok {
		if time.Now().Before(entry.expires) {
			s.log.Debug("cache hit", "query", req.Query)
			return entry.results, nil
		}
		s.cache.Remove(key)
	}

	// An explicit source filter disables source-token detection: the token
	// stays in the search text instead of becoming a second filter.
	var parsed ParsedQuery
	var explicitSource types.Source
	if req.Source != "" {
		src, ok := types.ParseSource(req.Source)
		if !ok {
			return nil, fmt.Errorf("unknown source %q: %w", req.Source, types.ErrInvalidInput)
		}
		explicitSource = src
		parsed = ParseQueryScoped(req.Query)
	} else {
		parsed = ParseQuery(req.Query)
	}
	if parsed.MatchExpr == "" {
		return nil, fmt.Errorf("query has no searchable terms: %w", types.ErrEmptyQuery)
	}

	filters := storage.SearchFilters{
		Framework:      req.Framework,
		Language:       req.Language,
		Attributes:     parsed.Attributes,
		IncludeArchive: req.IncludeArchive,
	}
	if explicitSource != "" {
		filters.Source = explicitSource
	} else {
		filters.Source = parsed.Source
	}

	overfetch := min(req.Limit*overfetchFactor, overfetchCeiling)
	candidates, err := s.store.SearchCandidates(ctx, parsed.MatchExpr, filters, overfetch)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidates[i].Score = adjustScore(candidates[i].Score, parsed, &candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	avail := AvailabilityFilter{Targets: req.MinPlatformVersions}
	results := candidates[:0]
	for i := range candidates {
		if !avail.passes(&candidates[i]) {
			continue
		}
		results = append(results, candidates[i])
		if len(results) == req.Limit {
			break
		}
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	s.cache.Add(key, cacheEntry{results: results, expires: time.Now().Add(cacheTTL)})
	return results, nil
}

// InvalidateCache drops all cached results. Called after index builds so
// stale hits never outlive the corpus they were computed from.
func (s *Searcher) InvalidateCache() {
	s.cache.Purge()
}

func normalizeRequest(req *Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return types.ErrEmptyQuery
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	for platform := range req.MinPlatformVersions {
		if _, ok := CanonicalPlatform(string(platform)); !ok {
			return fmt.Errorf("unknown platform %q: %w", platform, types.ErrInvalidInput)
		}
	}
	return nil
}

// CanonicalPlatform matches a platform name case-insensitively against the
// known set.
func CanonicalPlatform(name string) (types.Platform, bool) {
	for _, p := range types.AllPlatforms {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}

func requestKey(req Request) uint64 {
	h := xxhash.New()
	parts := []string{
		req.Query, fmt.Sprint(req.Limit), req.Source, req.Framework,
		req.Language, fmt.Sprint(req.IncludeArchive),
	}
	// Deterministic platform order so equal requests hash equally.
	for _, p := range types.AllPlatforms {
		if v, ok := req.MinPlatformVersions[p]; ok {
			parts = append(parts, string(p)+"="+v)
		}
	}
	for _, part := range parts {
		_, _ = h.WriteString(part)
		_, _ = h.WriteString("\x00")
	}
	return h.Sum64()
}
