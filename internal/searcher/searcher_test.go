package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivens/appledocs-mcp/internal/storage"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func newTestSearcher(t *testing.T) (*Searcher, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s, err := New(store, nil)
	require.NoError(t, err)
	return s, store
}

func seedCorpus(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()
	docs := []*types.Document{
		{
			URI: types.SourceAppleDocs.URI("swiftui/view"), Source: types.SourceAppleDocs,
			Framework: "swiftui", Language: "swift", Title: "View",
			Content: "A type that represents part of your app's user interface.",
			Kind:    types.KindProtocol, Declaration: "@MainActor protocol View",
			Module: "SwiftUI",
			Availability: map[types.Platform]string{
				types.PlatformIOS: "13.0",
			},
		},
		{
			URI: types.SourceAppleDocs.URI("swiftui/view/scale"), Source: types.SourceAppleDocs,
			Framework: "swiftui", Language: "swift", Title: "View.Scale",
			Content: "The scale of a view relative to its container.",
			Kind:    types.KindProperty, Declaration: "var scale: View.Scale",
		},
		{
			URI: types.SourceAppleDocs.URI("widgetkit/widget"), Source: types.SourceAppleDocs,
			Framework: "widgetkit", Language: "swift", Title: "Widget",
			Content: "A view used in a widget extension.",
			Kind:    types.KindProtocol,
			Availability: map[types.Platform]string{
				types.PlatformIOS: "17.0",
			},
		},
		{
			URI: types.SourceEvolution.URI("0306-actors"), Source: types.SourceEvolution,
			Language: "swift", Title: "Actors (SE-0306)",
			Content: "Actors protect mutable state from data races. A view of concurrency.",
			Kind:    types.KindArticle,
		},
	}
	for _, doc := range docs {
		doc.LastIndexed = time.Now().UTC()
		doc.Attributes = storage.ExtractAttributes(doc.Declaration)
		require.NoError(t, store.IndexDocument(ctx, doc))
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSearcher(t)
	seedCorpus(t, store)

	t.Run("type page ranks above its members", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "View"})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "apple-docs://swiftui/view", results[0].URI)
		assert.Equal(t, 1, results[0].Rank)
	})

	t.Run("source token scopes", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "swift-evolution view"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, types.SourceEvolution, results[0].Source)
	})

	t.Run("explicit source keeps token in text", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "swift-evolution view", Source: "apple-docs"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("attribute query filters", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "@MainActor View"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "apple-docs://swiftui/view", results[0].URI)
	})

	t.Run("framework filter", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "view", Framework: "widgetkit"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Widget", results[0].Title)
	})

	t.Run("availability filter drops too-new APIs", func(t *testing.T) {
		results, err := s.Search(ctx, Request{
			Query: "view",
			MinPlatformVersions: map[types.Platform]string{
				types.PlatformIOS: "16.0",
			},
		})
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, "apple-docs://widgetkit/widget", r.URI)
		}
	})

	t.Run("limit respected with ranks renumbered", func(t *testing.T) {
		results, err := s.Search(ctx, Request{Query: "view", Limit: 2})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 1, results[0].Rank)
		assert.Equal(t, 2, results[1].Rank)
	})

	t.Run("blank query rejected", func(t *testing.T) {
		_, err := s.Search(ctx, Request{Query: "   "})
		assert.ErrorIs(t, err, types.ErrEmptyQuery)
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		_, err := s.Search(ctx, Request{Query: "view", Source: "stackoverflow"})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("unknown platform rejected", func(t *testing.T) {
		_, err := s.Search(ctx, Request{
			Query:               "view",
			MinPlatformVersions: map[types.Platform]string{"linux": "1.0"},
		})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestSearchCache(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSearcher(t)
	seedCorpus(t, store)

	first, err := s.Search(ctx, Request{Query: "View"})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Change the corpus underneath; the cached result set must still be
	// served until invalidation.
	require.NoError(t, store.ClearIndex(ctx))

	cached, err := s.Search(ctx, Request{Query: "View"})
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	s.InvalidateCache()
	fresh, err := s.Search(ctx, Request{Query: "View"})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
