package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func seedStructuredDocs(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	docs := []*types.Document{
		{
			URI: types.SourceAppleDocs.URI("swiftui/view"), Source: types.SourceAppleDocs,
			Framework: "swiftui", Language: "swift", Title: "View",
			Content: "Part of your user interface.", Kind: types.KindProtocol,
			Module: "SwiftUI", ConformingTypes: []string{"Text", "Image"},
			Platforms: []string{"iOS", "macOS"},
		},
		{
			URI: types.SourceAppleDocs.URI("swiftui/text"), Source: types.SourceAppleDocs,
			Framework: "swiftui", Language: "swift", Title: "Text",
			Content: "A view that displays text.", Kind: types.KindStruct,
			Module: "SwiftUI", ConformsTo: []string{"View", "Equatable"},
			Declaration: "struct Text: View",
		},
		{
			URI: types.SourceAppleDocs.URI("uikit/uiview"), Source: types.SourceAppleDocs,
			Framework: "uikit", Language: "swift", Title: "UIView",
			Content: "Manages the content of a rectangular area.", Kind: types.KindClass,
			Module: "UIKit", InheritedBy: []string{"UILabel", "UIButton"},
		},
	}
	for _, doc := range docs {
		doc.LastIndexed = time.Now().UTC()
		require.NoError(t, store.IndexDocument(ctx, doc))
	}
}

func TestStructuredLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedStructuredDocs(t, store)

	t.Run("by kind", func(t *testing.T) {
		results, err := store.SearchByKind(ctx, types.KindStruct, "", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Text", results[0].Title)
		assert.Zero(t, results[0].Score)
		assert.Equal(t, 1, results[0].Rank)
	})

	t.Run("by kind scoped to framework", func(t *testing.T) {
		results, err := store.SearchByKind(ctx, types.KindProtocol, "uikit", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("by module", func(t *testing.T) {
		results, err := store.SearchByModule(ctx, "SwiftUI", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		// Alphabetical by title.
		assert.Equal(t, "Text", results[0].Title)
		assert.Equal(t, "View", results[1].Title)
	})

	t.Run("conforms to", func(t *testing.T) {
		results, err := store.SearchConformsTo(ctx, "View", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Text", results[0].Title)

		// Whole-element match, not substring.
		results, err = store.SearchConformsTo(ctx, "Vie", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("inherited by", func(t *testing.T) {
		results, err := store.SearchInheritedBy(ctx, "UILabel", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "UIView", results[0].Title)
	})

	t.Run("conforming types", func(t *testing.T) {
		results, err := store.SearchConformingTypes(ctx, "Image", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "View", results[0].Title)
	})

	t.Run("by declaration fragment", func(t *testing.T) {
		results, err := store.SearchByDeclaration(ctx, "struct Text", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Text", results[0].Title)
	})

	t.Run("by platform", func(t *testing.T) {
		results, err := store.SearchByPlatform(ctx, types.PlatformMacOS, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "View", results[0].Title)
	})
}
