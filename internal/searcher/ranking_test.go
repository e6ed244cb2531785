package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func TestTitleMultiplier(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  float64
	}{
		{"exact match", "view", "View", 0.05},
		{"leading prefix", "view", "View Programming", 0.15},
		{"dotted prefix", "view", "View.Scale", 0.15},
		{"all words", "url session", "Using URLSession in apps", 0.3},
		{"some words", "url cache policy", "URL loading basics", 0.6},
		{"no words", "actor", "Memory Safety", 1.0},
		{"empty query", "", "Anything", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, titleMultiplier(tt.query, tt.title), 1e-9)
		})
	}
}

func TestKindMultiplier(t *testing.T) {
	assert.InDelta(t, 0.5, kindMultiplier(types.KindProtocol), 1e-9)
	assert.InDelta(t, 0.5, kindMultiplier(types.KindStruct), 1e-9)
	assert.InDelta(t, 0.5, kindMultiplier(types.KindFramework), 1e-9)
	assert.InDelta(t, 2.0, kindMultiplier(types.KindMethod), 1e-9)
	assert.InDelta(t, 2.0, kindMultiplier(types.KindProperty), 1e-9)
	assert.InDelta(t, 1.0, kindMultiplier(types.KindArticle), 1e-9)
	// Enums and typealiases are outside the ranked core set.
	assert.InDelta(t, 1.0, kindMultiplier(types.KindEnum), 1e-9)
	assert.InDelta(t, 1.0, kindMultiplier(types.KindTypeAlias), 1e-9)
}

func TestSourceMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, sourceMultiplier(types.SourceAppleDocs, "apple-docs://swiftui/view"), 1e-9)
	assert.InDelta(t, 0.9, sourceMultiplier(types.SourceSwiftBook, "swift-book://concurrency"), 1e-9)
	assert.InDelta(t, 1.3, sourceMultiplier(types.SourceEvolution, "swift-evolution://0306"), 1e-9)
	assert.InDelta(t, 1.5, sourceMultiplier(types.SourceArchive, "archive://guides/kvo"), 1e-9)
	// Release notes are demoted regardless of source.
	assert.InDelta(t, 2.5, sourceMultiplier(types.SourceAppleDocs, "apple-docs://ios-ipados-release-notes/ios-17"), 1e-9)
}

func TestAdjustScore(t *testing.T) {
	q := ParseQuery("View")

	typePage := types.SearchResult{
		URI: "apple-docs://swiftui/view", Source: types.SourceAppleDocs,
		Framework: "swiftui", Title: "View", Kind: types.KindProtocol,
	}
	memberPage := types.SearchResult{
		URI: "apple-docs://swiftui/view/scale", Source: types.SourceAppleDocs,
		Framework: "swiftui", Title: "View.Scale", Kind: types.KindProperty,
	}

	t.Run("type page outranks member page at equal base", func(t *testing.T) {
		base := -5.0
		typeScore := adjustScore(base, q, &typePage)
		memberScore := adjustScore(base, q, &memberPage)
		assert.Less(t, typeScore, memberScore)
	})

	t.Run("kind keyword agreement boosts", func(t *testing.T) {
		withKeyword := ParseQuery("View protocol")
		plain := ParseQuery("View unrelated")
		assert.Less(t,
			adjustScore(-5.0, withKeyword, &typePage),
			adjustScore(-5.0, plain, &typePage))
	})

	t.Run("long title penalized for short query", func(t *testing.T) {
		longTitle := typePage
		longTitle.Title = "Building custom views with advanced layout"
		longTitle.Kind = types.KindArticle
		shortTitle := typePage
		shortTitle.Title = "Custom views"
		shortTitle.Kind = types.KindArticle
		assert.Greater(t,
			adjustScore(-5.0, q, &longTitle),
			adjustScore(-5.0, q, &shortTitle))
	})
}
