package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func TestExtractOptimizedContent(t *testing.T) {
	t.Run("core type repeats title and trims overview", func(t *testing.T) {
		doc := &types.Document{
			Title:       "URLSession",
			Kind:        types.KindClass,
			Abstract:    "An object that coordinates network tasks.",
			Declaration: "class URLSession",
			Overview:    strings.Repeat("overview text ", 100),
		}
		content := ExtractOptimizedContent(doc)
		assert.Equal(t, 3, strings.Count(content, "URLSession ")-strings.Count(content, "class URLSession "))
		assert.Contains(t, content, "class URLSession")
		// Only a prefix of the overview is indexed.
		assert.Less(t, len(content), len(doc.Overview))
	})

	t.Run("member repeats title twice without overview", func(t *testing.T) {
		doc := &types.Document{
			Title:       "dataTask(with:)",
			Kind:        types.KindMethod,
			Abstract:    "Creates a task.",
			Declaration: "func dataTask(with url: URL) -> URLSessionDataTask",
			Overview:    "Long discussion that must not be indexed for members.",
		}
		content := ExtractOptimizedContent(doc)
		assert.Equal(t, 2, strings.Count(content, "dataTask(with:)"))
		assert.NotContains(t, content, "Long discussion")
	})

	t.Run("narrative keeps full body", func(t *testing.T) {
		doc := &types.Document{
			Title:   "Concurrency",
			Kind:    types.KindArticle,
			Content: "Perform asynchronous operations.\nMore prose here.",
		}
		content := ExtractOptimizedContent(doc)
		assert.Contains(t, content, "More prose here.")
	})

	t.Run("attributes appended", func(t *testing.T) {
		doc := &types.Document{
			Title:      "View",
			Kind:       types.KindProtocol,
			Attributes: []string{"MainActor"},
		}
		assert.Contains(t, ExtractOptimizedContent(doc), "MainActor")
	})
}

func TestExtractSummary(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "A short abstract.", ExtractSummary("A short abstract."))
	})

	t.Run("front matter and headings stripped", func(t *testing.T) {
		content := "---\ntitle: Memory Safety\n---\n# Memory Safety\nStructure your code to avoid conflicts."
		assert.Equal(t, "Structure your code to avoid conflicts.", ExtractSummary(content))
	})

	t.Run("truncates at sentence boundary", func(t *testing.T) {
		first := strings.Repeat("a", 200) + "."
		content := first + " " + strings.Repeat("b", 200)
		got := ExtractSummary(content)
		assert.Equal(t, first, got)
	})

	t.Run("falls back to word boundary with ellipsis", func(t *testing.T) {
		content := strings.Repeat("word ", 100)
		got := ExtractSummary(content)
		assert.LessOrEqual(t, len(got), summaryMaxLen+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		assert.Equal(t, "one two three", ExtractSummary("one\n\ntwo\t three"))
	})
}

func TestExtractAttributes(t *testing.T) {
	tests := []struct {
		name        string
		declaration string
		want        []string
	}{
		{"none", "struct Point", nil},
		{"single", "@MainActor protocol View", []string{"MainActor"}},
		{"argument list dropped", "@available(iOS 17.0, *) func f()", []string{"available"}},
		{"multiple deduplicated", "@objc @MainActor @objc class C", []string{"objc", "MainActor"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAttributes(tt.declaration))
		})
	}
}
