package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func TestParseAPIDoc(t *testing.T) {
	t.Run("full page", func(t *testing.T) {
		raw := []byte(`{
			"path": "swiftui/view",
			"title": "View",
			"abstract": "A type that represents part of your app's user interface.",
			"declaration": "@MainActor protocol View",
			"overview": "You create custom views by declaring types that conform to View.",
			"module": "SwiftUI",
			"platforms": [
				{"name": "iOS", "introduced": "13.0"},
				{"name": "macOS", "introduced": "10.15"}
			],
			"conformsTo": ["Sendable"],
			"codeListings": [{"code": "struct ContentView: View {}", "language": "swift"}]
		}`)

		doc, examples, err := parseAPIDoc(raw, "swiftui/view.json")
		require.NoError(t, err)
		require.NotNil(t, doc)

		assert.Equal(t, "apple-docs://swiftui/view", doc.URI)
		assert.Equal(t, "swiftui", doc.Framework)
		assert.Equal(t, types.KindProtocol, doc.Kind)
		assert.Equal(t, []string{"MainActor"}, doc.Attributes)
		assert.Equal(t, "13.0", doc.Availability[types.PlatformIOS])
		assert.Equal(t, "10.15", doc.Availability[types.PlatformMacOS])
		assert.Equal(t, "metadata", doc.AvailabilitySource)
		assert.Equal(t, []string{"Sendable"}, doc.ConformsTo)
		assert.NotZero(t, doc.ContentHash)
		assert.JSONEq(t, string(raw), string(doc.Payload))

		require.Len(t, examples, 1)
		assert.Equal(t, doc.URI, examples[0].URI)
		assert.Equal(t, "swift", examples[0].Language)
	})

	t.Run("availability falls back to declaration", func(t *testing.T) {
		raw := []byte(`{
			"path": "widgetkit/widget",
			"title": "Widget",
			"declaration": "@available(iOS 14.0, macOS 11.0, *) protocol Widget"
		}`)
		doc, _, err := parseAPIDoc(raw, "widgetkit/widget.json")
		require.NoError(t, err)
		assert.Equal(t, "14.0", doc.Availability[types.PlatformIOS])
		assert.Equal(t, "11.0", doc.Availability[types.PlatformMacOS])
		assert.Equal(t, "declaration", doc.AvailabilitySource)
	})

	t.Run("explicit kind wins over inference", func(t *testing.T) {
		raw := []byte(`{"path": "swiftui", "title": "SwiftUI", "kind": "framework"}`)
		doc, _, err := parseAPIDoc(raw, "swiftui.json")
		require.NoError(t, err)
		assert.Equal(t, types.KindFramework, doc.Kind)
	})

	t.Run("not found title skipped", func(t *testing.T) {
		raw := []byte(`{"path": "gone/page", "title": "Not Found"}`)
		doc, _, err := parseAPIDoc(raw, "gone/page.json")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("not found marker in body skipped", func(t *testing.T) {
		raw := []byte(`{
			"path": "gone/page2",
			"title": "Documentation",
			"abstract": "The page you're looking for can't be found."
		}`)
		doc, _, err := parseAPIDoc(raw, "gone/page2.json")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, _, err := parseAPIDoc([]byte(`{"path": "x"}`), "x.json")
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, _, err := parseAPIDoc([]byte(`{not json`), "x.json")
		assert.Error(t, err)
	})

	t.Run("path defaults to file path", func(t *testing.T) {
		doc, _, err := parseAPIDoc([]byte(`{"title": "Thing"}`), "uikit/thing.json")
		require.NoError(t, err)
		assert.Equal(t, "apple-docs://uikit/thing", doc.URI)
		assert.Equal(t, "uikit", doc.Framework)
	})
}
