package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	server, err := NewServer(filepath.Join(dir, "index.db"), filepath.Join(dir, "data"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.store.Close() })
	return server
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func seedServer(t *testing.T, s *Server) {
	t.Helper()
	doc := &types.Document{
		URI:         types.SourceAppleDocs.URI("swiftui/view"),
		Source:      types.SourceAppleDocs,
		Framework:   "swiftui",
		Language:    "swift",
		Title:       "View",
		Content:     "A type that represents part of your app's user interface.",
		Kind:        types.KindProtocol,
		Declaration: "@MainActor protocol View",
		Module:      "SwiftUI",
		LastIndexed: time.Now().UTC(),
		Payload:     []byte(`{"title":"View"}`),
	}
	require.NoError(t, s.store.IndexDocument(context.Background(), doc))
}

func TestNewServerWiresComponents(t *testing.T) {
	server := newTestServer(t)
	assert.NotNil(t, server.store)
	assert.NotNil(t, server.indexer)
	assert.NotNil(t, server.searcher)
	assert.NotNil(t, server.mcp)
}

func TestHandleSearchDocs(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	seedServer(t, server)

	t.Run("returns ranked results", func(t *testing.T) {
		res, err := server.handleSearchDocs(ctx, callRequest(map[string]interface{}{
			"query": "View",
		}))
		require.NoError(t, err)

		payload := resultJSON(t, res)
		assert.EqualValues(t, 1, payload["count"])
		results := payload["results"].([]interface{})
		first := results[0].(map[string]interface{})
		assert.Equal(t, "apple-docs://swiftui/view", first["uri"])
		assert.EqualValues(t, 1, first["rank"])
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := server.handleSearchDocs(ctx, callRequest(map[string]interface{}{}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := server.handleSearchDocs(ctx, callRequest(map[string]interface{}{
			"query": "view", "limit": float64(500),
		}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	})

	t.Run("bad platform in min_platform_versions", func(t *testing.T) {
		_, err := server.handleSearchDocs(ctx, callRequest(map[string]interface{}{
			"query":                 "view",
			"min_platform_versions": map[string]interface{}{"linux": "1.0"},
		}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	})
}

func TestHandleGetDocContent(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	seedServer(t, server)

	t.Run("markdown by default", func(t *testing.T) {
		res, err := server.handleGetDocContent(ctx, callRequest(map[string]interface{}{
			"uri": "apple-docs://swiftui/view",
		}))
		require.NoError(t, err)
		payload := resultJSON(t, res)
		assert.Equal(t, "markdown", payload["format"])
		assert.Contains(t, payload["content"], "# View")
	})

	t.Run("json payload", func(t *testing.T) {
		res, err := server.handleGetDocContent(ctx, callRequest(map[string]interface{}{
			"uri": "apple-docs://swiftui/view", "format": "json",
		}))
		require.NoError(t, err)
		payload := resultJSON(t, res)
		assert.Equal(t, "json", payload["format"])
	})

	t.Run("not found", func(t *testing.T) {
		_, err := server.handleGetDocContent(ctx, callRequest(map[string]interface{}{
			"uri": "apple-docs://missing",
		}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)
	})

	t.Run("missing uri", func(t *testing.T) {
		_, err := server.handleGetDocContent(ctx, callRequest(map[string]interface{}{}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	})
}

func TestHandleListAndResolveFrameworks(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	seedServer(t, server)

	res, err := server.handleListFrameworks(ctx, callRequest(nil))
	require.NoError(t, err)
	payload := resultJSON(t, res)
	assert.EqualValues(t, 1, payload["count"])

	res, err = server.handleResolveFramework(ctx, callRequest(map[string]interface{}{
		"name": "Swift UI",
	}))
	require.NoError(t, err)
	payload = resultJSON(t, res)
	assert.Equal(t, "swiftui", payload["identifier"])
}

func TestHandleGetStatus(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	seedServer(t, server)

	res, err := server.handleGetStatus(ctx, callRequest(nil))
	require.NoError(t, err)
	payload := resultJSON(t, res)
	assert.EqualValues(t, 1, payload["documents"])
	assert.NotEmpty(t, payload["driver"])
	assert.EqualValues(t, 4, payload["schema_version"])
}

func TestHandleIndexDocs(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("no data dir configured", func(t *testing.T) {
		bare := newTestServer(t)
		bare.dataDir = ""
		_, err := bare.handleIndexDocs(ctx, callRequest(nil))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	})

	t.Run("builds from explicit data dir", func(t *testing.T) {
		dataDir := t.TempDir()
		docDir := filepath.Join(dataDir, "hig")
		require.NoError(t, os.MkdirAll(docDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(docDir, "buttons.md"),
			[]byte("# Buttons\n\nUse buttons for actions.\n"), 0o644))

		res, err := server.handleIndexDocs(ctx, callRequest(map[string]interface{}{
			"data_dir": dataDir,
		}))
		require.NoError(t, err)
		payload := resultJSON(t, res)
		assert.EqualValues(t, 1, payload["indexed"])
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		_, err := server.handleIndexDocs(ctx, callRequest(map[string]interface{}{
			"data_dir": t.TempDir(),
			"sources":  []interface{}{"reddit"},
		}))
		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	})
}
