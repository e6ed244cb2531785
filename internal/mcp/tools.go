package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jgivens/appledocs-mcp/internal/indexer"
	"github.com/jgivens/appledocs-mcp/internal/searcher"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeIndexInProgress = -32001 // Another build is already running
	ErrorCodeNotFound        = -32002 // Document does not exist
	ErrorCodeEmptyQuery      = -32003 // Query has no searchable terms
	ErrorCodeStoreTooNew     = -32004 // Store written by a newer build
)

// handleIndexDocs handles the index_docs tool invocation.
func (s *Server) handleIndexDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	dataDir := getStringDefault(args, "data_dir", s.dataDir)
	if dataDir == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "no data directory configured", map[string]interface{}{
			"param":  "data_dir",
			"reason": "missing and no default configured",
		})
	}

	var sources []types.Source
	if rawSources, ok := args["sources"].([]interface{}); ok {
		for _, raw := range rawSources {
			name, _ := raw.(string)
			src, ok := types.ParseSource(name)
			if !ok {
				return nil, newMCPError(ErrorCodeInvalidParams, "unknown source", map[string]interface{}{
					"param": "sources",
					"value": name,
				})
			}
			sources = append(sources, src)
		}
	}

	opts := indexer.Options{
		DataDir: dataDir,
		Sources: sources,
		Rebuild: getBoolDefault(args, "rebuild", false),
		Progress: func(processed int) {
			s.log.Info("indexing", "processed", processed)
		},
	}

	stats, err := s.indexer.Build(ctx, opts)
	if errors.Is(err, types.ErrIndexInProgress) {
		return nil, newMCPError(ErrorCodeIndexInProgress, "an index build is already running", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// The corpus changed under any cached results.
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"indexed":     stats.Indexed,
		"skipped":     stats.Skipped,
		"failed":      stats.Failed,
		"duration_ms": stats.Duration.Milliseconds(),
	}
	if len(stats.Errors) > 0 {
		if len(stats.Errors) > 5 {
			response["errors"] = stats.Errors[:5]
			response["error_count"] = len(stats.Errors)
		} else {
			response["errors"] = stats.Errors
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDocs handles the search_docs tool invocation.
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	req := searcher.Request{
		Query:          query,
		Limit:          limit,
		Source:         getStringDefault(args, "source", ""),
		Framework:      getStringDefault(args, "framework", ""),
		Language:       getStringDefault(args, "language", ""),
		IncludeArchive: getBoolDefault(args, "include_archive", false),
	}

	if raw, ok := args["min_platform_versions"].(map[string]interface{}); ok {
		req.MinPlatformVersions = make(map[types.Platform]string, len(raw))
		for name, v := range raw {
			version, _ := v.(string)
			platform, ok := searcher.CanonicalPlatform(name)
			if !ok {
				return nil, newMCPError(ErrorCodeInvalidParams, "unknown platform", map[string]interface{}{
					"param": "min_platform_versions",
					"value": name,
				})
			}
			req.MinPlatformVersions[platform] = version
		}
	}

	results, err := s.searcher.Search(ctx, req)
	if errors.Is(err, types.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query has no searchable terms", nil)
	}
	if errors.Is(err, types.ErrInvalidInput) {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": formatResults(results),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetDocContent handles the get_doc_content tool invocation.
func (s *Server) handleGetDocContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	uri, ok := args["uri"].(string)
	if !ok || uri == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "uri parameter is required", map[string]interface{}{
			"param":  "uri",
			"reason": "missing or empty",
		})
	}

	format := getStringDefault(args, "format", "markdown")

	content, err := s.store.GetDocumentContent(ctx, uri, format)
	if errors.Is(err, types.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "document not found", map[string]interface{}{
			"uri": uri,
		})
	}
	if errors.Is(err, types.ErrInvalidInput) {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "content fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"uri":     content.URI,
		"format":  content.Format,
		"content": content.Content,
	}

	if getBoolDefault(args, "include_examples", false) {
		examples, err := s.store.GetCodeExamples(ctx, uri)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "example fetch failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if len(examples) > 0 {
			formatted := make([]map[string]interface{}, 0, len(examples))
			for _, ex := range examples {
				formatted = append(formatted, map[string]interface{}{
					"language": ex.Language,
					"code":     ex.Code,
				})
			}
			response["examples"] = formatted
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListFrameworks handles the list_frameworks tool invocation.
func (s *Server) handleListFrameworks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var source types.Source
	if name := getStringDefault(args, "source", ""); name != "" {
		src, ok := types.ParseSource(name)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "unknown source", map[string]interface{}{
				"param": "source",
				"value": name,
			})
		}
		source = src
	}

	frameworks, err := s.store.ListFrameworks(ctx, source)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "framework listing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	formatted := make([]map[string]interface{}, 0, len(frameworks))
	for _, fw := range frameworks {
		formatted = append(formatted, map[string]interface{}{
			"name":      fw.Name,
			"source":    string(fw.Source),
			"documents": fw.DocumentCount,
		})
	}
	response := map[string]interface{}{
		"count":      len(formatted),
		"frameworks": formatted,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleResolveFramework handles the resolve_framework tool invocation.
func (s *Server) handleResolveFramework(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	alias, err := s.store.ResolveFramework(ctx, name)
	if errors.Is(err, types.ErrInvalidInput) {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "resolution failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"identifier":   alias.Identifier,
		"import_name":  alias.ImportName,
		"display_name": alias.DisplayName,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation.
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.GetStats(ctx)
	if errors.Is(err, types.ErrStoreTooNew) {
		return nil, newMCPError(ErrorCodeStoreTooNew, "index was written by a newer build", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "status failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	bySource := make(map[string]interface{}, len(stats.BySource))
	for src, n := range stats.BySource {
		bySource[string(src)] = n
	}
	response := map[string]interface{}{
		"documents":      stats.Documents,
		"by_source":      bySource,
		"code_examples":  stats.CodeExamples,
		"sample_code":    stats.SampleCode,
		"packages":       stats.Packages,
		"aliases":        stats.Aliases,
		"schema_version": stats.SchemaVersion,
		"driver":         stats.BuildMode,
		"db_path":        stats.Path,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// formatResults shapes search results for the JSON response.
func formatResults(results []types.SearchResult) []map[string]interface{} {
	formatted := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"rank":      r.Rank,
			"uri":       r.URI,
			"source":    string(r.Source),
			"title":     r.Title,
			"score":     r.Score,
			"framework": r.Framework,
		}
		if r.Summary != "" {
			entry["summary"] = r.Summary
		}
		if r.Kind != "" && r.Kind != types.KindUnknown {
			entry["kind"] = string(r.Kind)
		}
		if len(r.Availability) > 0 {
			avail := make(map[string]string, len(r.Availability))
			for p, v := range r.Availability {
				avail[string(p)] = v
			}
			entry["availability"] = avail
		}
		formatted = append(formatted, entry)
	}
	return formatted
}

// newMCPError builds a protocol error; the framework handles encoding.
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// MCPError represents an MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value.
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value.
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
