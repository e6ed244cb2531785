package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexDocsTool returns the tool definition for index_docs.
func indexDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_docs",
		Description: "Build or refresh the documentation index from crawled artifacts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"data_dir": map[string]interface{}{
					"type":        "string",
					"description": "Crawler output root containing one subdirectory per source; defaults to the server's configured data directory",
				},
				"sources": map[string]interface{}{
					"type":        "array",
					"description": "Limit the build to these sources; all sources when omitted",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"apple-docs", "swift-evolution", "swift-book", "hig", "archive", "packages"},
					},
				},
				"rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, clear the index and re-ingest everything ignoring content hashes",
					"default":     false,
				},
			},
		},
	}
}

// searchDocsTool returns the tool definition for search_docs.
func searchDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_docs",
		Description: "Search Apple developer documentation, Swift Evolution proposals, the Swift book, design guidelines and the package registry. A leading source token ('swift-evolution actors') scopes the search; @MainActor style attribute mentions become filters.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one source",
					"enum":        []string{"apple-docs", "swift-evolution", "swift-book", "hig", "archive", "packages"},
				},
				"framework": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one framework (e.g. 'swiftui')",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one language (e.g. 'swift', 'objc')",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"include_archive": map[string]interface{}{
					"type":        "boolean",
					"description": "Include legacy archive documentation, excluded by default",
					"default":     false,
				},
				"min_platform_versions": map[string]interface{}{
					"type":        "object",
					"description": "Deployment targets keyed by platform (e.g. {\"iOS\": \"16.0\"}); results requiring newer versions are dropped",
					"additionalProperties": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getDocContentTool returns the tool definition for get_doc_content.
func getDocContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_doc_content",
		Description: "Fetch the full content of one document by URI",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"uri": map[string]interface{}{
					"type":        "string",
					"description": "Document URI from a search result, e.g. 'apple-docs://swiftui/view'",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Content format",
					"enum":        []string{"markdown", "json"},
					"default":     "markdown",
				},
				"include_examples": map[string]interface{}{
					"type":        "boolean",
					"description": "Append the document's code listings",
					"default":     false,
				},
			},
			Required: []string{"uri"},
		},
	}
}

// listFrameworksTool returns the tool definition for list_frameworks.
func listFrameworksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_frameworks",
		Description: "List indexed frameworks with document counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one source",
					"enum":        []string{"apple-docs", "swift-evolution", "swift-book", "hig", "archive", "packages"},
				},
			},
		},
	}
}

// resolveFrameworkTool returns the tool definition for resolve_framework.
func resolveFrameworkTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_framework",
		Description: "Resolve any spelling of a framework name ('App Intents', 'AppIntents', 'appintents') to its canonical identifier",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Framework name in any spelling",
				},
			},
			Required: []string{"name"},
		},
	}
}

// getStatusTool returns the tool definition for get_status.
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index statistics: document counts per source, schema version and driver",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
