package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jgivens/appledocs-mcp/internal/indexer"
	"github.com/jgivens/appledocs-mcp/internal/searcher"
	"github.com/jgivens/appledocs-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name.
	ServerName = "appledocs-mcp"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp      *server.MCPServer
	store    *storage.Store
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	dataDir  string
	log      *slog.Logger
}

// NewServer opens the store at dbPath and wires up the indexer, searcher and
// tool registrations. dataDir is the default crawler output root used when
// index_docs is called without one.
func NewServer(dbPath, dataDir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".appledocs", "index.db")
	}

	store, err := storage.NewStore(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	srch, err := searcher.New(store, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating searcher: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		store:    store,
		indexer:  indexer.New(store, logger),
		searcher: srch,
		dataDir:  dataDir,
		log:      logger,
	}
	s.registerTools()
	return s, nil
}

// Serve runs the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	s.log.Info("serving", "db", s.store.Path(), "driver", storage.BuildMode)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexDocsTool(), s.handleIndexDocs)
	s.mcp.AddTool(searchDocsTool(), s.handleSearchDocs)
	s.mcp.AddTool(getDocContentTool(), s.handleGetDocContent)
	s.mcp.AddTool(listFrameworksTool(), s.handleListFrameworks)
	s.mcp.AddTool(resolveFrameworkTool(), s.handleResolveFramework)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
