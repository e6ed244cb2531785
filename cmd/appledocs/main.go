package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jgivens/appledocs-mcp/internal/indexer"
	"github.com/jgivens/appledocs-mcp/internal/mcp"
	"github.com/jgivens/appledocs-mcp/internal/storage"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("AppleDocs MCP Server\n")
			fmt.Printf("Version: %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Build Mode: %s\n", storage.BuildMode)
			fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
			os.Exit(0)
		case "index":
			os.Exit(runIndex(os.Args[2:]))
		}
	}
	os.Exit(runServe())
}

// newLogger builds the process logger. Everything goes to stderr; stdout is
// reserved for the MCP protocol.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("APPLEDOCS_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if p := os.Getenv("APPLEDOCS_DB_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "appledocs.db"
	}
	return filepath.Join(home, ".appledocs", "index.db")
}

func runServe() int {
	logger := newLogger()
	slog.SetDefault(logger)

	logger.Info("starting", "version", version,
		"build_mode", storage.BuildMode, "driver", storage.DriverName)

	server, err := mcp.NewServer(defaultDBPath(), os.Getenv("APPLEDOCS_DATA_DIR"), logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			return 1
		}
	}

	logger.Info("stopped")
	return 0
}

// runIndex builds the index from the command line, without starting the
// server. This is also the recovery path when a schema change cannot be
// migrated in place.
func runIndex(args []string) int {
	logger := newLogger()
	slog.SetDefault(logger)

	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dataDir := fs.String("data", os.Getenv("APPLEDOCS_DATA_DIR"), "crawler output root")
	dbPath := fs.String("db", defaultDBPath(), "index database path")
	rebuild := fs.Bool("rebuild", false, "clear the index and re-ingest everything")
	sourceList := fs.String("sources", "", "comma-separated sources to build (default all)")
	_ = fs.Parse(args)

	if *dataDir == "" {
		logger.Error("no data directory; pass -data or set APPLEDOCS_DATA_DIR")
		return 2
	}

	var sources []types.Source
	if *sourceList != "" {
		for _, name := range strings.Split(*sourceList, ",") {
			src, ok := types.ParseSource(strings.TrimSpace(name))
			if !ok {
				logger.Error("unknown source", "source", name)
				return 2
			}
			sources = append(sources, src)
		}
	}

	dbFile := *dbPath
	if *rebuild {
		// A rebuild must work even when the existing file has an
		// unmigratable schema; start from nothing.
		if err := os.Remove(dbFile); err != nil && !os.IsNotExist(err) {
			logger.Error("removing old index", "error", err)
			return 1
		}
	}

	store, err := storage.NewStore(dbFile, logger)
	if err != nil {
		logger.Error("opening store", "error", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	ix := indexer.New(store, logger)
	stats, err := ix.Build(context.Background(), indexer.Options{
		DataDir: *dataDir,
		Sources: sources,
		Rebuild: *rebuild,
		Progress: func(processed int) {
			logger.Info("indexing", "processed", processed)
		},
	})
	if err != nil {
		logger.Error("build failed", "error", err)
		return 1
	}

	logger.Info("done", "indexed", stats.Indexed, "skipped", stats.Skipped,
		"failed", stats.Failed, "duration", stats.Duration.String())
	return 0
}
