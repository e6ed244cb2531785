package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jgivens/appledocs-mcp/internal/storage"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// progressInterval is how many documents pass between progress callbacks.
const progressInterval = 100

// Indexer drives corpus builds against a store.
type Indexer struct {
	store *storage.Store
	log   *slog.Logger
	lock  buildLock
}

// New creates an indexer bound to a store.
func New(store *storage.Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, log: logger}
}

// Options configures one build run.
type Options struct {
	// DataDir is the crawler output root, with one subdirectory per source.
	DataDir string

	// Sources limits the run to the named sources; empty means all.
	Sources []types.Source

	// Rebuild clears the index first and re-ingests everything, ignoring
	// stored content hashes.
	Rebuild bool

	// Progress, when set, is called periodically with the number of
	// documents processed so far.
	Progress func(processed int)
}

// Statistics summarizes a completed build.
type Statistics struct {
	Indexed  int
	Skipped  int
	Failed   int
	Duration time.Duration
	Errors   []string
}

// Build ingests the configured sources serially. Only one build may run per
// process; concurrent calls fail with ErrIndexInProgress. Per-document
// failures are recorded and skipped so one malformed artifact never aborts a
// corpus build.
func (ix *Indexer) Build(ctx context.Context, opts Options) (*Statistics, error) {
	if !ix.lock.TryAcquire() {
		return nil, types.ErrIndexInProgress
	}
	defer ix.lock.Release()

	start := time.Now()
	stats := &Statistics{}

	if opts.Rebuild {
		ix.log.Info("clearing index for rebuild")
		if err := ix.store.ClearIndex(ctx); err != nil {
			return nil, fmt.Errorf("clearing index: %w", err)
		}
	}

	sources := opts.Sources
	if len(sources) == 0 {
		sources = types.AllSources
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ix.log.Info("ingesting source", "source", string(src))
		if err := ix.buildSource(ctx, src, opts, stats); err != nil {
			return stats, fmt.Errorf("ingesting %s: %w", src, err)
		}
	}

	stats.Duration = time.Since(start)
	ix.log.Info("build complete",
		"indexed", stats.Indexed, "skipped", stats.Skipped,
		"failed", stats.Failed, "duration", stats.Duration)
	return stats, nil
}

func (ix *Indexer) buildSource(ctx context.Context, src types.Source, opts Options, stats *Statistics) error {
	switch src {
	case types.SourcePackages:
		return ix.buildSnapshot(ctx, filepath.Join(opts.DataDir, "packages.json"), stats, ix.ingestPackages)
	case types.SourceAppleDocs, types.SourceEvolution, types.SourceSwiftBook,
		types.SourceHIG, types.SourceArchive:
		if err := ix.buildTree(ctx, src, opts, stats); err != nil {
			return err
		}
		if src == types.SourceAppleDocs {
			return ix.buildSnapshot(ctx, filepath.Join(opts.DataDir, "sample-code.json"), stats, ix.ingestSampleCode)
		}
		return nil
	default:
		return fmt.Errorf("unknown source %q: %w", src, types.ErrInvalidInput)
	}
}

// buildSnapshot ingests a single-file snapshot (package registry, sample
// catalog). A missing snapshot file is not an error; that source simply was
// not crawled.
func (ix *Indexer) buildSnapshot(ctx context.Context, path string, stats *Statistics,
	ingest func(context.Context, []byte) (int, int, []string)) error {

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		ix.log.Debug("snapshot absent, skipping", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	indexed, failed, errs := ingest(ctx, raw)
	stats.Indexed += indexed
	stats.Failed += failed
	stats.Errors = append(stats.Errors, errs...)
	return nil
}

// buildTree walks one source's artifact directory and ingests every file the
// source's adapter understands.
func (ix *Indexer) buildTree(ctx context.Context, src types.Source, opts Options, stats *Statistics) error {
	root := filepath.Join(opts.DataDir, string(src))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		ix.log.Debug("source directory absent, skipping", "path", root)
		return nil
	}

	processed := 0
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !wantedFile(src, d.Name()) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if err := ix.ingestFile(ctx, src, path, rel, opts.Rebuild, stats); err != nil {
			// Recorded, not fatal: the rest of the corpus still builds.
			stats.Failed++
			stats.Errors = append(stats.Errors, err.Error())
			ix.log.Warn("document failed", "path", rel, "error", err)
		}

		processed++
		if opts.Progress != nil && processed%progressInterval == 0 {
			opts.Progress(processed)
		}
		return nil
	})
}

func wantedFile(src types.Source, name string) bool {
	switch src {
	case types.SourceAppleDocs:
		return strings.HasSuffix(name, ".json")
	default:
		return strings.HasSuffix(name, ".md")
	}
}

func (ix *Indexer) ingestFile(ctx context.Context, src types.Source, path, rel string, rebuild bool, stats *Statistics) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}

	var (
		doc      *types.Document
		examples []types.CodeExample
	)
	switch src {
	case types.SourceAppleDocs:
		doc, examples, err = parseAPIDoc(raw, rel)
	case types.SourceEvolution:
		doc, err = parseProposal(raw, rel)
	default:
		doc, err = parseMarkdownDoc(raw, rel, src)
	}
	if err != nil {
		return err
	}
	if doc == nil {
		// Not-found artifact or unimplemented proposal.
		stats.Skipped++
		return nil
	}
	doc.FilePath = path

	if !rebuild {
		stored, err := ix.store.ContentHash(ctx, doc.URI)
		if err != nil {
			return err
		}
		if stored == fmt.Sprintf("%016x", doc.ContentHash) {
			stats.Skipped++
			return nil
		}
	}

	if err := ix.store.IndexDocument(ctx, doc); err != nil {
		return err
	}
	if len(examples) > 0 {
		if err := ix.store.IndexCodeExamples(ctx, doc.URI, examples); err != nil {
			return err
		}
	}
	stats.Indexed++
	return nil
}
