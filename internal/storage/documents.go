package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// IndexDocument writes one document across the three primary collections in
// a single transaction. Re-indexing the same URI replaces the previous rows.
// When the document names its owning module, the framework alias for that
// module is registered as a side effect so alias data accretes during
// ingestion without a separate pass.
func (s *Store) IndexDocument(ctx context.Context, doc *types.Document) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if doc.URI == "" {
		return fmt.Errorf("document has no uri: %w", types.ErrInvalidInput)
	}

	// Attributes come from the declaration unless the adapter already
	// extracted them, so the attribute filter works for every source.
	if len(doc.Attributes) == 0 && doc.Declaration != "" {
		doc.Attributes = ExtractAttributes(doc.Declaration)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// FTS5 has no upsert; delete then insert.
	if _, err := tx.ExecContext(ctx, "DELETE FROM docs_fts WHERE uri = ?", doc.URI); err != nil {
		return fmt.Errorf("clearing full-text row for %s: %w", doc.URI, err)
	}

	content := ExtractOptimizedContent(doc)
	summary := ExtractSummary(doc.Content)
	if doc.Abstract != "" {
		summary = ExtractSummary(doc.Abstract)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO docs_fts (uri, source, framework, language, title, content, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.URI, string(doc.Source), doc.Framework, doc.Language, doc.Title, content, summary,
	); err != nil {
		return fmt.Errorf("indexing %s: %w", doc.URI, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO doc_metadata (
			uri, file_path, content_hash, last_indexed, word_count, source_type,
			payload, min_ios, min_macos, min_watchos, min_tvos, min_visionos,
			availability_source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			file_path = excluded.file_path,
			content_hash = excluded.content_hash,
			last_indexed = excluded.last_indexed,
			word_count = excluded.word_count,
			source_type = excluded.source_type,
			payload = excluded.payload,
			min_ios = excluded.min_ios,
			min_macos = excluded.min_macos,
			min_watchos = excluded.min_watchos,
			min_tvos = excluded.min_tvos,
			min_visionos = excluded.min_visionos,
			availability_source = excluded.availability_source`,
		doc.URI, nullIfEmpty(doc.FilePath), fmt.Sprintf("%016x", doc.ContentHash),
		doc.LastIndexed, countWords(doc.Content), string(doc.Source),
		nullIfEmpty(string(doc.Payload)),
		nullIfEmpty(doc.Availability[types.PlatformIOS]),
		nullIfEmpty(doc.Availability[types.PlatformMacOS]),
		nullIfEmpty(doc.Availability[types.PlatformWatchOS]),
		nullIfEmpty(doc.Availability[types.PlatformTVOS]),
		nullIfEmpty(doc.Availability[types.PlatformVisionOS]),
		nullIfEmpty(doc.AvailabilitySource),
	); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", doc.URI, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO doc_structured (
			uri, kind, abstract, declaration, declaration_language, overview,
			module, platforms, conforms_to, inherited_by, conforming_types, attributes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			kind = excluded.kind,
			abstract = excluded.abstract,
			declaration = excluded.declaration,
			declaration_language = excluded.declaration_language,
			overview = excluded.overview,
			module = excluded.module,
			platforms = excluded.platforms,
			conforms_to = excluded.conforms_to,
			inherited_by = excluded.inherited_by,
			conforming_types = excluded.conforming_types,
			attributes = excluded.attributes`,
		doc.URI, string(doc.Kind), nullIfEmpty(doc.Abstract),
		nullIfEmpty(doc.Declaration), nullIfEmpty(doc.DeclarationLanguage),
		nullIfEmpty(doc.Overview), nullIfEmpty(doc.Module),
		nullIfEmpty(joinList(doc.Platforms)), nullIfEmpty(joinList(doc.ConformsTo)),
		nullIfEmpty(joinList(doc.InheritedBy)), nullIfEmpty(joinList(doc.ConformingTypes)),
		nullIfEmpty(joinList(doc.Attributes)),
	); err != nil {
		return fmt.Errorf("writing structured fields for %s: %w", doc.URI, err)
	}

	if doc.Module != "" {
		if err := upsertAlias(ctx, tx, aliasFromDisplayName(doc.Module)); err != nil {
			return fmt.Errorf("registering alias for module %q: %w", doc.Module, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", doc.URI, err)
	}
	return nil
}

// IndexCodeExamples replaces the code listings attached to a document. Both
// the ordered table and the FTS mirror are rewritten.
func (s *Store) IndexCodeExamples(ctx context.Context, uri string, examples []types.CodeExample) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning examples transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM code_examples WHERE uri = ?", uri); err != nil {
		return fmt.Errorf("clearing examples for %s: %w", uri, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM code_examples_fts WHERE uri = ?", uri); err != nil {
		return fmt.Errorf("clearing example index for %s: %w", uri, err)
	}

	for i, ex := range examples {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO code_examples (uri, code, language, position) VALUES (?, ?, ?, ?)",
			uri, ex.Code, nullIfEmpty(ex.Language), i,
		); err != nil {
			return fmt.Errorf("storing example %d for %s: %w", i, uri, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO code_examples_fts (uri, code, language) VALUES (?, ?, ?)",
			uri, ex.Code, ex.Language,
		); err != nil {
			return fmt.Errorf("indexing example %d for %s: %w", i, uri, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing examples for %s: %w", uri, err)
	}
	return nil
}

// GetCodeExamples returns the listings for a document in page order.
func (s *Store) GetCodeExamples(ctx context.Context, uri string) ([]types.CodeExample, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uri, code, COALESCE(language, ''), position
		FROM code_examples WHERE uri = ? ORDER BY position`, uri)
	if err != nil {
		return nil, fmt.Errorf("loading examples for %s: %w", uri, err)
	}
	defer rows.Close()

	var examples []types.CodeExample
	for rows.Next() {
		var ex types.CodeExample
		if err := rows.Scan(&ex.ID, &ex.URI, &ex.Code, &ex.Language, &ex.Position); err != nil {
			return nil, fmt.Errorf("scanning example: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

// SearchCodeExamples runs a full-text match over the indexed code listings,
// best match first, optionally narrowed to one language.
func (s *Store) SearchCodeExamples(ctx context.Context, matchExpr, language string, limit int) ([]types.CodeExample, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	query := `
		SELECT uri, code, COALESCE(language, '')
		FROM code_examples_fts
		WHERE code_examples_fts MATCH ?`
	args := []any{matchExpr}
	if language != "" {
		query += " AND language = ?"
		args = append(args, language)
	}
	query += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching examples %q: %w", matchExpr, err)
	}
	defer rows.Close()

	var examples []types.CodeExample
	for rows.Next() {
		var ex types.CodeExample
		if err := rows.Scan(&ex.URI, &ex.Code, &ex.Language); err != nil {
			return nil, fmt.Errorf("scanning example match: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

// DocumentContent is what GetDocumentContent returns: either the verbatim
// structured payload or a markdown rendering, depending on the requested
// format.
type DocumentContent struct {
	URI     string
	Format  string // "json" or "markdown"
	Content string
}

// GetDocumentContent fetches the full content of one document. Format "json"
// returns the structured payload captured at ingestion; "markdown" renders
// the structured fields, falling back to the indexed body when no structured
// fields were stored. ErrNotFound is returned only when the URI matches no
// document at all.
func (s *Store) GetDocumentContent(ctx context.Context, uri, format string) (*DocumentContent, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	switch format {
	case "json":
		var payload sql.NullString
		err := s.db.QueryRowContext(ctx,
			"SELECT payload FROM doc_metadata WHERE uri = ?", uri).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", uri, types.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("loading payload for %s: %w", uri, err)
		}
		if !payload.Valid || payload.String == "" {
			// Indexed without a structured payload; fall through to markdown.
			return s.renderMarkdown(ctx, uri)
		}
		return &DocumentContent{URI: uri, Format: "json", Content: payload.String}, nil

	case "markdown", "":
		return s.renderMarkdown(ctx, uri)

	default:
		return nil, fmt.Errorf("unknown format %q: %w", format, types.ErrInvalidInput)
	}
}

func (s *Store) renderMarkdown(ctx context.Context, uri string) (*DocumentContent, error) {
	var (
		title, content                 string
		kind, abstract, decl, overview sql.NullString
		declLang, module               sql.NullString
		conformsTo, platforms          sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT f.title, f.content, st.kind, st.abstract, st.declaration,
		       st.declaration_language, st.overview, st.module, st.conforms_to,
		       st.platforms
		FROM docs_fts f
		LEFT JOIN doc_structured st ON st.uri = f.uri
		WHERE f.uri = ?`, uri).Scan(
		&title, &content, &kind, &abstract, &decl,
		&declLang, &overview, &module, &conformsTo, &platforms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", uri, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", uri, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if abstract.String != "" {
		b.WriteString(abstract.String)
		b.WriteString("\n\n")
	}
	if decl.String != "" {
		lang := declLang.String
		if lang == "" {
			lang = "swift"
		}
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", lang, decl.String)
	}
	if module.String != "" {
		fmt.Fprintf(&b, "**Module:** %s\n\n", module.String)
	}
	if platforms.String != "" {
		fmt.Fprintf(&b, "**Platforms:** %s\n\n", strings.Join(splitList(platforms.String), ", "))
	}
	if conformsTo.String != "" {
		fmt.Fprintf(&b, "**Conforms to:** %s\n\n", strings.Join(splitList(conformsTo.String), ", "))
	}
	if overview.String != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(overview.String)
		b.WriteString("\n")
	} else if abstract.String == "" && decl.String == "" {
		// Nothing structured was stored; fall back to the indexed body.
		b.WriteString(content)
		b.WriteString("\n")
	}

	return &DocumentContent{URI: uri, Format: "markdown", Content: b.String()}, nil
}

// SearchFilters narrows a full-text search before ranking.
type SearchFilters struct {
	Source         types.Source
	Framework      string
	Language       string
	Attributes     []string // every named attribute must be present
	IncludeArchive bool     // archive pages are excluded unless asked for
}

// SearchCandidates runs the FTS5 match and returns the raw bm25-ordered
// candidate set with structured fields joined in. Ranking policy is applied
// by the caller; this method only filters and fetches.
func (s *Store) SearchCandidates(ctx context.Context, matchExpr string, filters SearchFilters, limit int) ([]types.SearchResult, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	var (
		where []string
		args  []any
	)
	where = append(where, "docs_fts MATCH ?")
	args = append(args, matchExpr)

	if filters.Source != "" {
		where = append(where, "f.source = ?")
		args = append(args, string(filters.Source))
	} else if !filters.IncludeArchive {
		where = append(where, "f.source != ?")
		args = append(args, string(types.SourceArchive))
	}
	if filters.Framework != "" {
		where = append(where, "f.framework = ?")
		args = append(args, filters.Framework)
	}
	if filters.Language != "" {
		where = append(where, "f.language = ?")
		args = append(args, filters.Language)
	}
	for _, attr := range filters.Attributes {
		// attributes is a |-separated list; pad both sides so the match is
		// whole-element, not substring.
		where = append(where, "instr('|' || COALESCE(st.attributes, '') || '|', ?) > 0")
		args = append(args, listSeparator+attr+listSeparator)
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT f.uri, f.source, f.framework, f.language, f.title, f.summary,
		       COALESCE(st.kind, ''), f.rank,
		       m.min_ios, m.min_macos, m.min_watchos, m.min_tvos, m.min_visionos
		FROM docs_fts f
		LEFT JOIN doc_structured st ON st.uri = f.uri
		LEFT JOIN doc_metadata m ON m.uri = f.uri
		WHERE %s
		ORDER BY f.rank
		LIMIT ?`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", matchExpr, err)
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var (
			r      types.SearchResult
			source string
			kind   string
			avail  [5]sql.NullString
		)
		if err := rows.Scan(&r.URI, &source, &r.Framework, &r.Language, &r.Title,
			&r.Summary, &kind, &r.Score,
			&avail[0], &avail[1], &avail[2], &avail[3], &avail[4]); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.Source = types.Source(source)
		r.Kind = types.Kind(kind)
		r.Availability = availabilityMap(avail)
		results = append(results, r)
	}
	return results, rows.Err()
}

func availabilityMap(cols [5]sql.NullString) map[types.Platform]string {
	var m map[types.Platform]string
	for i, p := range types.AllPlatforms {
		if cols[i].Valid && cols[i].String != "" {
			if m == nil {
				m = make(map[types.Platform]string)
			}
			m[p] = cols[i].String
		}
	}
	return m
}

// FrameworkInfo summarizes one framework's footprint in the index.
type FrameworkInfo struct {
	Name          string
	Source        types.Source
	DocumentCount int
}

// ListFrameworks enumerates the indexed frameworks with document counts,
// optionally limited to one source, most documents first.
func (s *Store) ListFrameworks(ctx context.Context, source types.Source) ([]FrameworkInfo, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	query := `
		SELECT framework, source, COUNT(*)
		FROM docs_fts
		WHERE framework != ''`
	var args []any
	if source != "" {
		query += " AND source = ?"
		args = append(args, string(source))
	}
	query += " GROUP BY framework, source ORDER BY COUNT(*) DESC, framework"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing frameworks: %w", err)
	}
	defer rows.Close()

	var infos []FrameworkInfo
	for rows.Next() {
		var (
			info FrameworkInfo
			src  string
		)
		if err := rows.Scan(&info.Name, &src, &info.DocumentCount); err != nil {
			return nil, fmt.Errorf("scanning framework row: %w", err)
		}
		info.Source = types.Source(src)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// ContentHash returns the stored hash for a URI, or "" when the document has
// never been indexed. Ingestion uses it to skip unchanged artifacts.
func (s *Store) ContentHash(ctx context.Context, uri string) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	var hash sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash FROM doc_metadata WHERE uri = ?", uri).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading hash for %s: %w", uri, err)
	}
	return hash.String, nil
}

// ClearIndex removes every document, example, sample and package from the
// store. Aliases survive; they are cheap and re-registered during ingestion.
func (s *Store) ClearIndex(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	for _, table := range []string{
		"docs_fts", "doc_metadata", "doc_structured",
		"code_examples", "code_examples_fts",
		"sample_code_fts", "sample_code_meta",
		"package_dependencies", "packages",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Stats describes the store's current contents.
type Stats struct {
	Documents     int
	BySource      map[types.Source]int
	CodeExamples  int
	SampleCode    int
	Packages      int
	Aliases       int
	SchemaVersion int
	BuildMode     string
	Path          string
}

// GetStats gathers index counters for the status surface.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	st := &Stats{
		BySource:  make(map[types.Source]int),
		BuildMode: BuildMode,
		Path:      s.path,
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM docs_fts").Scan(&st.Documents); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source, COUNT(*) FROM docs_fts GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("counting by source: %w", err)
	}
	for rows.Next() {
		var (
			src string
			n   int
		)
		if err := rows.Scan(&src, &n); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning source count: %w", err)
		}
		st.BySource[types.Source(src)] = n
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	counts := []struct {
		table string
		dst   *int
	}{
		{"code_examples", &st.CodeExamples},
		{"sample_code_meta", &st.SampleCode},
		{"packages", &st.Packages},
		{"framework_aliases", &st.Aliases},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&st.SchemaVersion); err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	return st, nil
}
