package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// Structured-field lookups bypass the full-text index entirely: they match
// exact values in doc_structured and order alphabetically by title with a
// zero score, since bm25 relevance has no meaning for an exact facet match.

const structuredQuery = `
	SELECT f.uri, f.source, f.framework, f.language, f.title, f.summary,
	       COALESCE(st.kind, ''),
	       m.min_ios, m.min_macos, m.min_watchos, m.min_tvos, m.min_visionos
	FROM doc_structured st
	JOIN docs_fts f ON f.uri = st.uri
	LEFT JOIN doc_metadata m ON m.uri = st.uri
	WHERE %s
	ORDER BY f.title
	LIMIT ?`

func (s *Store) queryStructured(ctx context.Context, where string, args ...any) ([]types.SearchResult, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(structuredQuery, where), args...)
	if err != nil {
		return nil, fmt.Errorf("structured lookup: %w", err)
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
			&r.Summary, &kind,
			&avail[0], &avail[1], &avail[2], &avail[3], &avail[4]); err != nil {
			return nil, fmt.Errorf("scanning structured row: %w", err)
		}
		r.Source = types.Source(source)
		r.Kind = types.Kind(kind)
		r.Availability = availabilityMap(avail)
		r.Rank = len(results) + 1
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchByKind lists documents of one kind, optionally scoped to a framework.
func (s *Store) SearchByKind(ctx context.Context, kind types.Kind, framework string, limit int) ([]types.SearchResult, error) {
	if framework != "" {
		return s.queryStructured(ctx, "st.kind = ? AND f.framework = ?", string(kind), framework, limit)
	}
	return s.queryStructured(ctx, "st.kind = ?", string(kind), limit)
}

// SearchByModule lists documents belonging to one module.
func (s *Store) SearchByModule(ctx context.Context, module string, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx, "st.module = ?", module, limit)
}

// SearchConformsTo lists types that declare conformance to the named
// protocol.
func (s *Store) SearchConformsTo(ctx context.Context, protocol string, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx,
		"instr('|' || COALESCE(st.conforms_to, '') || '|', ?) > 0",
		listSeparator+protocol+listSeparator, limit)
}

// SearchInheritedBy lists documents recording the named type among their
// subclasses.
func (s *Store) SearchInheritedBy(ctx context.Context, typeName string, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx,
		"instr('|' || COALESCE(st.inherited_by, '') || '|', ?) > 0",
		listSeparator+typeName+listSeparator, limit)
}

// SearchConformingTypes lists protocols that record the named type among
// their conformers.
func (s *Store) SearchConformingTypes(ctx context.Context, typeName string, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx,
		"instr('|' || COALESCE(st.conforming_types, '') || '|', ?) > 0",
		listSeparator+typeName+listSeparator, limit)
}

// SearchByDeclaration lists documents whose declaration contains the given
// fragment, for finding APIs by signature shape.
func (s *Store) SearchByDeclaration(ctx context.Context, fragment string, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx,
		"st.declaration LIKE '%' || ? || '%'", fragment, limit)
}

// SearchByPlatform lists documents whose platform list names the given
// platform.
func (s *Store) SearchByPlatform(ctx context.Context, platform types.Platform, limit int) ([]types.SearchResult, error) {
	return s.queryStructured(ctx,
		"instr('|' || COALESCE(st.platforms, '') || '|', ?) > 0",
		listSeparator+string(platform)+listSeparator, limit)
}
