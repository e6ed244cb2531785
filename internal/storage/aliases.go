package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// execer abstracts *sql.DB and *sql.Tx so alias registration can run inside
// an ingestion transaction or standalone.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// aliasFromDisplayName derives the three spellings from a human-readable
// module name: "App Intents" yields identifier "appintents" and import name
// "AppIntents".
func aliasFromDisplayName(display string) types.FrameworkAlias {
	importName := strings.ReplaceAll(display, " ", "")
	return types.FrameworkAlias{
		Identifier:  strings.ToLower(importName),
		ImportName:  importName,
		DisplayName: display,
	}
}

func upsertAlias(ctx context.Context, db execer, alias types.FrameworkAlias) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO framework_aliases (identifier, import_name, display_name)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			import_name = excluded.import_name,
			display_name = excluded.display_name`,
		alias.Identifier, alias.ImportName, alias.DisplayName)
	return err
}

// RegisterFrameworkAlias records the spellings for one framework, keyed by
// the lowercase identifier. Re-registering updates the stored spellings.
func (s *Store) RegisterFrameworkAlias(ctx context.Context, alias types.FrameworkAlias) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if alias.Identifier == "" {
		return fmt.Errorf("alias has no identifier: %w", types.ErrInvalidInput)
	}
	if err := upsertAlias(ctx, s.db, alias); err != nil {
		return fmt.Errorf("registering alias %q: %w", alias.Identifier, err)
	}
	return nil
}

// ResolveFramework maps any spelling of a framework name to its canonical
// identifier. Input is normalized by lowercasing and stripping spaces, which
// collapses all three stored spellings onto the identifier; exact matches on
// the import or display spelling are also honored. Unknown names resolve to
// their own normalized form so lookups never fail outright.
func (s *Store) ResolveFramework(ctx context.Context, name string) (types.FrameworkAlias, error) {
	if err := s.acquire(ctx); err != nil {
		return types.FrameworkAlias{}, err
	}
	defer s.release()

	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if normalized == "" {
		return types.FrameworkAlias{}, fmt.Errorf("empty framework name: %w", types.ErrInvalidInput)
	}

	var alias types.FrameworkAlias
	err := s.db.QueryRowContext(ctx, `
		SELECT identifier, import_name, display_name
		FROM framework_aliases
		WHERE identifier = ? OR import_name = ? OR display_name = ?
		   OR LOWER(import_name) = ? OR LOWER(display_name) = ?
		LIMIT 1`,
		normalized, name, name, normalized, strings.ToLower(name),
	).Scan(&alias.Identifier, &alias.ImportName, &alias.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		// No registration; the normalized form is the best canonical guess.
		return types.FrameworkAlias{
			Identifier:  normalized,
			ImportName:  strings.ReplaceAll(strings.TrimSpace(name), " ", ""),
			DisplayName: strings.TrimSpace(name),
		}, nil
	}
	if err != nil {
		return types.FrameworkAlias{}, fmt.Errorf("resolving framework %q: %w", name, err)
	}
	return alias, nil
}

// ListAliases returns every registered alias ordered by identifier.
func (s *Store) ListAliases(ctx context.Context) ([]types.FrameworkAlias, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	rows, err := s.db.QueryContext(ctx,
		"SELECT identifier, import_name, display_name FROM framework_aliases ORDER BY identifier")
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	var aliases []types.FrameworkAlias
	for rows.Next() {
		var a types.FrameworkAlias
		if err := rows.Scan(&a.Identifier, &a.ImportName, &a.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}
