package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// UpsertPackage records one package-registry entry, keyed by (name, owner),
// and returns its row id for dependency wiring.
func (s *Store) UpsertPackage(ctx context.Context, pkg *types.PackageRecord) (int64, error) {
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	if pkg.Name == "" || pkg.Owner == "" {
		return 0, fmt.Errorf("package needs name and owner: %w", types.ErrInvalidInput)
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO packages (name, owner, repo_url, stars, official, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, owner) DO UPDATE SET
			repo_url = excluded.repo_url,
			stars = excluded.stars,
			official = excluded.official,
			description = excluded.description
		RETURNING id`,
		pkg.Name, pkg.Owner, nullIfEmpty(pkg.RepoURL), pkg.Stars,
		boolToInt(pkg.Official), nullIfEmpty(pkg.Description),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting package %s/%s: %w", pkg.Owner, pkg.Name, err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// AddPackageDependency records a directed edge between two stored packages.
// Re-adding an existing edge is a no-op.
func (s *Store) AddPackageDependency(ctx context.Context, packageID, dependsOnID int64) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO package_dependencies (package_id, depends_on_id)
		VALUES (?, ?)
		ON CONFLICT(package_id, depends_on_id) DO NOTHING`,
		packageID, dependsOnID)
	if err != nil {
		return fmt.Errorf("adding dependency %d -> %d: %w", packageID, dependsOnID, err)
	}
	return nil
}

// GetPackageByName looks a package up by name alone, preferring official
// entries, then higher star counts, when owners collide on the name.
func (s *Store) GetPackageByName(ctx context.Context, name string) (*types.PackageRecord, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	var (
		pkg      types.PackageRecord
		official int
		repoURL  sql.NullString
		desc     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner, repo_url, stars, official, description
		FROM packages WHERE name = ?
		ORDER BY official DESC, stars DESC
		LIMIT 1`, name).Scan(
		&pkg.ID, &pkg.Name, &pkg.Owner, &repoURL, &pkg.Stars, &official, &desc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("package %q: %w", name, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading package %q: %w", name, err)
	}
	pkg.Official = official != 0
	pkg.RepoURL = repoURL.String
	pkg.Description = desc.String
	return &pkg, nil
}

// ListPackageDependencies returns the packages the given package depends on,
// ordered by name.
func (s *Store) ListPackageDependencies(ctx context.Context, packageID int64) ([]types.PackageRecord, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.owner, p.repo_url, p.stars, p.official, p.description
		FROM package_dependencies d
		JOIN packages p ON p.id = d.depends_on_id
		WHERE d.package_id = ?
		ORDER BY p.name`, packageID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies of %d: %w", packageID, err)
	}
	defer rows.Close()

	var deps []types.PackageRecord
	for rows.Next() {
		var (
			pkg      types.PackageRecord
			official int
			repoURL  sql.NullString
			desc     sql.NullString
		)
		if err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.Owner, &repoURL,
			&pkg.Stars, &official, &desc); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		pkg.Official = official != 0
		pkg.RepoURL = repoURL.String
		pkg.Description = desc.String
		deps = append(deps, pkg)
	}
	return deps, rows.Err()
}

// UpsertSampleCode records one downloadable sample-code catalog entry. The
// FTS row is replaced, the metadata row upserted.
func (s *Store) UpsertSampleCode(ctx context.Context, entry *types.SampleCodeEntry) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if entry.URL == "" {
		return fmt.Errorf("sample entry has no url: %w", types.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sample transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM sample_code_fts WHERE url = ?", entry.URL); err != nil {
		return fmt.Errorf("clearing sample index for %s: %w", entry.URL, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sample_code_fts (url, framework, title, description)
		VALUES (?, ?, ?, ?)`,
		entry.URL, entry.Framework, entry.Title, entry.Description,
	); err != nil {
		return fmt.Errorf("indexing sample %s: %w", entry.URL, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sample_code_meta (
			url, archive_name, web_url,
			min_ios, min_macos, min_watchos, min_tvos, min_visionos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			archive_name = excluded.archive_name,
			web_url = excluded.web_url,
			min_ios = excluded.min_ios,
			min_macos = excluded.min_macos,
			min_watchos = excluded.min_watchos,
			min_tvos = excluded.min_tvos,
			min_visionos = excluded.min_visionos`,
		entry.URL, nullIfEmpty(entry.ArchiveName), nullIfEmpty(entry.WebURL),
		nullIfEmpty(entry.Availability[types.PlatformIOS]),
		nullIfEmpty(entry.Availability[types.PlatformMacOS]),
		nullIfEmpty(entry.Availability[types.PlatformWatchOS]),
		nullIfEmpty(entry.Availability[types.PlatformTVOS]),
		nullIfEmpty(entry.Availability[types.PlatformVisionOS]),
	); err != nil {
		return fmt.Errorf("storing sample metadata for %s: %w", entry.URL, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sample %s: %w", entry.URL, err)
	}
	return nil
}

// SearchSampleCode runs a full-text match over the sample catalog. Catalog
// results are browsed rather than ranked, so they come back in title order.
func (s *Store) SearchSampleCode(ctx context.Context, matchExpr, framework string, limit int) ([]types.SampleCodeEntry, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	query := `
		SELECT f.url, f.framework, f.title, f.description,
		       m.archive_name, m.web_url,
		       m.min_ios, m.min_macos, m.min_watchos, m.min_tvos, m.min_visionos
		FROM sample_code_fts f
		LEFT JOIN sample_code_meta m ON m.url = f.url
		WHERE sample_code_fts MATCH ?`
	args := []any{matchExpr}
	if framework != "" {
		query += " AND f.framework = ?"
		args = append(args, framework)
	}
	query += " ORDER BY f.title LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching samples %q: %w", matchExpr, err)
	}
	defer rows.Close()

	var entries []types.SampleCodeEntry
	for rows.Next() {
		var (
			e       types.SampleCodeEntry
			archive sql.NullString
			webURL  sql.NullString
			avail   [5]sql.NullString
		)
		if err := rows.Scan(&e.URL, &e.Framework, &e.Title, &e.Description,
			&archive, &webURL,
			&avail[0], &avail[1], &avail[2], &avail[3], &avail[4]); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		e.ArchiveName = archive.String
		e.WebURL = webURL.String
		e.Availability = availabilityMap(avail)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
