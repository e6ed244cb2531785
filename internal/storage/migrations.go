package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// CurrentSchemaVersion is the schema version this build writes. It is
// persisted in PRAGMA user_version and checked at every open.
const CurrentSchemaVersion = 4

// RebuildCommand names the operator action for stores that cannot be
// migrated in place.
const RebuildCommand = "appledocs index --rebuild"

// migrationClass distinguishes steps the engine can apply in place from
// steps that touch a full-text table. FTS5 cannot add columns to an existing
// virtual table, so breaking steps must rebuild the table from data already
// on disk or fail naming RebuildCommand.
type migrationClass int

const (
	additive migrationClass = iota
	breaking
)

// migration is one schema upgrade step, tagged with the version it upgrades
// the store *to*. Steps must be idempotent: re-running an already-applied
// step must not error.
type migration struct {
	Version int
	Class   migrationClass
	Apply   func(ctx context.Context, db *sql.DB) error
}

// allMigrations lists the pending-step candidates in ascending version
// order. Version 1 is the oldest schema that ever shipped; fresh stores skip
// this list entirely and get schemaSQL directly.
var allMigrations = []migration{
	{Version: 2, Class: additive, Apply: migrateAvailabilityColumns},
	{Version: 3, Class: additive, Apply: migrateAttributesAndPackages},
	{Version: 4, Class: breaking, Apply: migrateDocsFTSSummary},
}

// schemaSQL is the complete current (v4) schema.
const schemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS docs_fts USING fts5(
	uri, source, framework, language, title, content, summary
);

CREATE TABLE IF NOT EXISTS doc_metadata (
	uri TEXT PRIMARY KEY,
	file_path TEXT,
	content_hash TEXT,
	last_indexed TIMESTAMP,
	word_count INTEGER DEFAULT 0,
	source_type TEXT,
	package_ref TEXT,
	payload TEXT,
	min_ios TEXT,
	min_macos TEXT,
	min_watchos TEXT,
	min_tvos TEXT,
	min_visionos TEXT,
	availability_source TEXT
);

CREATE TABLE IF NOT EXISTS doc_structured (
	uri TEXT PRIMARY KEY,
	kind TEXT,
	abstract TEXT,
	declaration TEXT,
	declaration_language TEXT,
	overview TEXT,
	module TEXT,
	platforms TEXT,
	conforms_to TEXT,
	inherited_by TEXT,
	conforming_types TEXT,
	attributes TEXT
);

CREATE INDEX IF NOT EXISTS idx_structured_kind ON doc_structured(kind);
CREATE INDEX IF NOT EXISTS idx_structured_module ON doc_structured(module);

CREATE TABLE IF NOT EXISTS code_examples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uri TEXT NOT NULL,
	code TEXT NOT NULL,
	language TEXT,
	position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_examples_uri ON code_examples(uri);

CREATE VIRTUAL TABLE IF NOT EXISTS code_examples_fts USING fts5(
	uri, code, language
);

CREATE TABLE IF NOT EXISTS framework_aliases (
	identifier TEXT PRIMARY KEY,
	import_name TEXT NOT NULL,
	display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS packages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	owner TEXT NOT NULL,
	repo_url TEXT,
	stars INTEGER DEFAULT 0,
	official INTEGER DEFAULT 0,
	description TEXT,
	UNIQUE(name, owner)
);

CREATE TABLE IF NOT EXISTS package_dependencies (
	package_id INTEGER NOT NULL,
	depends_on_id INTEGER NOT NULL,
	PRIMARY KEY (package_id, depends_on_id),
	FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE,
	FOREIGN KEY (depends_on_id) REFERENCES packages(id) ON DELETE CASCADE
);

CREATE VIRTUAL TABLE IF NOT EXISTS sample_code_fts USING fts5(
	url, framework, title, description
);

CREATE TABLE IF NOT EXISTS sample_code_meta (
	url TEXT PRIMARY KEY,
	archive_name TEXT,
	web_url TEXT,
	min_ios TEXT,
	min_macos TEXT,
	min_watchos TEXT,
	min_tvos TEXT,
	min_visionos TEXT
);
`

// schemaV1SQL is the original shipped schema, retained so upgrade paths (and
// their tests) can construct a genuinely old store.
const schemaV1SQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS docs_fts USING fts5(
	uri, source, framework, language, title, content
);

CREATE TABLE IF NOT EXISTS doc_metadata (
	uri TEXT PRIMARY KEY,
	file_path TEXT,
	content_hash TEXT,
	last_indexed TIMESTAMP,
	word_count INTEGER DEFAULT 0,
	source_type TEXT,
	package_ref TEXT,
	payload TEXT
);

CREATE TABLE IF NOT EXISTS doc_structured (
	uri TEXT PRIMARY KEY,
	kind TEXT,
	abstract TEXT,
	declaration TEXT,
	declaration_language TEXT,
	overview TEXT,
	module TEXT,
	platforms TEXT,
	conforms_to TEXT,
	inherited_by TEXT,
	conforming_types TEXT
);

CREATE TABLE IF NOT EXISTS code_examples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uri TEXT NOT NULL,
	code TEXT NOT NULL,
	language TEXT,
	position INTEGER NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS code_examples_fts USING fts5(
	uri, code, language
);

CREATE TABLE IF NOT EXISTS framework_aliases (
	identifier TEXT PRIMARY KEY,
	import_name TEXT NOT NULL,
	display_name TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS sample_code_fts USING fts5(
	url, framework, title, description
);

CREATE TABLE IF NOT EXISTS sample_code_meta (
	url TEXT PRIMARY KEY,
	archive_name TEXT,
	web_url TEXT
);
`

// migrate reads the persisted schema version and reconciles it with
// CurrentSchemaVersion: fresh stores get the current schema, old stores get
// pending steps in ascending order, newer stores are rejected.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	switch {
	case version == CurrentSchemaVersion:
		return nil

	case version > CurrentSchemaVersion:
		return fmt.Errorf("stored schema version %d, this build supports %d: %w",
			version, CurrentSchemaVersion, types.ErrStoreTooNew)

	case version == 0:
		// Fresh store: create the current schema directly, no migrations.
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		return s.setVersion(ctx, CurrentSchemaVersion)
	}

	for _, m := range allMigrations {
		if m.Version <= version {
			continue
		}
		s.log.Info("applying schema migration", "to_version", m.Version, "breaking", m.Class == breaking)
		if err := m.Apply(ctx, s.db); err != nil {
			return fmt.Errorf("migrating schema to version %d: %w", m.Version, err)
		}
		if err := s.setVersion(ctx, m.Version); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setVersion(ctx context.Context, v int) error {
	// PRAGMA arguments cannot be bound.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("persisting schema version %d: %w", v, err)
	}
	return nil
}

// addColumn adds a plain column with a default, tolerating re-runs against a
// store where the column already exists.
func addColumn(ctx context.Context, db *sql.DB, table, column, typ string) error {
	_, err := db.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
	if err != nil && strings.Contains(err.Error(), "duplicate column name") {
		return nil
	}
	return err
}

// migrateAvailabilityColumns (v2) adds the per-platform minimum-version
// columns and their provenance tag to doc_metadata.
func migrateAvailabilityColumns(ctx context.Context, db *sql.DB) error {
	for _, col := range []string{"min_ios", "min_macos", "min_watchos", "min_tvos", "min_visionos", "availability_source"} {
		if err := addColumn(ctx, db, "doc_metadata", col, "TEXT"); err != nil {
			return fmt.Errorf("adding doc_metadata.%s: %w", col, err)
		}
	}
	return nil
}

// migrateAttributesAndPackages (v3) adds the extracted-attributes column and
// the package-registry tables.
func migrateAttributesAndPackages(ctx context.Context, db *sql.DB) error {
	if err := addColumn(ctx, db, "doc_structured", "attributes", "TEXT"); err != nil {
		return fmt.Errorf("adding doc_structured.attributes: %w", err)
	}
	for _, col := range []string{"min_ios", "min_macos", "min_watchos", "min_tvos", "min_visionos"} {
		if err := addColumn(ctx, db, "sample_code_meta", col, "TEXT"); err != nil {
			return fmt.Errorf("adding sample_code_meta.%s: %w", col, err)
		}
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS packages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			owner TEXT NOT NULL,
			repo_url TEXT,
			stars INTEGER DEFAULT 0,
			official INTEGER DEFAULT 0,
			description TEXT,
			UNIQUE(name, owner)
		);
		CREATE TABLE IF NOT EXISTS package_dependencies (
			package_id INTEGER NOT NULL,
			depends_on_id INTEGER NOT NULL,
			PRIMARY KEY (package_id, depends_on_id),
			FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE,
			FOREIGN KEY (depends_on_id) REFERENCES packages(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_structured_kind ON doc_structured(kind);
		CREATE INDEX IF NOT EXISTS idx_structured_module ON doc_structured(module);
		CREATE INDEX IF NOT EXISTS idx_examples_uri ON code_examples(uri);
	`)
	if err != nil {
		return fmt.Errorf("creating package tables: %w", err)
	}
	return nil
}

// migrateDocsFTSSummary (v4) adds the summary column to docs_fts. FTS5
// cannot alter a virtual table in place, so the table is rebuilt from the
// rows already on disk, deriving each summary from the stored content. If
// the old table cannot be read there is no automatic path and the operator
// must rebuild.
func migrateDocsFTSSummary(ctx context.Context, db *sql.DB) error {
	// Idempotence: if the summary column already exists this step already ran.
	if rows, err := db.QueryContext(ctx, "SELECT summary FROM docs_fts LIMIT 1"); err == nil {
		_ = rows.Close()
		return nil
	}

	type ftsRow struct {
		uri, source, framework, language, title, content string
	}

	rows, err := db.QueryContext(ctx,
		"SELECT uri, source, framework, language, title, content FROM docs_fts")
	if err != nil {
		return fmt.Errorf("full-text index cannot be rebuilt automatically, run `%s`: %w", RebuildCommand, err)
	}
	var saved []ftsRow
	for rows.Next() {
		var r ftsRow
		if err := rows.Scan(&r.uri, &r.source, &r.framework, &r.language, &r.title, &r.content); err != nil {
			_ = rows.Close()
			return fmt.Errorf("reading full-text rows: %w", err)
		}
		saved = append(saved, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("reading full-text rows: %w", err)
	}
	_ = rows.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rebuild transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DROP TABLE docs_fts"); err != nil {
		return fmt.Errorf("dropping old full-text table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		CREATE VIRTUAL TABLE docs_fts USING fts5(
			uri, source, framework, language, title, content, summary
		)`); err != nil {
		return fmt.Errorf("creating full-text table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO docs_fts (uri, source, framework, language, title, content, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing reindex statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range saved {
		summary := ExtractSummary(r.content)
		if _, err := stmt.ExecContext(ctx, r.uri, r.source, r.framework, r.language, r.title, r.content, summary); err != nil {
			return fmt.Errorf("reindexing %s: %w", r.uri, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing full-text rebuild: %w", err)
	}
	return nil
}
