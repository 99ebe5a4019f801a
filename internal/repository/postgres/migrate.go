package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyMigrations runs every *.up.sql file in fsys, in lexical order,
// recording applied versions in a prefixed schema_migrations table.
// The literal __prefix__ inside migration files is replaced with the
// environment table prefix so dev/test/prod tables can coexist.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, prefix string) error {
	if err := ensureMigrationsTable(ctx, pool, prefix); err != nil {
		return err
	}

	files, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	for _, file := range files {
		migrated, err := isMigrated(ctx, pool, prefix, file)
		if err != nil {
			return err
		}
		if migrated {
			continue
		}

		sql, err := renderMigration(fsys, file, prefix)
		if err != nil {
			return err
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", file, err)
		}

		if _, err := tx.Exec(ctx, sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("execute migration %s: %w", file, err)
		}

		record := fmt.Sprintf(`INSERT INTO %sschema_migrations(version) VALUES($1)`, prefix)
		if _, err := tx.Exec(ctx, record, file); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", file, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}

// listMigrations returns the *.up.sql files at the root of fsys in
// lexical order. Down migrations and subdirectories are skipped.
func listMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// renderMigration reads a migration file and substitutes the literal
// __prefix__ with the environment table prefix.
func renderMigration(fsys fs.FS, name, prefix string) (string, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return strings.ReplaceAll(string(contents), "__prefix__", prefix), nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool, prefix string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %sschema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, prefix)

	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func isMigrated(ctx context.Context, pool *pgxpool.Pool, prefix, version string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %sschema_migrations WHERE version = $1)`, prefix)

	var exists bool
	if err := pool.QueryRow(ctx, query, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}
