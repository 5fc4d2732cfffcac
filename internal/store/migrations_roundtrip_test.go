package store

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openTestDB connects to BLOGWRITER_TEST_DATABASE_URL on a freshly reset
// public schema with account migrations and the app schema applied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("BLOGWRITER_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("BLOGWRITER_TEST_DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if err := resetPublicSchema(ctx, db); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := ApplyMigrations(ctx, db, AccountMigrations()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func TestMigrationsRoundTripPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, `DROP TABLE generated_drafts, writing_requests, crawl_attempts, style_profiles`); err != nil {
		t.Fatalf("drop app tables: %v", err)
	}
	if err := applyDownMigrations(ctx, db, AccountMigrations()); err != nil {
		t.Fatalf("apply down migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		t.Fatalf("clear schema_migrations: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != ErrUsersTableMissing {
		t.Fatalf("expected ErrUsersTableMissing without users table, got %v", err)
	}

	if err := ApplyMigrations(ctx, db, AccountMigrations()); err != nil {
		t.Fatalf("apply up migrations (pass 2): %v", err)
	}
	if err := ApplyMigrations(ctx, db, AccountMigrations()); err != nil {
		t.Fatalf("apply up migrations (pass 3): %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, db); err != nil {
			t.Fatalf("ensure schema (pass %d): %v", i+1, err)
		}
	}
}

func resetPublicSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	return err
}

func applyDownMigrations(ctx context.Context, db *sql.DB, migrations fs.FS) error {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return err
	}

	pattern := regexp.MustCompile(`^(\d+)_.*\.down\.sql$`)
	type migration struct {
		version string
		name    string
	}
	downs := make([]migration, 0)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		downs = append(downs, migration{version: match[1], name: entry.Name()})
	}

	sort.Slice(downs, func(i, j int) bool {
		return downs[i].version > downs[j].version
	})

	for _, down := range downs {
		sqlBytes, err := fs.ReadFile(migrations, down.name)
		if err != nil {
			return err
		}
		sqlText := strings.TrimSpace(string(sqlBytes))
		if sqlText == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			return err
		}
	}

	return nil
}
