package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_metrics.sql", "CREATE TABLE b();")
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE a();")
	writeMigration(t, dir, "010_later.sql", "CREATE TABLE c();")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 || migs[2].Version != 10 {
		t.Errorf("wrong order: %v %v %v", migs[0].Version, migs[1].Version, migs[2].Version)
	}
	if migs[0].SQL != "CREATE TABLE a();" {
		t.Errorf("wrong SQL content: %q", migs[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE a();")
	writeMigration(t, dir, "readme.md", "not sql")
	writeMigration(t, dir, "notes_001.sql", "missing numeric prefix")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migs))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
