package main

import (
	"testing"
	"testing/fstest"
)

func TestReadEmbeddedMigrations(t *testing.T) {
	migrations, err := readMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("expected versions 1 and 2 first, got %d and %d", migrations[0].Version, migrations[1].Version)
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Fatalf("version %d missing up or down sql", m.Version)
		}
	}
}

func TestReadMigrationsRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001-create-quotes.up.sql": {Data: []byte("CREATE TABLE quotes ();")},
	}
	if _, err := readMigrations(fsys); err == nil {
		t.Fatal("expected error for hyphenated filename")
	}
}

func TestReadMigrationsRequiresBothDirections(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001_create_quotes.up.sql": {Data: []byte("CREATE TABLE quotes ();")},
	}
	if _, err := readMigrations(fsys); err == nil {
		t.Fatal("expected error when the down file is missing")
	}
}

func TestReadMigrationsRejectsEmptyFile(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001_create_quotes.up.sql":   {Data: []byte("CREATE TABLE quotes ();")},
		"migrations/0001_create_quotes.down.sql": {Data: []byte("   \n")},
	}
	if _, err := readMigrations(fsys); err == nil {
		t.Fatal("expected error for empty migration body")
	}
}
