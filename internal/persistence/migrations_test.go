package persistence

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoadMigrationsOrdersSQLFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"migrations/0002_onboarding.sql":     "CREATE TABLE b();",
		"migrations/0001_reference_data.sql": "CREATE TABLE a();",
		"migrations/README.md":               "notes",
		"migrations/archive/0000_old.sql":    "DROP TABLE x;",
	}
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := LoadMigrations(fs, "migrations")
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Name != "0001_reference_data.sql" || got[1].Name != "0002_onboarding.sql" {
		t.Fatalf("unexpected order %q, %q", got[0].Name, got[1].Name)
	}
	if got[0].SQL != "CREATE TABLE a();" {
		t.Fatalf("unexpected content %q", got[0].SQL)
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	if _, err := LoadMigrations(afero.NewMemMapFs(), "nope"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestPendingSkipsApplied(t *testing.T) {
	all := []Migration{{Name: "0001.sql"}, {Name: "0002.sql"}, {Name: "0003.sql"}}
	pending := Pending(all, map[string]struct{}{"0001.sql": {}, "0003.sql": {}})
	if len(pending) != 1 || pending[0].Name != "0002.sql" {
		t.Fatalf("unexpected pending %v", pending)
	}
}
