package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepositoryMigrationsAreValid(t *testing.T) {
	if err := ValidateDir(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("repository migrations invalid: %v", err)
	}
}

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Reward Tiers")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_reward_tiers.sql") {
		t.Fatalf("unexpected filename %q", path)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("freshly created migration invalid: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "not_versioned.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for unversioned migration filename")
	}
}
