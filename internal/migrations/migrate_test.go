package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/mpsdeal/internal/db"
)

func TestUpAppliesAllMigrationsIdempotently(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database.DB, "../../migrations"); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	version, err := Version(database.DB)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != 4 {
		t.Fatalf("version = %d, want 4", version)
	}

	for _, table := range []string{"users", "equipment", "consumables", "projects", "project_lines", "quotes"} {
		var n int
		if err := database.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}
}
