package store

import (
	"strings"
	"testing"
)

func TestMigrationNames_Ordered(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("expected at least 2 migrations, got %v", names)
	}
	if names[0] != "001_create_sync_runs.sql" {
		t.Errorf("expected first migration 001_create_sync_runs.sql, got %s", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %s before %s", names[i-1], names[i])
		}
	}
}

func TestMigrations_CreateSyncRuns(t *testing.T) {
	content, err := migrationFiles.ReadFile("migrations/001_create_sync_runs.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(content), "CREATE TABLE IF NOT EXISTS sync_runs") {
		t.Error("expected sync_runs table definition")
	}
}
