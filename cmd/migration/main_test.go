package main

import (
	"testing"

	"github.com/riskibarqy/clublocker/internal/config"
)

func TestMigrationDBURL(t *testing.T) {
	t.Run("sqlite path gets scheme", func(t *testing.T) {
		got, err := migrationDBURL(config.Config{SnapshotBackend: config.SnapshotBackendSQLite, DBURL: "data/clublocker.db"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "sqlite://data/clublocker.db" {
			t.Fatalf("unexpected url: %q", got)
		}
	})

	t.Run("postgres keeps url", func(t *testing.T) {
		in := "postgres://u:p@localhost:5432/clublocker?sslmode=disable"
		got, err := migrationDBURL(config.Config{SnapshotBackend: config.SnapshotBackendPostgres, DBURL: in})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != in {
			t.Fatalf("unexpected url: %q", got)
		}
	})

	t.Run("file backend has nothing to migrate", func(t *testing.T) {
		if _, err := migrationDBURL(config.Config{SnapshotBackend: config.SnapshotBackendFile}); err == nil {
			t.Fatalf("expected error for file backend")
		}
	})
}

func TestParseSteps(t *testing.T) {
	if steps, err := parseSteps(nil); err != nil || steps != 1 {
		t.Fatalf("expected default of 1, got %d (%v)", steps, err)
	}
	if _, err := parseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}
