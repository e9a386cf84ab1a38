package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %s, want 8080", cfg.Port)
	}
	if cfg.Routing.CacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl = %v", cfg.Routing.CacheTTL)
	}
	if cfg.Optimizer.PopulationSize != 50 || cfg.Optimizer.Generations != 100 {
		t.Fatalf("optimizer defaults = %+v", cfg.Optimizer)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
port: "9090"
database_url: "postgres://file"
routing:
  cache_ttl: 1m
  history_limit: 32
optimizer:
  mutation_rate: 0.25
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://env:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("port = %s, env must override file", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://file" {
		t.Fatalf("database url = %s, empty env must not override", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://env:6379" {
		t.Fatalf("redis url = %s", cfg.RedisURL)
	}
	if cfg.Routing.CacheTTL != time.Minute || cfg.Routing.HistoryLimit != 32 {
		t.Fatalf("routing = %+v", cfg.Routing)
	}
	if cfg.Optimizer.MutationRate != 0.25 {
		t.Fatalf("mutation rate = %v", cfg.Optimizer.MutationRate)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
}

func TestLoadRejectsBadMutationRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("optimizer:\n  mutation_rate: 2.5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
