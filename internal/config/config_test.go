package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("default backend should be sqlite, got %q", cfg.Backend)
	}
	if cfg.ProxyTimeout != 5*time.Second {
		t.Fatalf("unexpected proxy timeout %v", cfg.ProxyTimeout)
	}
	if cfg.MaxBodyBytes != 10<<20 {
		t.Fatalf("unexpected body limit %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\nbackend: redis\nredis_addr: \"redis:6379\"\nproxy_timeout: 2s\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Backend != BackendRedis || cfg.RedisAddr != "redis:6379" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.ProxyTimeout != 2*time.Second {
		t.Fatalf("proxy timeout not applied: %v", cfg.ProxyTimeout)
	}
}

func TestLoadConfigUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: mongodb\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("VISTORIA_BACKEND", BackendStatic)
	t.Setenv("VISTORIA_SNAPSHOT_PATH", "/tmp/data.json")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Backend != BackendStatic {
		t.Fatalf("env backend not applied: %q", cfg.Backend)
	}
	if cfg.SnapshotPath != "/tmp/data.json" {
		t.Fatalf("env snapshot path not applied: %q", cfg.SnapshotPath)
	}
}
