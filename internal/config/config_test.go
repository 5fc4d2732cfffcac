package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BLOGWRITER_CONFIG", "")
	t.Setenv("API_ADDR", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8787" || cfg.CrawlRenderer != "http" || cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":9000\"\ncrawl_renderer: chrome\nauth_rate_limit: 3\nminio_bucket: snaps\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BLOGWRITER_CONFIG", path)
	t.Setenv("API_ADDR", ":9100")
	t.Setenv("BLOGWRITER_CRAWL_RENDERER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env should win over file, got %q", cfg.Addr)
	}
	if cfg.CrawlRenderer != "chrome" || cfg.AuthRateLimit != 3 || cfg.MinIOBucket != "snaps" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownRenderer(t *testing.T) {
	t.Setenv("BLOGWRITER_CONFIG", "")
	t.Setenv("BLOGWRITER_CRAWL_RENDERER", "lynx")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown renderer")
	}
}

func TestGetenvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("BLOGWRITER_TEST_INT", "abc")
	if got := getenvInt("BLOGWRITER_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestLoadExportTimeout(t *testing.T) {
	t.Setenv("BLOGWRITER_CONFIG", "")
	t.Setenv("BLOGWRITER_EXPORT_TIMEOUT_SECONDS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExportTimeout != 30*time.Second {
		t.Fatalf("expected 30s default, got %v", cfg.ExportTimeout)
	}

	t.Setenv("BLOGWRITER_EXPORT_TIMEOUT_SECONDS", "5")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExportTimeout != 5*time.Second {
		t.Fatalf("expected 5s from env, got %v", cfg.ExportTimeout)
	}
}
