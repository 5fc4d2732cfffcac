package main

import (
	"context"
	"testing"
	"time"

	"github.com/alswp006/blog-writer/internal/config"
	"github.com/alswp006/blog-writer/internal/export"
	"github.com/alswp006/blog-writer/internal/logger"
	"github.com/alswp006/blog-writer/internal/store"
	"github.com/alswp006/blog-writer/internal/training"
)

func testConfig() config.Config {
	return config.Config{
		SessionSecret: "wiring-secret",
		SessionTTL:    time.Hour,
		CrawlRenderer: "http",
		CrawlTimeout:  time.Second,
		CrawlMaxBytes: 1 << 20,
		ExportTimeout: time.Second,
	}
}

func TestNewDepsWiresCoreCollaborators(t *testing.T) {
	deps, err := newDeps(testConfig(), store.NewPostgresStore(nil), logger.Nop())
	if err != nil {
		t.Fatalf("newDeps() error = %v", err)
	}
	if deps.Store == nil || deps.Accounts == nil || deps.Issuer == nil || deps.Revoker == nil || deps.Summarizer == nil {
		t.Fatalf("core collaborators missing: %+v", deps)
	}
	if _, ok := deps.Fetcher.(*training.HTTPFetcher); !ok {
		t.Fatalf("expected HTTP fetcher, got %T", deps.Fetcher)
	}
	if deps.Exporter == nil {
		t.Fatal("expected draft exporter to be wired")
	}

	result, err := deps.Exporter.Export(context.Background(), export.Draft{
		Topic:   "Wiring",
		Content: "# Wiring\n\nBody.\n",
		Version: 1,
	}, export.FormatHTML)
	if err != nil {
		t.Fatalf("html export error = %v", err)
	}
	if result.Filename != "Wiring-v1.html" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
}

func TestNewDepsChromeRenderer(t *testing.T) {
	cfg := testConfig()
	cfg.CrawlRenderer = "chrome"
	deps, err := newDeps(cfg, store.NewPostgresStore(nil), logger.Nop())
	if err != nil {
		t.Fatalf("newDeps() error = %v", err)
	}
	if _, ok := deps.Fetcher.(*training.ChromeFetcher); !ok {
		t.Fatalf("expected chrome fetcher, got %T", deps.Fetcher)
	}
}

func TestNewDepsRequiresSessionSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = " "
	if _, err := newDeps(cfg, store.NewPostgresStore(nil), logger.Nop()); err == nil {
		t.Fatal("expected error for blank session secret")
	}
}
