package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alswp006/blog-writer/internal/app"
	"github.com/alswp006/blog-writer/internal/archive"
	"github.com/alswp006/blog-writer/internal/auth"
	"github.com/alswp006/blog-writer/internal/authpw"
	"github.com/alswp006/blog-writer/internal/config"
	"github.com/alswp006/blog-writer/internal/export"
	"github.com/alswp006/blog-writer/internal/logger"
	"github.com/alswp006/blog-writer/internal/ratelimit"
	"github.com/alswp006/blog-writer/internal/search"
	"github.com/alswp006/blog-writer/internal/session"
	"github.com/alswp006/blog-writer/internal/store"
	"github.com/alswp006/blog-writer/internal/training"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "blog-writer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL, store.PoolOptions{})
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, store.AccountMigrations()); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	dataStore := store.NewPostgresStore(db)

	deps, err := newDeps(cfg, dataStore, log)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisStore.Close()
		deps.Revoker = redisStore

		limiter, err := ratelimit.NewFixedWindowLimiter(redisStore.Client(), "ratelimit:auth:", cfg.AuthRateLimit, cfg.AuthRateWindow)
		if err != nil {
			return fmt.Errorf("init rate limiter: %w", err)
		}
		deps.Limiter = limiter
		log.Info("using redis for session revocation and rate limiting")
	} else {
		log.Info("using postgres for session revocation; auth rate limiting disabled")
	}

	if strings.TrimSpace(cfg.MinIOEndpoint) != "" {
		snapshots, err := archive.NewMinioStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			return fmt.Errorf("init snapshot archive: %w", err)
		}
		deps.Snapshots = snapshots
		log.Info("archiving crawl snapshots", "bucket", cfg.MinIOBucket)
	}

	pgfts := search.NewPgFTS(db)
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, log)
		defer meiliClient.Close()
		reindex := func() {
			n, err := search.Reindex(context.Background(), meiliClient, pgfts)
			if err != nil {
				log.Warn("reindex drafts", "error", err)
				return
			}
			log.Info("reindexed drafts", "count", n)
		}
		meiliClient.OnRecover(reindex)
		go reindex()
		deps.Search = search.NewService(meiliClient, pgfts, log)
	} else {
		deps.Search = search.NewService(nil, pgfts, log)
	}

	service := app.New(cfg, deps)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, log)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// train-url waits on the crawl
		WriteTimeout: cfg.CrawlTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("blog-writer api listening", "addr", cfg.Addr, "crawl_renderer", cfg.CrawlRenderer)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", "error", err)
		}
		return nil
	})
	return group.Wait()
}

// newDeps wires the collaborators that need no network service beyond
// Postgres. Redis, MinIO and Meilisearch are layered on by run.
func newDeps(cfg config.Config, dataStore *store.PostgresStore, log *logger.Logger) (app.Deps, error) {
	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return app.Deps{}, err
	}
	summarizer, err := training.NewSummarizer()
	if err != nil {
		return app.Deps{}, fmt.Errorf("init summarizer: %w", err)
	}
	return app.Deps{
		Store:      dataStore,
		Accounts:   authpw.NewService(dataStore),
		Issuer:     issuer,
		Revoker:    session.NewTableRevoker(dataStore),
		Fetcher:    newFetcher(cfg),
		Summarizer: summarizer,
		Exporter:   export.NewService(cfg.ExportTimeout),
		Log:        log,
	}, nil
}

func newFetcher(cfg config.Config) training.Fetcher {
	if cfg.CrawlRenderer == "chrome" {
		return training.NewChromeFetcher(cfg.CrawlTimeout, cfg.CrawlMaxBytes)
	}
	return training.NewHTTPFetcher(cfg.CrawlTimeout, cfg.CrawlMaxBytes)
}
