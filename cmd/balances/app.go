package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/balances/internal/assetmeta"
	"github.com/mtlprog/balances/internal/balance"
	"github.com/mtlprog/balances/internal/claimable"
	"github.com/mtlprog/balances/internal/classify"
	"github.com/mtlprog/balances/internal/config"
	"github.com/mtlprog/balances/internal/database"
	"github.com/mtlprog/balances/internal/horizon"
	"github.com/mtlprog/balances/internal/overview"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// app holds the wired services shared by every command.
type app struct {
	cfg       config.Config
	pool      *pgxpool.Pool // nil without DATABASE_URL
	horizon   *horizon.Client
	resolver  *classify.Resolver
	overview  *overview.Service
	claimable *claimable.Service
}

// newApp wires the services. Without DATABASE_URL classifications are only cached in memory.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var store classify.Store
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		migrationsSub, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		a.pool = pool
		store = classify.NewPgStore(pool)
	} else {
		slog.Info("DATABASE_URL not set, asset classifications are cached in memory only")
	}

	a.horizon = horizon.NewClient(cfg.HorizonURL, cfg.HorizonRetryMax, cfg.HorizonRetryBaseDelay)
	a.resolver = classify.NewResolver(assetmeta.NewTOMLLookup(a.horizon), store, cfg.ClassifyTimeout)

	engine := balance.NewEngine(a.resolver, cfg.ClassifyConcurrency)
	a.overview = overview.NewService(a.horizon, engine)
	a.claimable = claimable.NewService(a.horizon, a.resolver, cfg.ClassifyConcurrency)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
