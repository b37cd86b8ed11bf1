// Command pivotfit-mcp runs the PivotFit MCP server over stdio, for
// use from a local assistant. It reads the same config as the main
// binary and opens the catalog and state store directly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/config"
	"github.com/meltforce/pivotfit/internal/mcp"
	"github.com/meltforce/pivotfit/internal/pivot"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/state"
	"github.com/meltforce/pivotfit/internal/swap"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// stdout carries the MCP transport, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var cat *catalog.Catalog
	if cfg.Catalog.UseDatabase() {
		pool, err := pgxpool.New(ctx, cfg.Catalog.Database.DSN())
		if err != nil {
			log.Error("failed to connect catalog database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		cat, err = catalog.NewPGSource(pool, log).Sync(ctx)
		if err != nil {
			log.Error("catalog sync failed", "error", err)
			os.Exit(1)
		}
	} else {
		cat, err = catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			log.Error("catalog load failed", "error", err)
			os.Exit(1)
		}
	}

	kv, err := state.Open(cfg.State.Dir)
	if err != nil {
		log.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := program.NewStore(kv)
	srv := mcp.New(mcp.Deps{
		Catalog:      cat,
		Engine:       pivot.New(cat),
		Store:        store,
		Quota:        quota.New(kv),
		Entitlements: swap.Static(cfg.Entitlements.UnlimitedSwaps),
		Log:          log,
	}, Version)

	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
