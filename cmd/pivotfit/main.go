package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"tailscale.com/tsnet"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/config"
	"github.com/meltforce/pivotfit/internal/pivot"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/server"
	"github.com/meltforce/pivotfit/internal/setlog"
	"github.com/meltforce/pivotfit/internal/state"
	"github.com/meltforce/pivotfit/internal/swap"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run catalog migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("PivotFit starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Hydrate the catalog snapshot
	var cat *catalog.Catalog
	if cfg.Catalog.UseDatabase() {
		dsn := cfg.Catalog.Database.DSN()
		if err := catalog.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		pool, err := pgxpool.New(ctx, dsn)
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
		log.Info("catalog loaded from file", "path", cfg.Catalog.File, "exercises", cat.Len())
	}

	// Open the device-local state store
	kv, err := state.Open(cfg.State.Dir)
	if err != nil {
		log.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := program.NewStore(kv)
	tracker := quota.New(kv)
	engine := pivot.New(cat)
	setLogger := setlog.NewLogger(store, log)
	saver := setlog.NewAutosaver(setLogger, setlog.DefaultDebounce, log)
	defer saver.Close()
	ent := swap.Static(cfg.Entitlements.UnlimitedSwaps)
	controller := swap.NewController(cat, store, tracker, ent, log)

	srv := server.New(server.Deps{
		Catalog:      cat,
		Engine:       engine,
		Store:        store,
		SetLogger:    setLogger,
		Autosaver:    saver,
		Swaps:        controller,
		Quota:        tracker,
		Entitlements: ent,
		APIKey:       cfg.Auth.APIKey,
		Log:          log,
	})

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := saver.Flush(shutdownCtx); err != nil {
		log.Error("autosave flush error", "error", err)
	}
	log.Info("server stopped")
}
