package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to YAML exercise file (required)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: pivotfit-seed -config config.yaml -file exercises.yaml\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cat, err := catalog.LoadFile(*filePath)
	if err != nil {
		log.Error("failed to load exercise file", "error", err)
		os.Exit(1)
	}
	log.Info("exercise file loaded", "exercises", cat.Len())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Catalog.UseDatabase() {
		log.Error("config has no catalog database; nothing to seed")
		os.Exit(1)
	}
	dsn := cfg.Catalog.Database.DSN()

	if err := catalog.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	written, err := catalog.NewPGSource(pool, log).Upsert(ctx, cat.All())
	if err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("seed complete", "rows", written)
}
