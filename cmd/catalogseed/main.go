// Command catalogseed writes a YAML monster catalog into PostgreSQL.
//
// The write is skipped when the stored catalog fingerprint already matches,
// unless -force is given.
//
// Usage:
//
//	go run ./cmd/catalogseed -catalog config/monsters.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/hordewave/internal/catalog"
	"github.com/udisondev/hordewave/internal/config"
	"github.com/udisondev/hordewave/internal/db"
)

func main() {
	cfgPath := flag.String("config", "config/hordewave.yaml", "server config (database section)")
	catalogPath := flag.String("catalog", "", "YAML catalog to seed (default: catalog.path from config)")
	force := flag.Bool("force", false, "rewrite even if fingerprints match")
	dryRun := flag.Bool("dry-run", false, "validate and print fingerprint without writing")
	flag.Parse()

	if err := run(context.Background(), *cfgPath, *catalogPath, *force, *dryRun); err != nil {
		slog.Error("catalog seed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, catalogPath string, force, dryRun bool) error {
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}

	cat, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return err
	}

	fmt.Printf("catalog %s: %d monsters, fingerprint %s\n", catalogPath, cat.Len(), cat.Fingerprint())
	if dryRun {
		return nil
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return err
	}

	repo := database.Catalog()
	if force {
		if err := repo.ReplaceAll(ctx, cat); err != nil {
			return err
		}
		fmt.Println("catalog written")
		return nil
	}

	written, err := repo.Sync(ctx, cat)
	if err != nil {
		return err
	}
	if written {
		fmt.Println("catalog written")
	} else {
		fmt.Println("catalog already up to date")
	}
	return nil
}
