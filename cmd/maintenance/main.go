package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/backup"
	"github.com/clubkit/clubkit/internal/config"
	"github.com/clubkit/clubkit/internal/integrity"
	"github.com/clubkit/clubkit/internal/platform/logging"
	"github.com/clubkit/clubkit/internal/recordstore"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewJSON(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "migrate":
		target := cfg.SchemaVersion
		if len(os.Args) > 2 {
			parsed, parseErr := parseTarget(os.Args[2])
			if parseErr != nil {
				log.Fatal(parseErr)
			}
			target = parsed
		}
		store := openStore(ctx, cfg, target, logger)
		defer store.Close()
		log.Printf("store migrated to schema version %d", target)
	case "check":
		store := openStore(ctx, cfg, cfg.SchemaVersion, logger)
		defer store.Close()

		report, err := integrity.NewChecker(store).Check(ctx)
		if err != nil {
			log.Fatalf("integrity check: %v", err)
		}
		for _, issue := range report.Issues {
			fmt.Printf("%s/%s %s: %s\n", issue.Collection, issue.RecordID, issue.Field, issue.Message)
		}
		fmt.Printf("healthy: %t\n", report.Healthy)
		for collection, n := range report.Stats {
			fmt.Printf("%s: %d\n", collection, n)
		}
		if !report.Healthy {
			os.Exit(1)
		}
	case "backup":
		store := openStore(ctx, cfg, cfg.SchemaVersion, logger)
		defer store.Close()

		if err := newEngine(store, cfg, logger).CreateSnapshot(ctx); err != nil {
			log.Fatalf("create snapshot: %v", err)
		}
		log.Print("snapshot written")
	case "restore":
		store := openStore(ctx, cfg, cfg.SchemaVersion, logger)
		defer store.Close()

		restored, err := newEngine(store, cfg, logger).RestoreSnapshot(ctx)
		if err != nil {
			log.Fatalf("restore snapshot: %v", err)
		}
		if !restored {
			log.Fatal("no usable snapshot found")
		}
		log.Print("snapshot restored")
	case "export":
		store := openStore(ctx, cfg, cfg.SchemaVersion, logger)
		defer store.Close()

		payload, err := newEngine(store, cfg, logger).ExportAll(ctx)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Println(payload)
	default:
		printUsage()
		os.Exit(2)
	}
}

func openStore(ctx context.Context, cfg config.Config, schemaVersion int, logger *logging.Logger) *recordstore.Store {
	store, err := recordstore.Open(ctx, filepath.Join(cfg.DataDir, "clubkit.db"), schemaVersion, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	return store
}

func newEngine(store *recordstore.Store, cfg config.Config, logger *logging.Logger) *backup.Engine {
	slots, err := backup.NewFileSlotStore(filepath.Join(cfg.DataDir, "backup"), cfg.BackupBudgetBytes)
	if err != nil {
		log.Fatalf("open slot store: %v", err)
	}
	return backup.NewEngine(store, slots, cfg.BackupBudgetBytes, cfg.SchemaVersion, logger).
		WithSkipThreshold(cfg.BackupSkipThresholdPct)
}

func parseTarget(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("target version must be >= 1")
	}

	return value, nil
}

func printUsage() {
	fmt.Println("usage: maintenance <command>")
	fmt.Println("commands:")
	fmt.Println("  migrate [version]   open the store and migrate to the target schema version")
	fmt.Println("  check               run the referential integrity checker")
	fmt.Println("  backup              write a snapshot now")
	fmt.Println("  restore             restore the store from the newest readable snapshot")
	fmt.Println("  export              print a full JSON export to stdout")
}
