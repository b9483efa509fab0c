// Package main is the entry point for the userhub database migration tool.
// It manages the schema for both PostgreSQL and embedded SQLite backends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub-io/userhub/internal/config"
	"github.com/userhub-io/userhub/internal/repository/postgres"
	"github.com/userhub-io/userhub/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is implemented by both database backends.
type migrator interface {
	Migrate(ctx context.Context) error
	Version(ctx context.Context) (int, error)
	Close() error
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	switch command {
	case "version":
		fmt.Printf("userhub migration tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "status":
		if err := run(command, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := openDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		version, err := db.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Migrations applied. Schema version: %d\n", version)

	case "status":
		version, err := db.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Driver: %s\n", cfg.Database.Driver)
		fmt.Printf("Schema version: %d\n", version)
	}

	return nil
}

func openDB(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (migrator, error) {
	switch cfg.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Path)
		sqliteCfg.JournalMode = cfg.JournalMode
		sqliteCfg.BusyTimeout = cfg.BusyTimeout
		sqliteCfg.SynchronousMode = cfg.SynchronousMode
		return sqlite.NewDB(ctx, sqliteCfg, logger)
	case "postgres":
		return postgres.NewDB(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func printUsage() {
	fmt.Println(`userhub migration tool

Usage:
  userhub-migrate [-config path] <command>

Commands:
  up          Run all pending migrations
  status      Show current migration status
  version     Print version information
  help        Show this help message

Configuration:
  The database backend is selected via the config file or USERHUB_*
  environment variables, e.g. USERHUB_DATABASE_DRIVER=postgres.

Examples:
  userhub-migrate up
  userhub-migrate -config ./configs/config.yaml status`)
}
