// Package main is the entry point for the userhub admin CLI.
// It provides administrative commands for managing user accounts without
// going through the HTTP API, e.g. for seeding an initial user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub-io/userhub/internal/config"
	"github.com/userhub-io/userhub/internal/repository"
	"github.com/userhub-io/userhub/internal/repository/postgres"
	"github.com/userhub-io/userhub/internal/repository/sqlite"
	"github.com/userhub-io/userhub/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "version":
		fmt.Printf("userhub admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUser(*configPath, args); err != nil {
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

func runUser(configPath string, args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing user subcommand")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo, db, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(userRepo, logger)

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		email := fs.String("email", "", "email address (required)")
		password := fs.String("password", "", "password (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *email == "" || *password == "" {
			return fmt.Errorf("both -email and -password are required")
		}

		user, err := users.Create(ctx, service.CreateUserInput{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)

	case "list":
		out, err := users.List(ctx, service.ListUsersInput{})
		if err != nil {
			return err
		}
		fmt.Printf("%-6s  %-40s  %-8s  %s\n", "ID", "EMAIL", "ACTIVE", "CREATED")
		for _, u := range out.Users {
			fmt.Printf("%-6d  %-40s  %-8t  %s\n", u.ID, u.Email, u.IsActive, u.CreatedAt.Format(time.RFC3339))
		}
		fmt.Printf("Total: %d\n", out.TotalCount)

	case "activate", "deactivate":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		active := args[0] == "activate"
		if _, err := users.Update(ctx, id, service.UpdateUserInput{IsActive: &active}); err != nil {
			return err
		}
		fmt.Printf("User %d is now active=%t\n", id, active)

	case "delete":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted user %d\n", id)

	default:
		printUsage()
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}

	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing user ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("user ID must be a positive integer")
	}
	return id, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (repository.UserRepository, repository.DatabaseHealth, error) {
	switch cfg.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Path)
		sqliteCfg.JournalMode = cfg.JournalMode
		sqliteCfg.BusyTimeout = cfg.BusyTimeout
		sqliteCfg.SynchronousMode = cfg.SynchronousMode

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func printUsage() {
	fmt.Println(`userhub admin CLI

Usage:
  userhub-admin [-config path] <command> [arguments]

Commands:
  user create -email <email> -password <password>   Create a user
  user list                                         List users
  user activate <id>                                Activate a user
  user deactivate <id>                              Deactivate a user
  user delete <id>                                  Delete a user
  version                                           Print version information
  help                                              Show this help message

Examples:
  userhub-admin user create -email admin@example.com -password s3cret
  userhub-admin user deactivate 42`)
}
