// Command migrate applies or rolls back the quote store schema.
//
//	migrate up          apply every pending migration
//	migrate down [n]    roll back n migrations (default 1)
//	migrate version     print the applied version
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/postgres"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
)

var errUsage = errors.New("usage: migrate up | down [steps] | version")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("database.driver is %q; migrations only apply to %q", cfg.Database.Driver, config.DriverPostgres)
	}

	logger, closer := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name + "-migrate",
		Version: cfg.App.Version,
	})
	defer closer.Close()

	db, err := postgres.Open(context.Background(), cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := postgres.Migrate(db); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q: %w", args[1], errUsage)
			}
		}

		if err := postgres.MigrateDown(db, steps); err != nil {
			return err
		}
	case "version":
	default:
		return errUsage
	}

	version, dirty, err := postgres.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	logger.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))

	return nil
}
