// Command migrate applies goose SQL migrations against the configured
// postgres database.
//
// Usage:
//
//	migrate up            apply all pending migrations
//	migrate up-by-one     apply the next pending migration
//	migrate down          roll back the latest migration
//	migrate redo          roll back and re-apply the latest migration
//	migrate status        print migration status
//	migrate version       print the current schema version
//	migrate create NAME   scaffold a new SQL migration
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/monterra-as/installer-api/internal/config"
	"github.com/pressly/goose/v3"
)

func main() {
	dir := flag.String("dir", "./migrations", "directory with migration files")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dir DIR] up|up-by-one|down|redo|status|version|create")
		os.Exit(1)
	}

	if err := run(context.Background(), *dir, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir, command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return err
		}
		fmt.Println("migrations applied")
	case "up-by-one":
		if err := goose.UpByOneContext(ctx, db, dir); err != nil {
			return err
		}
		fmt.Println("migration applied")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return err
		}
		fmt.Println("migration rolled back")
	case "redo":
		if err := goose.RedoContext(ctx, db, dir); err != nil {
			return err
		}
		fmt.Println("migration re-applied")
	case "status":
		return goose.StatusContext(ctx, db, dir)
	case "version":
		return goose.VersionContext(ctx, db, dir)
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("create requires a migration name")
		}
		return goose.Create(db, dir, args[0], "sql")
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	return nil
}
