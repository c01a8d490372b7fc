package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"

	"cine-storefront/internal/config"
	"cine-storefront/internal/database/migrations"
	"cine-storefront/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg := config.Load()

	var dsn string
	var target uint
	var schemaOnly bool

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", cfg.Database.DSN, "PostgreSQL connection string (default: $POSTGRES_DSN)")
	flagSet.UintVar(&target, "to", 0, "migrate to this version (only with the \"to\" command)")
	flagSet.BoolVar(&schemaOnly, "schema-only", false, "skip the settings seed when running \"up\"")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	command := "up"
	if args := flagSet.Args(); len(args) > 0 {
		command = strings.ToLower(args[0])
	}

	log := logger.NewWriterLogger(os.Stdout)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	opts := migrations.DefaultOptions()
	opts.SeedData = !schemaOnly
	runner := migrations.NewRunner(db, opts, log)
	defer runner.Close()

	switch command {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "to":
		if target == 0 {
			return errors.New("\"to\" requires --to <version>")
		}
		err = runner.MigrateTo(target)
	case "version":
		v, dirty, verr := runner.Version()
		if verr != nil {
			return verr
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}
	log.Info("MIGRATE", fmt.Sprintf("✅ %s complete", command))
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Apply storefront database migrations.

Usage:
  migrate [flags] [up|down|to|version]

Commands:
  up        apply schema and seed migrations (default)
  down      roll back every migration
  to        migrate to --to <version>
  version   print the applied version

Flags:
`)
	flagSet.PrintDefaults()
}
