package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"billetera/internal/config"
	"billetera/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Schema migration runner for the postgres backend. The embedded sqlite
// backend auto-migrates at startup and never needs this tool.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if err := run(*source, flag.Args()); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-source URL] <command>")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up           apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down [N]     roll back N migrations (default 1)")
	fmt.Fprintln(os.Stderr, "  force V      mark version V as applied, clearing a dirty state")
	fmt.Fprintln(os.Stderr, "  version      print the current schema version")
}

func run(source string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("driver %q has no SQL migrations; sqlite schemas are applied automatically at startup", cfg.DBDriver)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)

	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	defer closeMigrator(m)

	switch cmd := args[0]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up failed: %w", err)
		}
		logger.Get().Info("Schema is up to date")
		return nil

	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil || steps < 1 {
				return fmt.Errorf("down expects a positive step count, got %q", args[1])
			}
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down failed: %w", err)
		}
		logger.Get().Infof("Rolled back %d migration(s)", steps)
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force expects a version number")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force expects a version number, got %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		logger.Get().Infof("Forced schema version to %d", v)
		return nil

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Get().Info("No migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}
		logger.Get().Infof("Schema version %d (dirty: %v)", v, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command %q (use up, down, force, or version)", cmd)
	}
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Get().Warnf("migration source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migration database close error: %v", dbErr)
	}
}
