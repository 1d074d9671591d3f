package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/streetfood/rawmart/internal/catalog"
	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "up|down|status|version|create|validate|seed|automigrate")
	dir := flag.String("dir", "", "migrations directory (default: the set compiled into the binary; create and validate use "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.Parse()

	// create and validate only touch files, so they run without config.
	switch *cmd {
	case "create":
		exitOnErr(create(os.Stdout, orDefault(*dir), *name))
		return
	case "validate":
		exitOnErr(migrate.ValidateDir(orDefault(*dir)))
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	exitOnErr(err)
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := run(ctx, os.Stdout, dbClient, *cmd, *dir, *version); err != nil {
		logg.Error(ctx, "migrate command failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migrate command complete")
}

func run(ctx context.Context, out io.Writer, dbClient *db.Client, cmd, dir, version string) error {
	switch cmd {
	case "seed":
		return catalog.Seed(ctx, dbClient.DB())
	case "automigrate":
		return migrate.AutoMigrate(ctx, dbClient)
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	migrator, err := migrate.NewMigrator(sqlDB, dir)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		results, err := migrator.Up(ctx)
		printResults(out, results...)
		return err
	case "down":
		result, err := migrator.Down(ctx)
		printResults(out, result)
		return err
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version")
		}
		results, err := migrator.To(ctx, version)
		printResults(out, results...)
		return err
	case "status":
		statuses, err := migrator.Status(ctx)
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-20s %s\n", applied, s.Source.Path)
		}
		return err
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
}

func create(out io.Writer, dir, name string) error {
	if name == "" {
		return fmt.Errorf("missing -name")
	}
	path, err := migrate.CreateSQLMigration(dir, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "created migration:", path)
	return nil
}

func printResults(out io.Writer, results ...*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fmt.Fprintf(out, "%-4s %s (%s)\n", r.Direction, r.Source.Path, r.Duration)
	}
}

func orDefault(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
