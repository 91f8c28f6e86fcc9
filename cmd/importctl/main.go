package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/ingest"
	v1 "github.com/raven2t2/importiq-backend/v1"
)

// fixtureFiles maps fixture entities to their conventional filenames inside
// the fixtures directory.
var fixtureFiles = map[string]string{
	"auctions":         "auctions.json",
	"compliance_rules": "compliance_rules.json",
	"duty_rates":       "duty_rates.json",
	"ports":            "ports.json",
	"mod_shops":        "mod_shops.json",
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:    "importctl",
		Usage:   "ImportIQ data operations: seed fixtures, sync feeds, validate records",
		Version: "1.0.0",
		Commands: []*cli.Command{
			seedCommand(),
			syncCommand(),
			validateCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("importctl failed", "error", err)
		os.Exit(1)
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load fixture files into the database (idempotent)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "fixtures",
				Aliases: []string{"f"},
				Usage:   "Directory containing fixture JSON files",
				Value:   "fixtures",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			dir := cmd.String("fixtures")
			fixtures := make(map[string]string)
			for entity, filename := range fixtureFiles {
				path := filepath.Join(dir, filename)
				if _, err := os.Stat(path); err == nil {
					fixtures[entity] = path
				}
			}
			if len(fixtures) == 0 {
				return fmt.Errorf("no fixture files found in %s", dir)
			}

			loader := ingest.NewLoader(db)
			results, err := loader.LoadAll(ctx, fixtures)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run the configured ingestion jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the ingestion TOML config",
				Value:   "ingest.toml",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run every job once and exit instead of scheduling",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config, err := ingest.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			db, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			fetcher := ingest.NewFetcher(config.Global, config.Auth)
			jobs, err := ingest.BuildJobs(config, fetcher, ingest.NewValidator(), ingest.NewLoader(db))
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("no ingestion jobs enabled in %s", cmd.String("config"))
			}

			scheduler := ingest.NewScheduler(jobs)
			if cmd.Bool("once") {
				if err := scheduler.RunOnce(ctx); err != nil {
					return err
				}
				return printJSON(scheduler.Stats())
			}

			slog.Info("Starting ingestion scheduler", "jobs", len(jobs))
			scheduler.Start(ctx)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a fixture or feed file and print the quality summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to a JSON file of records",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Record type: vehicle, duty_rate, or eligibility",
				Value: "vehicle",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print per-record errors and warnings",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := os.ReadFile(cmd.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			var records []ingest.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("failed to parse records: %w", err)
			}

			validator := ingest.NewValidator()
			results, err := validator.ValidateBatch(records, cmd.String("type"))
			if err != nil {
				return err
			}

			if cmd.Bool("verbose") {
				for i, result := range results {
					if len(result.Errors) > 0 || len(result.Warnings) > 0 {
						fmt.Fprintf(os.Stderr, "record %d: errors=%v warnings=%v\n", i, result.Errors, result.Warnings)
					}
				}
			}

			return printJSON(validator.Summarize(results))
		},
	}
}

func connectDB() (*gorm.DB, error) {
	db, err := v1.ConnectGormDB(v1.NewDatabaseConfig())
	if err != nil {
		return nil, err
	}
	if err := v1.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
