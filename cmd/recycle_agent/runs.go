package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/recycling-locator/internal/config"
	"github.com/jonathan/recycling-locator/internal/db"
	"github.com/jonathan/recycling-locator/internal/observability"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived search runs",
	Long:  "Runs lists recent search runs archived in PostgreSQL, or shows the records of one run when --run-id is given.",
	RunE:  runRuns,
}

var (
	runsDatabaseURL string
	runsLimit       int
	runsRunID       string
)

func init() {
	runsCmd.Flags().StringVar(&runsDatabaseURL, "database-url", "", "PostgreSQL URL (overrides DATABASE_URL env var)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsRunID, "run-id", "", "Show the records of a single run")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runsLimit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", runsLimit)
	}

	var runID uuid.UUID
	if runsRunID != "" {
		id, err := uuid.Parse(runsRunID)
		if err != nil {
			return fmt.Errorf("invalid --run-id %q: %w", runsRunID, err)
		}
		runID = id
	}

	cfg, err := config.FromEnv(config.Defaults(), nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL = runsDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return errors.New("no database configured: set --database-url or DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), dbConnectTimeout)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())

	if runID == uuid.Nil {
		runs, err := database.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		printer.PrintRuns(runs)
		return nil
	}

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	facilities, err := database.ListFacilities(ctx, runID)
	if err != nil {
		return err
	}
	printer.PrintArchivedRun(*run, facilities)
	return nil
}
