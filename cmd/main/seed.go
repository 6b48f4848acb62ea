package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"market-dashboard/src/models"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load bars from a JSON file into the history store and apply retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "JSON array of bars (symbol, date, open, high, low, close, volume)")
	_ = seedCmd.MarkFlagRequired("file")
}

// -----------------------------------------------------------------------------

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read seed file '%s': %w", seedFile, err)
	}
	var bars []models.MBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return fmt.Errorf("failed to parse seed file '%s': %w", seedFile, err)
	}

	db, err := setupDatabase(conf, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveBars(ctx, bars); err != nil {
		return fmt.Errorf("failed to save bars: %w", err)
	}
	appLogger.Info("Seeded %d bars into %s", len(bars), conf.Storage.HistoryTable)

	removed, err := db.CleanupOldData(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		appLogger.Info("Retention removed %d bars", removed)
	}
	return nil
}
