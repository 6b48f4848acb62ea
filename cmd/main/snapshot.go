package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"market-dashboard/src/feed"
	"market-dashboard/src/helpers"
	"market-dashboard/src/history"
	"market-dashboard/src/models"
	"market-dashboard/src/projection"
	"market-dashboard/src/utils"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

var (
	snapshotTab     string
	snapshotTimeout time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the dashboard view of the first feed snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshot()
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart SYMBOL",
	Short: "Print the chart view of one symbol as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChart(args[0])
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotTab, "tab", "", "news tab (macro, portfolio, watchlist)")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 30*time.Second, "how long to wait for the first snapshot")
}

// -----------------------------------------------------------------------------

func runSnapshot() error {
	conf, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	tab := conf.DefaultTab()
	if snapshotTab != "" {
		parsed, ok := models.ParseCategory(snapshotTab)
		if !ok {
			return fmt.Errorf("unknown tab '%s'", snapshotTab)
		}
		tab = parsed
	}

	transport, closeTransport, err := setupTransport(conf, appLogger)
	if err != nil {
		return err
	}
	defer closeTransport()

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	manager := feed.NewSubscriptionManager(transport, nil, conf.Feed.Path, appLogger.Named("Subscription"))
	unsubscribe, err := manager.Subscribe(ctx, nil)
	if err != nil {
		return err
	}
	defer unsubscribe()

	snapshot, err := manager.WaitLatest(ctx)
	if errors.Is(err, helpers.ErrNotYetAvailable) {
		return fmt.Errorf("no snapshot within %s", snapshotTimeout)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	scheduler := utils.NewMarketScheduler(conf.Dashboard.DomesticMIC, conf.Dashboard.GlobalMIC, appLogger.Named("Calendar"))
	view := projection.BuildDashboardView(snapshot, projection.ViewOptions{
		Tab:              tab,
		Now:              now,
		Session:          scheduler.Session(now),
		DomesticCountry:  conf.Dashboard.DomesticCountry,
		DomesticSuffixes: conf.Dashboard.DomesticSuffixes,
	})
	return printJSON(view)
}

// -----------------------------------------------------------------------------

func runChart(symbol string) error {
	conf, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	db, err := setupDatabase(conf, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	loader := history.NewLoader(db, nil, conf.Storage.HistoryWindow, appLogger.Named("History"))
	defer loader.Close()
	loader.Load(symbol)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	view, err := loader.Wait(ctx)
	if err != nil {
		return fmt.Errorf("history query for %s: %w", symbol, err)
	}
	return printJSON(view)
}

// -----------------------------------------------------------------------------

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
