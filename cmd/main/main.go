package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "market-dashboard",
	Short: "Real-time market dashboard over a pushed feed tree",
	Long: `market-dashboard subscribes to the market feed, projects every snapshot
into dashboard views and serves them over HTTP and websocket. Candle history
is read from the pipeline's history table.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/default.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, snapshotCmd, chartCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "market-dashboard: %v\n", err)
		os.Exit(1)
	}
}
