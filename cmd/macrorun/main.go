package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "macrorun"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "FRED macro dashboard and regime scanner",
		Version: version,
		Long: `macrorun ingests macroeconomic series from FRED, aligns them onto a
daily calendar, derives spreads, z-scored composites and a growth/inflation
regime label, and writes the dashboard and feature-table artifacts.`,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one fetch-align-classify batch",
		Long:  "Fetches the configured series catalog, computes derived factors, composite indices and the regime label, then writes the artifacts atomically.",
		RunE:  runScan,
	}
	scanCmd.Flags().String("config", "", "YAML config overlaying the defaults")
	scanCmd.Flags().String("out", "", "Output directory (overrides config)")
	scanCmd.Flags().Int("window-days", 0, "Daily calendar window (overrides config)")
	scanCmd.Flags().String("start", "", "Inclusive fetch start date YYYY-MM-DD (overrides config)")
	scanCmd.Flags().String("redis", "", "Redis address for the observation cache (overrides config)")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve /health and /metrics",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("addr", ":8090", "Listen address")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
