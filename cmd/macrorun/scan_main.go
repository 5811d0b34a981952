package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/macrorun/internal/cache"
	"github.com/sawpanic/macrorun/internal/config"
	"github.com/sawpanic/macrorun/internal/fred"
	"github.com/sawpanic/macrorun/internal/metrics"
	"github.com/sawpanic/macrorun/internal/pipeline"
)

func runScan(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.OutputDir = out
	}
	if window, _ := cmd.Flags().GetInt("window-days"); window > 0 {
		cfg.WindowDays = window
	}
	if start, _ := cmd.Flags().GetString("start"); start != "" {
		cfg.StartDate = start
	}
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		cfg.RedisAddr = addr
	}

	// Configuration problems are the only fatal class; everything
	// per-series degrades inside the run.
	if err := cfg.ResolveAPIKey(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var obsCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr)
		defer rc.Close()
		obsCache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("observation cache enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(cfg, fred.NewClient(cfg.Fred, obsCache), metrics.NewRegistry())
	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if err := runner.WriteArtifacts(res); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	fmt.Printf("run %s complete: %d dashboard rows, %d feature columns, regime %s\n",
		res.RunID, len(res.Rows), len(res.Frame.Columns()), res.Snapshot.Regime)
	return nil
}
