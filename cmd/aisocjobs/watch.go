package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/aisocjobs/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Collect on an interval",
	Long:  "Runs one collection immediately, then repeats on collect_interval until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.CollectInterval.String(),
		"data_dir", cfg.DataDir,
		"classifier_enabled", cfg.Classifier.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, cleanup, err := buildCollector(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to build collector", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	runner := scheduler.RunnerFunc(func(ctx context.Context) error {
		_, err := c.Collect(ctx)
		return err
	})

	sched := scheduler.NewScheduler(runner, cfg.CollectInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
