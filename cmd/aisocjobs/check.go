package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Collect once, print results, exit",
	Long:  "One-shot collection that prints kept postings without persisting anything. Shorthand for `collect --dry-run`.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be persisted")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, cleanup, err := buildCollector(ctx, cfg, true, logger)
	if err != nil {
		logger.Error("failed to build collector", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	result, err := c.Collect(ctx)
	if err != nil {
		logger.Error("collection failed", "error", err)
		os.Exit(1)
	}

	printResult(result)
	logger.Info("check complete")
	return nil
}
