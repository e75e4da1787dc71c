package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/aisocjobs/internal/collector"
	"github.com/amishk599/aisocjobs/internal/config"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

var dryRun bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection cycle",
	Long:  "Fetches all enabled sources, classifies, and writes the snapshot files. Exits non-zero if every source fails.",
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().BoolVar(&dryRun, "dry-run", false, "collect and print, but do not persist or notify")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, cleanup, err := buildCollector(ctx, cfg, dryRun, logger)
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

	if dryRun {
		printResult(result)
	}
	return nil
}

// buildCollector assembles the full pipeline from config. The returned
// cleanup closes the seen store. In dry-run mode nothing is persisted
// and notifications are off.
func buildCollector(ctx context.Context, cfg *config.Config, dry bool, logger *slog.Logger) (*collector.Collector, func(), error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	adapters := buildAdapters(cfg, httpClient, limiter, logger)
	if len(adapters) == 0 {
		return nil, nil, fmt.Errorf("no sources enabled")
	}

	classifier := buildClassifier(ctx, cfg, limiter, logger)

	snapshots, seen, sqlStore, err := openStores(cfg, dry, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlStore != nil {
			sqlStore.Close()
		}
	}

	var saver collector.SnapshotSaver
	var runs collector.RunRecorder
	notify := setupNotifier(cfg, httpClient, logger)
	if dry {
		notify = nil
	} else {
		saver = snapshots
		if sqlStore != nil {
			runs = sqlStore
		}
	}

	c := collector.New(adapters, classifier, seen, saver, runs, notify, cfg.Notification.MinScore, logger)
	return c, cleanup, nil
}

func printResult(result collector.Result) {
	snap := result.Snapshot
	fmt.Printf("Collected %d postings (%d analyzed, avg score %d)\n",
		snap.Stats.Total, snap.Stats.Analyzed, snap.Stats.AverageScore)
	for _, p := range snap.Jobs {
		fmt.Printf("  %3d  %-50.50s  %-25.25s  %s\n", p.RelevanceScore, p.Title, p.Company, p.SourceURL)
	}
	if len(result.SourceErrors) > 0 {
		fmt.Printf("Failed sources:\n")
		for name, err := range result.SourceErrors {
			fmt.Printf("  %s: %v\n", name, err)
		}
	}
}
