package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/aisocjobs/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics from the last snapshot",
	Long:  "Reads the most recent snapshot and prints posting counts by job type, category, and source, plus run history.",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	snapshots, err := store.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	snap, err := snapshots.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No snapshot yet. Run `aisocjobs collect` first.")
			return nil
		}
		fmt.Fprintf(os.Stderr, "failed to load snapshot: %v\n", err)
		os.Exit(1)
	}

	stats := snap.Stats
	fmt.Printf("Last update:   %s (run %s)\n", snap.Metadata.LastUpdate.Format("2006-01-02 15:04 MST"), snap.Metadata.RunID)
	fmt.Printf("Total:         %d postings\n", stats.Total)
	fmt.Printf("Analyzed:      %d (model scored: %v)\n", stats.Analyzed, snap.Metadata.ModelScored)
	fmt.Printf("High (>=80):   %d\n", stats.HighRelevance)
	fmt.Printf("Average score: %d\n", stats.AverageScore)
	fmt.Printf("Remote:        %d   With salary: %d\n", stats.RemoteJobs, stats.WithSalary)

	printCounts("By job type", stats.ByJobType)
	printCounts("By category", stats.ByCategory)
	printCounts("By source", stats.BySource)

	printRunHistory(cfg.DataDir)
	return nil
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	fmt.Printf("\n%s\n%s\n", title, strings.Repeat("─", 30))

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		fmt.Printf("%-20s %d\n", k, counts[k])
	}
}

func printRunHistory(dataDir string) {
	sqlStore, err := store.NewSQLiteStore(seenDBPathFor(dataDir))
	if err != nil {
		return
	}
	defer sqlStore.Close()

	runs, err := sqlStore.RecentRuns(5)
	if err != nil || len(runs) == 0 {
		return
	}

	fmt.Printf("\nRecent runs\n%s\n", strings.Repeat("─", 30))
	for _, r := range runs {
		fmt.Printf("%s  %4d postings  %4d analyzed\n", r.CollectedAt.Format("2006-01-02 15:04"), r.Total, r.Analyzed)
	}
}
