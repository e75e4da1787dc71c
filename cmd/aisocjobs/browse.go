package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/aisocjobs/internal/browse"
	"github.com/amishk599/aisocjobs/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the last snapshot interactively (TUI)",
	Long:  "Opens a terminal browser over the most recent snapshot: scroll, filter by category, and open postings in the browser.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	if len(snap.Jobs) == 0 {
		fmt.Println("Snapshot is empty.")
		return nil
	}

	return browse.Run(snap)
}
