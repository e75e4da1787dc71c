package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all sources with their status.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-12s %-10s %s\n", "Source", "Status", "Detail")
	fmt.Println(strings.Repeat("─", 60))

	s := cfg.Sources
	printSource("rss", s.RSS.Enabled, fmt.Sprintf("%d feed groups", len(s.RSS.Feeds)))

	jsearchDetail := fmt.Sprintf("%d queries", len(s.JSearch.Queries))
	if s.JSearch.Enabled && s.JSearch.APIKey == "" {
		jsearchDetail += " (no api key, mock fallback)"
	}
	printSource("jsearch", s.JSearch.Enabled, jsearchDetail)

	printSource("linkedin", s.LinkedIn.Enabled, fmt.Sprintf("%d keywords, %d locations", len(s.LinkedIn.Keywords), len(s.LinkedIn.Locations)))
	printSource("mock", s.Mock.Enabled, fmt.Sprintf("%d queries", len(s.Mock.Queries)))

	fmt.Printf("\nClassifier: enabled=%v model=%s threshold=%d\n",
		cfg.Classifier.Enabled, cfg.Classifier.Model, cfg.Classifier.Threshold)
	return nil
}

func printSource(name string, enabled bool, detail string) {
	status := "disabled"
	if enabled {
		status = "enabled"
	}
	fmt.Printf("%-12s %-10s %s\n", name, status, detail)
}
