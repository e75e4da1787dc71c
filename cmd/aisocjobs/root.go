package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/aisocjobs/internal/adapter"
	"github.com/amishk599/aisocjobs/internal/classify"
	"github.com/amishk599/aisocjobs/internal/config"
	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/notifier"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
	"github.com/amishk599/aisocjobs/internal/retry"
	"github.com/amishk599/aisocjobs/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "aisocjobs",
	Short: "AI & society job radar",
	Long:  "aisocjobs aggregates AI ethics, policy, and governance job postings from multiple sources into ranked JSON snapshots.",
	// Default to `collect` so the bare binary runs one collection cycle,
	// which keeps cron entries that invoke the binary directly working.
	RunE: runCollect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: AISOCJOBS_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it. Priority: explicit
// path arg > AISOCJOBS_CONFIG env var > "./config.yaml". A .env file in
// the working directory is loaded first so ${VAR} references in the
// YAML resolve.
func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("AISOCJOBS_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildAdapters constructs one adapter per enabled source, each wrapped
// in the retry decorator. A jsearch source without an API key degrades
// to the mock adapter so the pipeline stays exercisable.
func buildAdapters(cfg *config.Config, httpClient *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) []model.SourceAdapter {
	var adapters []model.SourceAdapter

	add := func(a model.SourceAdapter) {
		adapters = append(adapters, retry.Wrap(a, 2, 5*time.Second, logger))
		logger.Info("registered source", "source", a.Name())
	}

	s := cfg.Sources
	if s.RSS.Enabled {
		add(adapter.NewRSSAdapter(s.RSS.Feeds, httpClient, limiter, logger))
	}
	if s.JSearch.Enabled {
		if s.JSearch.APIKey == "" {
			logger.Warn("jsearch enabled without api key, using mock source instead")
			add(adapter.NewMockAdapter(s.JSearch.Queries))
		} else {
			add(adapter.NewJSearchAdapter(s.JSearch.APIKey, s.JSearch.Queries, s.JSearch.Countries, httpClient, limiter, logger))
		}
	}
	if s.LinkedIn.Enabled {
		add(adapter.NewLinkedInAdapter(s.LinkedIn.Keywords, s.LinkedIn.Locations, s.LinkedIn.ExperienceLevels, httpClient, limiter, logger))
	}
	if s.Mock.Enabled {
		add(adapter.NewMockAdapter(s.Mock.Queries))
	}

	return adapters
}

// buildClassifier wires the two-stage classifier. When model scoring is
// disabled or the API key is missing the provider stays nil and every
// gated posting receives the neutral score.
func buildClassifier(ctx context.Context, cfg *config.Config, limiter *ratelimit.Limiter, logger *slog.Logger) *classify.Classifier {
	keywords := classify.Keywords{
		Include: cfg.Keywords.Include,
		Exclude: cfg.Keywords.Exclude,
	}
	opts := classify.Options{
		Threshold:     cfg.Classifier.Threshold,
		NeutralScore:  cfg.Classifier.NeutralScore,
		FallbackScore: cfg.Classifier.FallbackScore,
	}

	var provider classify.LLMProvider
	var budget *ratelimit.Budget
	if cfg.Classifier.Enabled {
		if cfg.Classifier.APIKey == "" {
			logger.Warn("classifier enabled without api key, postings get the neutral score")
		} else {
			p, err := classify.NewGeminiProvider(ctx, cfg.Classifier.APIKey, cfg.Classifier.Model)
			if err != nil {
				logger.Error("gemini client init failed, postings get the neutral score", "error", err)
			} else {
				provider = p
				budget = ratelimit.NewBudget(cfg.Classifier.MaxCalls)
				logger.Info("model scoring enabled", "model", cfg.Classifier.Model, "max_calls", cfg.Classifier.MaxCalls)
			}
		}
	}

	return classify.New(keywords, provider, limiter, budget, opts, logger)
}

func seenDBPathFor(dataDir string) string {
	return filepath.Join(dataDir, "seen.db")
}

// openStores opens the snapshot store and the seen store. In dry-run
// mode the seen store is a no-op and run history is disabled.
func openStores(cfg *config.Config, dryRun bool, logger *slog.Logger) (*store.SnapshotStore, model.SeenStore, *store.SQLiteStore, error) {
	snapshots, err := store.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}

	if dryRun {
		logger.Info("dry-run mode enabled, no postings will be marked as seen")
		return snapshots, store.NewNopStore(), nil, nil
	}

	sqlStore, err := store.NewSQLiteStore(seenDBPathFor(cfg.DataDir))
	if err != nil {
		return nil, nil, nil, err
	}
	return snapshots, sqlStore, sqlStore, nil
}
