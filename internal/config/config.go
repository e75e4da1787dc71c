package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the collector.
type Config struct {
	DataDir         string
	CollectInterval time.Duration // watch mode cadence
	HTTPTimeout     time.Duration
	Sources         SourcesConfig
	Keywords        KeywordsConfig
	Classifier      ClassifierConfig
	RateLimit       RateLimitConfig
	Notification    NotificationConfig
}

// SourcesConfig enables and parameterizes each adapter.
type SourcesConfig struct {
	RSS      RSSConfig      `yaml:"rss"`
	JSearch  JSearchConfig  `yaml:"jsearch"`
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Mock     MockConfig     `yaml:"mock"`
}

// RSSConfig lists feed URLs grouped by feed kind. The group name becomes
// part of the source_site tag (e.g. "rss_academic").
type RSSConfig struct {
	Enabled bool                `yaml:"enabled"`
	Feeds   map[string][]string `yaml:"feeds"`
}

// JSearchConfig drives the job-search API adapter. APIKey is expanded
// from the environment by Load; when empty the adapter degrades to mock
// output.
type JSearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	APIKey    string   `yaml:"api_key"`
	Queries   []string `yaml:"queries"`
	Countries []string `yaml:"countries"`
}

// LinkedInConfig drives the professional-network search adapter.
type LinkedInConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Keywords         []string `yaml:"keywords"`
	Locations        []string `yaml:"locations"`
	ExperienceLevels []string `yaml:"experience_levels"`
}

// MockConfig enables the deterministic demo source.
type MockConfig struct {
	Enabled bool     `yaml:"enabled"`
	Queries []string `yaml:"queries"`
}

// KeywordsConfig holds the stage-1 gate term lists. Empty lists fall back
// to the built-in defaults in the classify package.
type KeywordsConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// ClassifierConfig controls the optional stage-2 model scoring.
type ClassifierConfig struct {
	Enabled       bool
	APIKey        string
	Model         string
	Threshold     int // minimum relevance_score to keep a posting
	NeutralScore  int // assigned when no API key is configured
	FallbackScore int // assigned when a model call fails
	MaxCalls      int // per-run cap on external calls
	Timeout       time.Duration
}

// RateLimitConfig bounds outbound request rates. One token bucket per host
// plus a per-call wait before each stage-2 model request.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	MinScore   int    `yaml:"min_score"`   // only notify at or above this score
}

// rawConfig is used for YAML unmarshaling (snake_case fields and
// durations as strings).
type rawConfig struct {
	DataDir         string             `yaml:"data_dir"`
	CollectInterval string             `yaml:"collect_interval"`
	HTTPTimeout     string             `yaml:"http_timeout"`
	Sources         SourcesConfig      `yaml:"sources"`
	Keywords        KeywordsConfig     `yaml:"keywords"`
	Classifier      rawClassifier      `yaml:"classifier"`
	RateLimit       RateLimitConfig    `yaml:"rate_limit"`
	Notification    NotificationConfig `yaml:"notification"`
}

type rawClassifier struct {
	Enabled       bool   `yaml:"enabled"`
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	Threshold     *int   `yaml:"threshold"`
	NeutralScore  *int   `yaml:"neutral_score"`
	FallbackScore *int   `yaml:"fallback_score"`
	MaxCalls      *int   `yaml:"max_calls"`
	Timeout       string `yaml:"timeout"`
}

const (
	defaultModel         = "gemini-1.5-flash"
	defaultThreshold     = 30
	defaultNeutralScore  = 70
	defaultFallbackScore = 50
	defaultMaxCalls      = 100
)

// Load reads the YAML config at path, expands environment variables,
// applies defaults, validates, and returns the Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand ${GEMINI_API_KEY}-style references before parsing.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	interval := 6 * time.Hour
	if raw.CollectInterval != "" {
		d, err := time.ParseDuration(raw.CollectInterval)
		if err != nil {
			return nil, fmt.Errorf("parse collect_interval %q: %w", raw.CollectInterval, err)
		}
		interval = d
	}

	httpTimeout := 15 * time.Second
	if raw.HTTPTimeout != "" {
		d, err := time.ParseDuration(raw.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse http_timeout %q: %w", raw.HTTPTimeout, err)
		}
		httpTimeout = d
	}

	clTimeout := 30 * time.Second
	if raw.Classifier.Timeout != "" {
		d, err := time.ParseDuration(raw.Classifier.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse classifier.timeout %q: %w", raw.Classifier.Timeout, err)
		}
		clTimeout = d
	}

	dataDir := raw.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	rl := raw.RateLimit
	if rl.RequestsPerSecond <= 0 {
		rl.RequestsPerSecond = 1
	}
	if rl.Burst <= 0 {
		rl.Burst = 1
	}

	cfg := &Config{
		DataDir:         dataDir,
		CollectInterval: interval,
		HTTPTimeout:     httpTimeout,
		Sources:         raw.Sources,
		Keywords:        raw.Keywords,
		Classifier: ClassifierConfig{
			Enabled:       raw.Classifier.Enabled,
			APIKey:        raw.Classifier.APIKey,
			Model:         orString(raw.Classifier.Model, defaultModel),
			Threshold:     orInt(raw.Classifier.Threshold, defaultThreshold),
			NeutralScore:  orInt(raw.Classifier.NeutralScore, defaultNeutralScore),
			FallbackScore: orInt(raw.Classifier.FallbackScore, defaultFallbackScore),
			MaxCalls:      orInt(raw.Classifier.MaxCalls, defaultMaxCalls),
			Timeout:       clTimeout,
		},
		RateLimit:    rl,
		Notification: raw.Notification,
	}
	return cfg, nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func validate(cfg *Config) error {
	if cfg.CollectInterval <= 0 {
		return fmt.Errorf("collect_interval must be positive, got %v", cfg.CollectInterval)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}

	s := cfg.Sources
	if !s.RSS.Enabled && !s.JSearch.Enabled && !s.LinkedIn.Enabled && !s.Mock.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	if s.RSS.Enabled && len(s.RSS.Feeds) == 0 {
		return fmt.Errorf("sources.rss.feeds must not be empty when rss is enabled")
	}
	if s.JSearch.Enabled && len(s.JSearch.Queries) == 0 {
		return fmt.Errorf("sources.jsearch.queries must not be empty when jsearch is enabled")
	}
	if s.LinkedIn.Enabled && len(s.LinkedIn.Keywords) == 0 {
		return fmt.Errorf("sources.linkedin.keywords must not be empty when linkedin is enabled")
	}

	c := cfg.Classifier
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("classifier.threshold must be in [0,100], got %d", c.Threshold)
	}
	if c.NeutralScore < 0 || c.NeutralScore > 100 {
		return fmt.Errorf("classifier.neutral_score must be in [0,100], got %d", c.NeutralScore)
	}
	if c.FallbackScore < 0 || c.FallbackScore > 100 {
		return fmt.Errorf("classifier.fallback_score must be in [0,100], got %d", c.FallbackScore)
	}
	if c.MaxCalls < 0 {
		return fmt.Errorf("classifier.max_calls must be >= 0, got %d", c.MaxCalls)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
