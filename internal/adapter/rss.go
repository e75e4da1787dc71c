// Package adapter holds one source adapter per origin. Adapters do
// transport and minimal structural parsing only; normalization happens
// downstream.
package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/mmcdole/gofeed"

	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

// RSSAdapter pulls job postings from RSS/Atom feeds grouped by feed
// kind (academic, job_boards, ...). A feed that fails to fetch or parse
// is logged and skipped; the adapter itself never fails the run.
type RSSAdapter struct {
	feeds   map[string][]string
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewRSSAdapter creates an adapter over the given feed groups.
func NewRSSAdapter(feeds map[string][]string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.Client = client

	return &RSSAdapter{
		feeds:   feeds,
		parser:  parser,
		limiter: limiter,
		logger:  logger,
	}
}

// Name implements model.SourceAdapter.
func (a *RSSAdapter) Name() string { return "rss" }

// Fetch parses every configured feed and returns the raw entries.
// Feed kinds are visited in sorted order so runs are reproducible.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	kinds := make([]string, 0, len(a.feeds))
	for kind := range a.feeds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var out []model.RawPosting
	for _, kind := range kinds {
		for _, feedURL := range a.feeds[kind] {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := a.limiter.WaitURL(ctx, feedURL); err != nil {
				return out, err
			}

			feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				a.logger.Warn("rss feed failed, skipping", "url", feedURL, "error", err)
				continue
			}

			for _, item := range feed.Items {
				out = append(out, rawFromItem(item, kind))
			}
			a.logger.Debug("rss feed parsed", "url", feedURL, "entries", len(feed.Items))
		}
	}
	return out, nil
}

func rawFromItem(item *gofeed.Item, kind string) model.RawPosting {
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	raw := model.RawPosting{
		Title:   item.Title,
		Summary: summary,
		Link:    item.Link,
		Author:  author,
		Source:  "rss_" + kind,
	}
	if item.PublishedParsed != nil {
		raw.Published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		raw.Published = item.UpdatedParsed
	}
	return raw
}
