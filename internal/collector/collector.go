// Package collector owns the full collection pipeline: fetch from every
// configured source, normalize, classify, aggregate, persist, notify.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/aisocjobs/internal/aggregate"
	"github.com/amishk599/aisocjobs/internal/classify"
	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/normalize"
	"github.com/amishk599/aisocjobs/internal/notifier"
	"github.com/amishk599/aisocjobs/internal/store"
)

// SnapshotSaver persists the snapshot of a finished run.
type SnapshotSaver interface {
	Save(model.Snapshot) error
}

// RunRecorder appends to the run history. The collector treats it as
// optional; a nil recorder skips history.
type RunRecorder interface {
	RecordRun(store.RunRecord) error
}

// Result summarizes one collection run.
type Result struct {
	Snapshot     model.Snapshot
	NewPostings  []model.Posting
	SourceErrors map[string]error
}

// Collector runs the pipeline across all configured source adapters.
type Collector struct {
	adapters       []model.SourceAdapter
	classifier     *classify.Classifier
	seen           model.SeenStore
	snapshots      SnapshotSaver
	runs           RunRecorder
	notifier       model.Notifier
	minNotifyScore int
	logger         *slog.Logger
}

// New creates a collector wired with all its dependencies. runs and
// notify may be nil to disable run history and notifications.
func New(
	adapters []model.SourceAdapter,
	classifier *classify.Classifier,
	seen model.SeenStore,
	snapshots SnapshotSaver,
	runs RunRecorder,
	notify model.Notifier,
	minNotifyScore int,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		adapters:       adapters,
		classifier:     classifier,
		seen:           seen,
		snapshots:      snapshots,
		runs:           runs,
		notifier:       notify,
		minNotifyScore: minNotifyScore,
		logger:         logger,
	}
}

// Collect runs one full cycle. A failing source degrades to an empty
// batch and the run continues; the run fails only if every source
// fails and nothing was collected.
func (c *Collector) Collect(ctx context.Context) (Result, error) {
	result := Result{SourceErrors: make(map[string]error)}

	var batches [][]model.Posting
	var sources []string
	totalFetched := 0
	for _, a := range c.adapters {
		sources = append(sources, a.Name())

		batch, fetched, err := c.collectSource(ctx, a)
		if err != nil {
			c.logger.Error("source failed, continuing without it", "source", a.Name(), "error", err)
			result.SourceErrors[a.Name()] = err
			continue
		}
		totalFetched += fetched
		batches = append(batches, batch)
	}

	merged := aggregate.Merge(batches...)

	if len(result.SourceErrors) == len(c.adapters) && len(c.adapters) > 0 {
		return result, fmt.Errorf("all %d sources failed", len(c.adapters))
	}
	// Total absence of data is an error even when every adapter
	// succeeded, so a run against dead feeds exits non-zero.
	if totalFetched == 0 {
		return result, fmt.Errorf("no postings collected from any of %d sources", len(c.adapters))
	}

	snap := aggregate.BuildSnapshot(merged, sources, c.classifier.ModelBacked())
	result.Snapshot = snap

	if c.snapshots != nil {
		if err := c.snapshots.Save(snap); err != nil {
			return result, fmt.Errorf("saving snapshot: %w", err)
		}
	}

	newPostings, err := c.detectNew(snap.Jobs)
	if err != nil {
		return result, err
	}
	result.NewPostings = newPostings

	if c.notifier != nil && len(newPostings) > 0 {
		toNotify := notifier.FilterByScore(newPostings, c.minNotifyScore)
		if len(toNotify) > 0 {
			if err := c.notifier.Notify(toNotify); err != nil {
				// Notification failure does not invalidate the run.
				c.logger.Error("notification failed", "error", err)
			}
		}
	}

	if c.runs != nil {
		rec := store.RunRecord{
			ID:          snap.Metadata.RunID,
			CollectedAt: snap.Metadata.LastUpdate,
			Total:       snap.Stats.Total,
			Analyzed:    snap.Stats.Analyzed,
		}
		if err := c.runs.RecordRun(rec); err != nil {
			c.logger.Error("recording run history failed", "error", err)
		}
	}

	c.logger.Info("collection run complete",
		"run_id", snap.Metadata.RunID,
		"total", snap.Stats.Total,
		"new", len(newPostings),
		"failed_sources", len(result.SourceErrors),
		"analyzed", snap.Stats.Analyzed,
	)

	return result, nil
}

// collectSource fetches one source and runs each raw posting through
// normalization and classification. The second return value is the raw
// fetch count, before any filtering.
func (c *Collector) collectSource(ctx context.Context, a model.SourceAdapter) ([]model.Posting, int, error) {
	start := time.Now()

	raws, err := a.Fetch(ctx)
	if err != nil {
		return nil, 0, err
	}

	var kept []model.Posting
	for _, raw := range raws {
		p, err := normalize.Normalize(raw)
		if err != nil {
			c.logger.Debug("skipping malformed posting", "source", a.Name(), "error", err)
			continue
		}

		p, keep := c.classifier.Classify(ctx, p)
		if !keep {
			continue
		}
		kept = append(kept, p)
	}

	c.logger.Info("source collected",
		"source", a.Name(),
		"fetched", len(raws),
		"kept", len(kept),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return kept, len(raws), nil
}

// detectNew returns the postings not yet in the seen store and marks
// everything seen. On the very first run nothing is reported as new, so
// a fresh install does not flood the notifier.
func (c *Collector) detectNew(postings []model.Posting) ([]model.Posting, error) {
	firstRun, err := c.seen.IsEmpty()
	if err != nil {
		return nil, fmt.Errorf("checking seen store: %w", err)
	}

	var fresh []model.Posting
	for _, p := range postings {
		key := p.Key()
		seen, err := c.seen.HasSeen(key)
		if err != nil {
			return nil, fmt.Errorf("checking seen status: %w", err)
		}
		if !seen {
			fresh = append(fresh, p)
		}
		if err := c.seen.MarkSeen(key); err != nil {
			return nil, fmt.Errorf("marking seen: %w", err)
		}
	}

	if firstRun {
		c.logger.Info("first run, seeding seen store without notifications", "postings", len(fresh))
		return nil, nil
	}
	return fresh, nil
}
