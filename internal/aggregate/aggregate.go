// Package aggregate merges postings collected from multiple sources into
// a single deduplicated, ranked snapshot.
package aggregate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/aisocjobs/internal/model"
)

// highRelevanceThreshold marks postings counted as high-relevance in
// run statistics.
const highRelevanceThreshold = 80

// Merge combines per-source posting slices, dropping duplicates. The
// first occurrence of a key wins; later sources cannot overwrite it.
func Merge(batches ...[]model.Posting) []model.Posting {
	seen := make(map[string]struct{})
	var merged []model.Posting

	for _, batch := range batches {
		for _, p := range batch {
			key := p.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, p)
		}
	}

	return merged
}

// Rank sorts postings by relevance score, highest first. The sort is
// stable so equal-scoring postings keep their merge order.
func Rank(postings []model.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].RelevanceScore > postings[j].RelevanceScore
	})
}

// ComputeStats tallies run statistics over a set of postings.
func ComputeStats(postings []model.Posting) model.Stats {
	stats := model.Stats{
		Total:      len(postings),
		ByJobType:  make(map[string]int),
		ByCategory: make(map[string]int),
		BySource:   make(map[string]int),
	}

	scoreSum := 0
	for _, p := range postings {
		stats.ByJobType[string(p.JobType)]++
		stats.ByCategory[string(p.Category)]++
		stats.BySource[p.SourceSite]++
		if p.IsRemote {
			stats.RemoteJobs++
		}
		if p.SalaryInfo != "" {
			stats.WithSalary++
		}
		if p.Analyzed {
			stats.Analyzed++
		}
		if p.RelevanceScore >= highRelevanceThreshold {
			stats.HighRelevance++
		}
		scoreSum += p.RelevanceScore
	}

	if len(postings) > 0 {
		stats.AverageScore = scoreSum / len(postings)
	}

	return stats
}

// BuildSnapshot assembles the persisted snapshot for a collection run:
// merged postings ranked by score, run statistics, and metadata.
func BuildSnapshot(postings []model.Posting, sources []string, modelScored bool) model.Snapshot {
	Rank(postings)

	return model.Snapshot{
		Jobs:  postings,
		Stats: ComputeStats(postings),
		Metadata: model.SnapshotMetadata{
			RunID:       uuid.NewString(),
			TotalJobs:   len(postings),
			LastUpdate:  time.Now().UTC(),
			Sources:     sources,
			ModelScored: modelScored,
		},
	}
}
