package model

import "time"

// Stats aggregates counts over one collection run.
type Stats struct {
	Total         int            `json:"total"`
	ByJobType     map[string]int `json:"by_job_type"`
	ByCategory    map[string]int `json:"by_category"`
	BySource      map[string]int `json:"by_source"`
	RemoteJobs    int            `json:"remote_jobs"`
	WithSalary    int            `json:"with_salary"`
	Analyzed      int            `json:"analyzed"`
	HighRelevance int            `json:"high_relevance"` // score >= 80
	AverageScore  int            `json:"average_relevance"`
}

// SnapshotMetadata describes the run that produced a snapshot.
type SnapshotMetadata struct {
	RunID       string    `json:"run_id"`
	TotalJobs   int       `json:"total_jobs"`
	LastUpdate  time.Time `json:"last_update"`
	Sources     []string  `json:"sources"`
	ModelScored bool      `json:"model_scored"`
}

// Snapshot is the full persisted result of one run: postings sorted by
// relevance score descending, plus stats and metadata. It is a value,
// built once and never mutated afterwards.
type Snapshot struct {
	Jobs     []Posting        `json:"jobs"`
	Stats    Stats            `json:"stats"`
	Metadata SnapshotMetadata `json:"metadata"`
}
