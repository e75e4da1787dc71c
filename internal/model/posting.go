package model

import (
	"context"
	"time"
)

// JobType classifies the employer kind of a posting.
type JobType string

const (
	JobTypeFaculty       JobType = "faculty"
	JobTypeIndustry      JobType = "industry"
	JobTypeNonprofit     JobType = "nonprofit"
	JobTypeGovernment    JobType = "government"
	JobTypeInternational JobType = "international"
)

// Category classifies the kind of work a posting describes.
type Category string

const (
	CategoryResearch  Category = "research"
	CategoryPolicy    Category = "policy"
	CategoryLegal     Category = "legal"
	CategoryTechnical Category = "technical"
)

// Confidence expresses how sure the model was about an assessment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Posting is the canonical representation of one job advertisement,
// regardless of which source it came from. Field names mirror the
// snapshot file schema.
type Posting struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	JobType         JobType  `json:"job_type"`
	Category        Category `json:"category"`
	Description     string   `json:"description"`      // truncated for display
	FullDescription string   `json:"full_description"` // untruncated, fed to the classifier
	PostingDate     string   `json:"posting_date"`     // YYYY-MM-DD
	Deadline        string   `json:"deadline,omitempty"`
	SourceURL       string   `json:"source_url"`
	SourceSite      string   `json:"source_site"`
	Tags            []string `json:"tags"`
	RelevanceScore  int      `json:"relevance_score"` // always in [0,100]
	IsRemote        bool     `json:"is_remote"`
	SalaryInfo      string   `json:"salary_info,omitempty"`

	// Classifier bookkeeping. Analyzed is true only when the external model
	// produced the score; AnalysisNote records why it did not.
	Analyzed     bool       `json:"analyzed"`
	Reasoning    string     `json:"reasoning,omitempty"`
	KeyTopics    []string   `json:"key_topics,omitempty"`
	Confidence   Confidence `json:"confidence,omitempty"`
	AnalysisNote string     `json:"analysis_note,omitempty"`
}

// Key returns the deduplication key: the source URL when present,
// otherwise title+"-"+company.
func (p Posting) Key() string {
	if p.SourceURL != "" {
		return p.SourceURL
	}
	return p.Title + "-" + p.Company
}

// ClampScore bounds a relevance score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RawPosting is a source-native record as an adapter hands it over:
// transport and minimal structural parsing done, nothing normalized.
// Structured APIs may pre-fill the optional fields; feed-based sources
// leave them empty and the normalizer extracts them from free text.
type RawPosting struct {
	Title     string
	Summary   string // may contain HTML
	Link      string
	Author    string
	Published *time.Time
	Source    string // source_site tag, e.g. "rss_academic", "jsearch"

	// Optional structured fields, trusted over free-text extraction.
	Company    string
	Location   string
	SalaryInfo string
	Remote     bool
	Tags       []string
}

// Assessment is the relevance verdict for one posting. Produced by the
// classifier; its fields are folded into the Posting, it is not persisted
// on its own.
type Assessment struct {
	IsRelevant     bool       `json:"is_relevant"`
	RelevanceScore int        `json:"relevance_score"`
	Category       Category   `json:"category"`
	Reasoning      string     `json:"reasoning"`
	KeyTopics      []string   `json:"key_topics"`
	Confidence     Confidence `json:"confidence,omitempty"`

	// Analyzed is false when the assessment came from a fallback path
	// (no API key, budget exhausted, model failure).
	Analyzed bool   `json:"-"`
	Note     string `json:"-"`
}

// SourceAdapter produces the raw postings of one origin. Implementations
// handle transport and minimal structural parsing only; a failed fetch
// returns an error and contributes nothing to the run.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]RawPosting, error)
}

// SeenStore tracks posting keys across runs so notifications fire only
// for postings seen for the first time.
type SeenStore interface {
	HasSeen(key string) (bool, error)
	MarkSeen(key string) error
	Cleanup(olderThan time.Duration) error
	// IsEmpty reports whether no key has ever been recorded, which
	// marks the very first run.
	IsEmpty() (bool, error)
}

// Notifier announces first-seen postings after a collection run.
type Notifier interface {
	Notify(postings []Posting) error
}
