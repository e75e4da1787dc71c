package aggregate

import (
	"testing"

	"github.com/amishk599/aisocjobs/internal/model"
)

func TestMergeDedupesBySourceURL(t *testing.T) {
	a := []model.Posting{
		{Title: "AI Ethics Researcher", Company: "Acme", SourceURL: "https://example.com/1", SourceSite: "rss_jobs"},
	}
	b := []model.Posting{
		{Title: "AI Ethics Researcher (repost)", Company: "Acme", SourceURL: "https://example.com/1", SourceSite: "jsearch"},
		{Title: "Policy Analyst", Company: "Beta", SourceURL: "https://example.com/2", SourceSite: "jsearch"},
	}

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(merged))
	}
	// First occurrence wins.
	if merged[0].SourceSite != "rss_jobs" {
		t.Errorf("expected first-seen posting kept, got source %q", merged[0].SourceSite)
	}
}

func TestMergeFallsBackToTitleCompanyKey(t *testing.T) {
	a := []model.Posting{{Title: "AI Policy Fellow", Company: "Gov"}}
	b := []model.Posting{
		{Title: "AI Policy Fellow", Company: "Gov"},
		{Title: "AI Policy Fellow", Company: "Other Gov"},
	}

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(merged))
	}
}

func TestRankStableDescending(t *testing.T) {
	postings := []model.Posting{
		{Title: "low", RelevanceScore: 40},
		{Title: "high", RelevanceScore: 95},
		{Title: "mid-a", RelevanceScore: 70},
		{Title: "mid-b", RelevanceScore: 70},
	}

	Rank(postings)

	want := []string{"high", "mid-a", "mid-b", "low"}
	for i, title := range want {
		if postings[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, postings[i].Title)
		}
	}
}

func TestComputeStats(t *testing.T) {
	postings := []model.Posting{
		{JobType: model.JobTypeIndustry, Category: model.CategoryResearch, SourceSite: "rss_jobs", RelevanceScore: 90, IsRemote: true, Analyzed: true},
		{JobType: model.JobTypeIndustry, Category: model.CategoryPolicy, SourceSite: "jsearch", RelevanceScore: 70, SalaryInfo: "$120k"},
		{JobType: model.JobTypeFaculty, Category: model.CategoryResearch, SourceSite: "rss_jobs", RelevanceScore: 50},
	}

	stats := ComputeStats(postings)

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByJobType["industry"] != 2 || stats.ByJobType["faculty"] != 1 {
		t.Errorf("ByJobType = %v", stats.ByJobType)
	}
	if stats.ByCategory["research"] != 2 {
		t.Errorf("ByCategory = %v", stats.ByCategory)
	}
	if stats.BySource["rss_jobs"] != 2 {
		t.Errorf("BySource = %v", stats.BySource)
	}
	if stats.RemoteJobs != 1 || stats.WithSalary != 1 || stats.Analyzed != 1 {
		t.Errorf("RemoteJobs=%d WithSalary=%d Analyzed=%d", stats.RemoteJobs, stats.WithSalary, stats.Analyzed)
	}
	if stats.HighRelevance != 1 {
		t.Errorf("HighRelevance = %d, want 1", stats.HighRelevance)
	}
	if stats.AverageScore != 70 {
		t.Errorf("AverageScore = %v, want 70", stats.AverageScore)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.AverageScore != 0 {
		t.Errorf("unexpected stats for empty input: %+v", stats)
	}
}

func TestBuildSnapshot(t *testing.T) {
	postings := []model.Posting{
		{Title: "low", SourceURL: "https://example.com/a", RelevanceScore: 30},
		{Title: "high", SourceURL: "https://example.com/b", RelevanceScore: 85},
	}

	snap := BuildSnapshot(postings, []string{"rss", "mock"}, true)

	if snap.Metadata.RunID == "" {
		t.Error("expected non-empty run ID")
	}
	if snap.Metadata.TotalJobs != 2 {
		t.Errorf("TotalJobs = %d, want 2", snap.Metadata.TotalJobs)
	}
	if !snap.Metadata.ModelScored {
		t.Error("expected ModelScored true")
	}
	if snap.Jobs[0].Title != "high" {
		t.Errorf("expected highest-scored posting first, got %q", snap.Jobs[0].Title)
	}
	if snap.Stats.Total != 2 {
		t.Errorf("Stats.Total = %d, want 2", snap.Stats.Total)
	}
}
