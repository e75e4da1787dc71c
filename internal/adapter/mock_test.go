package adapter

import (
	"context"
	"testing"
)

func TestMockFetchDeterministic(t *testing.T) {
	a := NewMockAdapter([]string{"AI governance"})

	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 postings per query, got %d", len(raws))
	}

	first := raws[0]
	if first.Title != "Senior AI governance Specialist" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Company != "Google" {
		t.Errorf("Company = %q", first.Company)
	}
	if first.Link != "https://example.com/jobs/google/senior-ai-governance-specialist" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Source != "mock" {
		t.Errorf("Source = %q", first.Source)
	}
	if first.Published == nil {
		t.Error("Published should be set")
	}

	// Links are stable across runs, so dedup treats them as already seen.
	again, _ := a.Fetch(context.Background())
	if again[0].Link != raws[0].Link {
		t.Errorf("links differ across runs: %q vs %q", again[0].Link, raws[0].Link)
	}
}

func TestMockDefaultQueries(t *testing.T) {
	a := NewMockAdapter(nil)
	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 4 {
		t.Fatalf("expected 4 postings from 2 default queries, got %d", len(raws))
	}
}
