package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/aisocjobs/internal/model"
)

// mockTemplate seeds one deterministic demo posting per query.
type mockTemplate struct {
	titleFormat string
	company     string
	location    string
	salary      string
}

var mockTemplates = []mockTemplate{
	{"Senior %s Specialist", "Google", "Mountain View, CA, US", "USD 150000 - 250000"},
	{"%s Program Manager", "Meta", "Menlo Park, CA, US", "USD 140000 - 220000"},
}

// MockAdapter yields deterministic demo postings. It stands in for a
// paid source when its API key is absent, and backs demo runs with no
// network at all.
type MockAdapter struct {
	queries []string
}

// NewMockAdapter creates a mock source for the given queries.
func NewMockAdapter(queries []string) *MockAdapter {
	if len(queries) == 0 {
		queries = []string{"AI ethics", "AI policy"}
	}
	return &MockAdapter{queries: queries}
}

// Name implements model.SourceAdapter.
func (a *MockAdapter) Name() string { return "mock" }

// Fetch generates postings without touching the network. It never fails.
func (a *MockAdapter) Fetch(_ context.Context) ([]model.RawPosting, error) {
	now := time.Now()
	var out []model.RawPosting
	for _, query := range a.queries {
		for _, tmpl := range mockTemplates {
			title := fmt.Sprintf(tmpl.titleFormat, query)
			out = append(out, model.RawPosting{
				Title: title,
				Summary: fmt.Sprintf(
					"Work on %s initiatives with a focus on responsible AI development and societal impact.",
					query,
				),
				Link: fmt.Sprintf("https://example.com/jobs/%s/%s",
					slugify(tmpl.company), slugify(title)),
				Source:     "mock",
				Company:    tmpl.company,
				Location:   tmpl.location,
				SalaryInfo: tmpl.salary,
				Published:  &now,
				Tags:       []string{query},
			})
		}
	}
	return out, nil
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
