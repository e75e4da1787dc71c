package classify

import (
	"testing"

	"github.com/amishk599/aisocjobs/internal/model"
)

func TestParseAssessmentPlainJSON(t *testing.T) {
	a, err := ParseAssessment(`{
		"is_relevant": true,
		"relevance_score": 85,
		"category": "research",
		"reasoning": "Strong fit.",
		"key_topics": ["AI safety"],
		"confidence": "medium"
	}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if !a.IsRelevant || a.RelevanceScore != 85 {
		t.Errorf("got relevant=%v score=%d", a.IsRelevant, a.RelevanceScore)
	}
	if a.Category != model.CategoryResearch || a.Confidence != model.ConfidenceMedium {
		t.Errorf("category=%q confidence=%q", a.Category, a.Confidence)
	}
	if !a.Analyzed {
		t.Error("expected Analyzed true")
	}
}

func TestParseAssessmentStripsCodeFence(t *testing.T) {
	a, err := ParseAssessment("```json\n{\"is_relevant\": true, \"relevance_score\": 72}\n```")
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.RelevanceScore != 72 {
		t.Errorf("RelevanceScore = %d, want 72", a.RelevanceScore)
	}
}

func TestParseAssessmentScoreClamped(t *testing.T) {
	a, err := ParseAssessment(`{"is_relevant": true, "relevance_score": 250}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.RelevanceScore != 100 {
		t.Errorf("RelevanceScore = %d, want clamped 100", a.RelevanceScore)
	}
}

func TestParseAssessmentMissingFlagMirrorsScore(t *testing.T) {
	a, err := ParseAssessment(`{"relevance_score": 45}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if !a.IsRelevant {
		t.Error("score 45 should imply relevant")
	}

	a, err = ParseAssessment(`{"relevance_score": 10}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.IsRelevant {
		t.Error("score 10 should imply irrelevant")
	}
}

func TestParseAssessmentUnknownCategoryDropped(t *testing.T) {
	a, err := ParseAssessment(`{"is_relevant": true, "relevance_score": 60, "category": "finance", "confidence": "huge"}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.Category != "" {
		t.Errorf("Category = %q, want empty for unknown value", a.Category)
	}
	if a.Confidence != "" {
		t.Errorf("Confidence = %q, want empty for unknown value", a.Confidence)
	}
}

func TestParseAssessmentNoJSON(t *testing.T) {
	if _, err := ParseAssessment("the posting looks relevant to me"); err == nil {
		t.Error("expected error for prose response")
	}
	if _, err := ParseAssessment(""); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestHeuristicAssessment(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantRelevant bool
		wantScore    int
	}{
		{"prose with score", "I would rate this 85 out of 100.", true, 85},
		{"explicit not relevant", "This posting is not relevant to the field.", false, 50},
		{"bare no", "no", false, 50},
		{"no prefix", "No. This is a catering job.", false, 50},
		{"innovation is not a rejection", "An innovative role, score 90.", true, 90},
		{"number over 100 skipped", "Req 12345 looks good, maybe 75.", true, 75},
		{"no number uses default", "Looks like a strong match.", true, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := HeuristicAssessment(tt.raw, 50)
			if a.IsRelevant != tt.wantRelevant {
				t.Errorf("IsRelevant = %v, want %v", a.IsRelevant, tt.wantRelevant)
			}
			if a.RelevanceScore != tt.wantScore {
				t.Errorf("RelevanceScore = %d, want %d", a.RelevanceScore, tt.wantScore)
			}
			if !a.Analyzed {
				t.Error("expected Analyzed true")
			}
			if a.Note == "" {
				t.Error("expected a note explaining the fallback")
			}
		})
	}
}
