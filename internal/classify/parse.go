package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/aisocjobs/internal/model"
)

// rawAssessment is the JSON shape the model is asked for. Scores are
// decoded as float64 to tolerate "85.0".
type rawAssessment struct {
	IsRelevant     *bool    `json:"is_relevant"`
	RelevanceScore *float64 `json:"relevance_score"`
	Category       string   `json:"category"`
	Reasoning      string   `json:"reasoning"`
	KeyTopics      []string `json:"key_topics"`
	Confidence     string   `json:"confidence"`
}

var numberRegex = regexp.MustCompile(`\b(\d{1,3})\b`)

// ParseAssessment decodes a model response into an Assessment. It first
// tries the response as-is, then the region between the first "{" and
// the last "}" to shed a markdown code fence. An error means the text
// holds no parseable JSON object; callers should fall back to
// HeuristicAssessment.
func ParseAssessment(raw string) (model.Assessment, error) {
	var ra rawAssessment
	if err := json.Unmarshal([]byte(raw), &ra); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return model.Assessment{}, fmt.Errorf("no JSON object in response")
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &ra); err != nil {
			return model.Assessment{}, fmt.Errorf("unmarshal assessment: %w", err)
		}
	}

	a := model.Assessment{
		Category:   parseCategory(ra.Category),
		Reasoning:  ra.Reasoning,
		KeyTopics:  ra.KeyTopics,
		Confidence: parseConfidence(ra.Confidence),
		Analyzed:   true,
	}

	if ra.RelevanceScore != nil {
		a.RelevanceScore = model.ClampScore(int(*ra.RelevanceScore))
	}
	if ra.IsRelevant != nil {
		a.IsRelevant = *ra.IsRelevant
	} else {
		// Mirror the score when the flag is missing.
		a.IsRelevant = a.RelevanceScore >= 30
	}
	return a, nil
}

var irrelevantIndicators = []string{"not relevant", "irrelevant", "\"is_relevant\": false"}

// HeuristicAssessment derives a best-effort assessment from unparseable
// response text: indicator substrings decide relevance, and the first
// number in [0,100] becomes the score. Used when the model answered in
// prose instead of JSON.
func HeuristicAssessment(raw string, defaultScore int) model.Assessment {
	text := strings.ToLower(strings.TrimSpace(raw))

	relevant := true
	for _, ind := range irrelevantIndicators {
		if strings.Contains(text, ind) {
			relevant = false
			break
		}
	}
	// A bare "no" answer also rejects.
	if text == "no" || strings.HasPrefix(text, "no ") || strings.HasPrefix(text, "no.") {
		relevant = false
	}

	score := defaultScore
	for _, m := range numberRegex.FindAllString(text, -1) {
		if n, err := strconv.Atoi(m); err == nil && n <= 100 {
			score = n
			break
		}
	}

	return model.Assessment{
		IsRelevant:     relevant,
		RelevanceScore: model.ClampScore(score),
		Category:       model.CategoryResearch,
		Reasoning:      "heuristic analysis of unstructured model response",
		Analyzed:       true,
		Note:           "response was not valid JSON",
	}
}

func parseCategory(s string) model.Category {
	switch model.Category(strings.ToLower(strings.TrimSpace(s))) {
	case model.CategoryResearch:
		return model.CategoryResearch
	case model.CategoryPolicy:
		return model.CategoryPolicy
	case model.CategoryLegal:
		return model.CategoryLegal
	case model.CategoryTechnical:
		return model.CategoryTechnical
	default:
		return ""
	}
}

func parseConfidence(s string) model.Confidence {
	switch model.Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	case model.ConfidenceMedium:
		return model.ConfidenceMedium
	case model.ConfidenceLow:
		return model.ConfidenceLow
	default:
		return ""
	}
}
