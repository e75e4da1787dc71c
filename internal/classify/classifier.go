// Package classify implements the two-stage relevance classifier: a
// deterministic keyword gate, then optional external-model scoring with
// graceful degradation when the model is unavailable.
package classify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/normalize"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

// Feed at most this much description text into the prompt.
const promptDescriptionLimit = 1200

// Options tunes the classifier's scoring behavior.
type Options struct {
	Threshold     int // minimum relevance_score to keep a posting
	NeutralScore  int // assigned when stage 2 is disabled (no API key)
	FallbackScore int // assigned when a stage-2 call fails
}

// Classifier applies the stage-1 keyword gate and, when a provider is
// configured, stage-2 model scoring. A nil provider disables stage 2
// entirely; every surviving posting then gets the neutral default score.
type Classifier struct {
	keywords Keywords
	provider LLMProvider
	limiter  *ratelimit.Limiter
	budget   *ratelimit.Budget
	opts     Options
	logger   *slog.Logger
}

// New creates a classifier. limiter paces stage-2 calls under the
// "gemini" key; budget caps them per run. Both may be nil when provider
// is nil.
func New(keywords Keywords, provider LLMProvider, limiter *ratelimit.Limiter, budget *ratelimit.Budget, opts Options, logger *slog.Logger) *Classifier {
	return &Classifier{
		keywords: keywords.withDefaults(),
		provider: provider,
		limiter:  limiter,
		budget:   budget,
		opts:     opts,
		logger:   logger,
	}
}

// ModelBacked reports whether stage-2 model scoring is available.
func (c *Classifier) ModelBacked() bool { return c.provider != nil }

// GatePasses runs the stage-1 keyword heuristic: any exclude term
// rejects, otherwise at least one include term is required. Purely
// deterministic; no I/O.
func (c *Classifier) GatePasses(p model.Posting) bool {
	content := strings.ToLower(p.Title + " " + p.FullDescription + " " + p.Company)

	for _, term := range c.keywords.Exclude {
		if strings.Contains(content, term) {
			return false
		}
	}
	for _, term := range c.keywords.Include {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}

// Classify runs both stages on p. It returns the enriched posting and
// whether it should be kept. Stage-2 failures never reject a posting;
// they degrade it to a fallback score.
func (c *Classifier) Classify(ctx context.Context, p model.Posting) (model.Posting, bool) {
	if !c.GatePasses(p) {
		return p, false
	}

	a := c.assess(ctx, p)
	p = applyAssessment(p, a)

	keep := a.IsRelevant && p.RelevanceScore >= c.opts.Threshold
	return p, keep
}

// assess produces the stage-2 assessment, degrading to defaults when
// the provider is absent, the budget is spent, or the call fails.
func (c *Classifier) assess(ctx context.Context, p model.Posting) model.Assessment {
	if c.provider == nil {
		return c.defaultAssessment(p, c.opts.NeutralScore, "no API key configured")
	}

	if c.budget != nil && !c.budget.Allow() {
		return c.defaultAssessment(p, c.opts.NeutralScore, "call budget exhausted")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "gemini"); err != nil {
			return c.defaultAssessment(p, c.opts.FallbackScore, "rate limiter: "+err.Error())
		}
	}

	prompt, err := c.renderPrompt(p)
	if err != nil {
		c.logger.Warn("prompt render failed", "title", p.Title, "error", err)
		return c.defaultAssessment(p, c.opts.FallbackScore, "prompt render failed")
	}

	raw, err := c.provider.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("model call failed", "title", p.Title, "error", err)
		return c.defaultAssessment(p, c.opts.FallbackScore, "model call failed: "+err.Error())
	}

	a, err := ParseAssessment(raw)
	if err != nil {
		c.logger.Debug("model response not JSON, using heuristic", "title", p.Title, "error", err)
		a = HeuristicAssessment(raw, c.opts.FallbackScore)
	}
	return a
}

// defaultAssessment keeps the posting with the given score and records
// why stage 2 did not run.
func (c *Classifier) defaultAssessment(p model.Posting, score int, note string) model.Assessment {
	return model.Assessment{
		IsRelevant:     true,
		RelevanceScore: model.ClampScore(score),
		Category:       p.Category,
		Analyzed:       false,
		Note:           note,
	}
}

func (c *Classifier) renderPrompt(p model.Posting) (string, error) {
	var buf bytes.Buffer
	err := RelevanceTemplate.Execute(&buf, struct {
		Title, Company, Location, SourceSite, SalaryInfo, Description string
	}{
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		SourceSite:  p.SourceSite,
		SalaryInfo:  p.SalaryInfo,
		Description: normalize.Truncate(p.FullDescription, promptDescriptionLimit),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// applyAssessment folds an assessment into the posting, clamping the
// score and merging key topics into the tag set.
func applyAssessment(p model.Posting, a model.Assessment) model.Posting {
	p.RelevanceScore = model.ClampScore(a.RelevanceScore)
	if a.Category != "" {
		p.Category = a.Category
	}
	p.Reasoning = a.Reasoning
	p.KeyTopics = a.KeyTopics
	p.Confidence = a.Confidence
	p.Analyzed = a.Analyzed
	p.AnalysisNote = a.Note

	seen := make(map[string]bool, len(p.Tags))
	for _, t := range p.Tags {
		seen[t] = true
	}
	for i, topic := range a.KeyTopics {
		if i == 3 {
			break
		}
		if topic != "" && !seen[topic] {
			seen[topic] = true
			p.Tags = append(p.Tags, topic)
		}
	}
	return p
}
