package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

const linkedinBaseURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings"

// experienceLevelParams maps config names onto the f_E query values the
// guest search endpoint understands.
var experienceLevelParams = map[string]string{
	"internship": "1",
	"entry":      "2",
	"associate":  "3",
	"mid-senior": "4",
	"director":   "5",
	"executive":  "6",
}

// LinkedInAdapter runs the professional-network guest job search once
// per keyword×location pair and parses the returned HTML cards.
type LinkedInAdapter struct {
	baseURL          string
	keywords         []string
	locations        []string
	experienceLevels []string
	client           *http.Client
	limiter          *ratelimit.Limiter
	logger           *slog.Logger
}

// NewLinkedInAdapter creates an adapter over the given search terms.
func NewLinkedInAdapter(keywords, locations, experienceLevels []string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *LinkedInAdapter {
	if len(locations) == 0 {
		locations = []string{"United States"}
	}
	return &LinkedInAdapter{
		baseURL:          linkedinBaseURL,
		keywords:         keywords,
		locations:        locations,
		experienceLevels: experienceLevels,
		client:           client,
		limiter:          limiter,
		logger:           logger,
	}
}

// Name implements model.SourceAdapter.
func (a *LinkedInAdapter) Name() string { return "linkedin" }

// Fetch runs every configured search combination. Individual failures
// are logged and skipped; the last error is returned only when nothing
// was collected at all.
func (a *LinkedInAdapter) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	var out []model.RawPosting
	var lastErr error

	for _, keyword := range a.keywords {
		for _, location := range a.locations {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := a.limiter.WaitURL(ctx, a.baseURL); err != nil {
				return out, err
			}

			raws, err := a.search(ctx, keyword, location)
			if err != nil {
				a.logger.Warn("linkedin search failed", "keyword", keyword, "location", location, "error", err)
				lastErr = err
				continue
			}
			out = append(out, raws...)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (a *LinkedInAdapter) search(ctx context.Context, keyword, location string) ([]model.RawPosting, error) {
	params := url.Values{}
	params.Set("keywords", keyword)
	params.Set("location", location)
	params.Set("f_TPR", "r2592000") // past month
	params.Set("sortBy", "DD")
	params.Set("start", "0")
	if levels := a.experienceParam(); levels != "" {
		params.Set("f_E", levels)
	}

	reqURL := a.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", keyword, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("linkedin search %q: unexpected status %d", keyword, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", keyword, err)
	}

	var raws []model.RawPosting
	doc.Find("li").Each(func(_ int, card *goquery.Selection) {
		raw, ok := rawFromCard(card, keyword, location)
		if ok {
			raws = append(raws, raw)
		}
	})
	return raws, nil
}

// rawFromCard extracts one posting from a job-card <li>. Cards without
// a title are ignored.
func rawFromCard(card *goquery.Selection, keyword, location string) (model.RawPosting, bool) {
	title := strings.TrimSpace(card.Find(".base-search-card__title").First().Text())
	if title == "" {
		return model.RawPosting{}, false
	}

	company := strings.TrimSpace(card.Find(".base-search-card__subtitle a").First().Text())
	if company == "" {
		company = strings.TrimSpace(card.Find(".base-search-card__subtitle").First().Text())
	}
	loc := strings.TrimSpace(card.Find(".job-search-card__location").First().Text())
	if loc == "" {
		loc = location
	}
	link, _ := card.Find("a.base-card__full-link").First().Attr("href")

	raw := model.RawPosting{
		Title:    title,
		Summary:  fmt.Sprintf("%s at %s. Search query: %s", title, company, keyword),
		Link:     strings.TrimSpace(link),
		Source:   "linkedin",
		Company:  company,
		Location: loc,
		Remote:   strings.Contains(strings.ToLower(loc), "remote"),
		Tags:     []string{keyword},
	}

	if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
		if t, err := time.Parse("2006-01-02", datetime); err == nil {
			raw.Published = &t
		}
	}
	return raw, true
}

func (a *LinkedInAdapter) experienceParam() string {
	var codes []string
	for _, level := range a.experienceLevels {
		if code, ok := experienceLevelParams[strings.ToLower(level)]; ok {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, ",")
}
