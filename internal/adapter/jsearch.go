package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

const jsearchBaseURL = "https://jsearch.p.rapidapi.com"

// jsearchJob represents a single job in the search API response.
type jsearchJob struct {
	JobTitle          string   `json:"job_title"`
	EmployerName      string   `json:"employer_name"`
	JobCity           string   `json:"job_city"`
	JobState          string   `json:"job_state"`
	JobCountry        string   `json:"job_country"`
	JobDescription    string   `json:"job_description"`
	JobApplyLink      string   `json:"job_apply_link"`
	JobGoogleLink     string   `json:"job_google_link"`
	JobPostedAt       string   `json:"job_posted_at_datetime_utc"`
	JobIsRemote       bool     `json:"job_is_remote"`
	JobMinSalary      *float64 `json:"job_min_salary"`
	JobMaxSalary      *float64 `json:"job_max_salary"`
	JobSalaryCurrency string   `json:"job_salary_currency"`
}

// jsearchResponse is the top-level search API response.
type jsearchResponse struct {
	Status string       `json:"status"`
	Data   []jsearchJob `json:"data"`
}

// JSearchAdapter queries the JSearch job-search API once per
// query×country pair. Results arrive mostly structured, so the raw
// postings carry pre-extracted company, location, and salary.
type JSearchAdapter struct {
	baseURL   string
	apiKey    string
	queries   []string
	countries []string
	client    *http.Client
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

// NewJSearchAdapter creates an adapter for the given search queries and
// country codes.
func NewJSearchAdapter(apiKey string, queries, countries []string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *JSearchAdapter {
	if len(countries) == 0 {
		countries = []string{"US"}
	}
	return &JSearchAdapter{
		baseURL:   jsearchBaseURL,
		apiKey:    apiKey,
		queries:   queries,
		countries: countries,
		client:    client,
		limiter:   limiter,
		logger:    logger,
	}
}

// Name implements model.SourceAdapter.
func (a *JSearchAdapter) Name() string { return "jsearch" }

// Fetch runs every configured search. A failing request is logged and
// the remaining searches continue; the last error is returned only when
// no search produced anything, so the retry layer can take over.
func (a *JSearchAdapter) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	var out []model.RawPosting
	var lastErr error

	for _, query := range a.queries {
		for _, country := range a.countries {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := a.limiter.WaitURL(ctx, a.baseURL); err != nil {
				return out, err
			}

			raws, err := a.search(ctx, query, country)
			if err != nil {
				a.logger.Warn("jsearch query failed", "query", query, "country", country, "error", err)
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

func (a *JSearchAdapter) search(ctx context.Context, query, country string) ([]model.RawPosting, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("country", country)
	params.Set("date_posted", "month")
	params.Set("employment_types", "FULLTIME")

	reqURL := a.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch %q: %w", query, err)
	}
	req.Header.Set("X-RapidAPI-Key", a.apiKey)
	req.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("jsearch %q: unexpected status %d", query, resp.StatusCode),
		}
	}

	var jr jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("jsearch %q: %w", query, err)
	}
	if jr.Status != "OK" {
		return nil, fmt.Errorf("jsearch %q: status %q in response", query, jr.Status)
	}

	raws := make([]model.RawPosting, 0, len(jr.Data))
	for _, jj := range jr.Data {
		raws = append(raws, rawFromJSearch(jj, query, country))
	}
	return raws, nil
}

func rawFromJSearch(jj jsearchJob, query, country string) model.RawPosting {
	link := jj.JobGoogleLink
	if link == "" {
		link = jj.JobApplyLink
	}

	raw := model.RawPosting{
		Title:      jj.JobTitle,
		Summary:    jj.JobDescription,
		Link:       link,
		Source:     "jsearch",
		Company:    jj.EmployerName,
		Location:   formatLocation(jj, country),
		SalaryInfo: formatSalary(jj),
		Remote:     jj.JobIsRemote,
		Tags:       []string{query},
	}

	if jj.JobPostedAt != "" {
		if t, err := time.Parse(time.RFC3339, jj.JobPostedAt); err == nil {
			raw.Published = &t
		}
	}
	return raw
}

func formatLocation(jj jsearchJob, fallbackCountry string) string {
	country := jj.JobCountry
	if country == "" {
		country = fallbackCountry
	}

	loc := ""
	for _, part := range []string{jj.JobCity, jj.JobState} {
		if part == "" {
			continue
		}
		if loc != "" {
			loc += ", "
		}
		loc += part
	}

	if loc == "" {
		return country
	}
	return loc + ", " + country
}

func formatSalary(jj jsearchJob) string {
	currency := jj.JobSalaryCurrency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case jj.JobMinSalary != nil && jj.JobMaxSalary != nil:
		return fmt.Sprintf("%s %.0f - %.0f", currency, *jj.JobMinSalary, *jj.JobMaxSalary)
	case jj.JobMinSalary != nil:
		return fmt.Sprintf("%s %.0f+", currency, *jj.JobMinSalary)
	default:
		return ""
	}
}
