package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/aisocjobs/internal/model"
	"github.com/amishk599/aisocjobs/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(1000, 1000)
}

const jsearchFixture = `{
	"status": "OK",
	"data": [
		{
			"job_title": "AI Policy Researcher",
			"employer_name": "Center for AI Governance",
			"job_city": "Washington",
			"job_state": "DC",
			"job_country": "US",
			"job_description": "Research AI governance frameworks.",
			"job_apply_link": "https://example.com/apply/1",
			"job_google_link": "https://g.example.com/1",
			"job_posted_at_datetime_utc": "2026-08-01T12:00:00Z",
			"job_is_remote": false,
			"job_min_salary": 90000,
			"job_max_salary": 120000,
			"job_salary_currency": "USD"
		},
		{
			"job_title": "Remote Ethics Fellow",
			"employer_name": "EthicsLab",
			"job_country": "US",
			"job_description": "Fellowship in applied ethics.",
			"job_apply_link": "https://example.com/apply/2",
			"job_is_remote": true
		}
	]
}`

func newJSearchTestAdapter(baseURL string) *JSearchAdapter {
	a := NewJSearchAdapter("test-key", []string{"AI ethics"}, []string{"US"}, http.DefaultClient, testLimiter(), discardLogger())
	a.baseURL = baseURL
	return a
}

func TestJSearchFetch(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(jsearchFixture))
	}))
	defer srv.Close()

	a := newJSearchTestAdapter(srv.URL)
	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/search" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("API key header = %q", gotKey)
	}
	if gotQuery != "AI ethics" {
		t.Errorf("query param = %q", gotQuery)
	}

	if len(raws) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(raws))
	}

	first := raws[0]
	if first.Title != "AI Policy Researcher" || first.Company != "Center for AI Governance" {
		t.Errorf("unexpected first posting: %+v", first)
	}
	if first.Location != "Washington, DC, US" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.SalaryInfo != "USD 90000 - 120000" {
		t.Errorf("SalaryInfo = %q", first.SalaryInfo)
	}
	// Google link preferred over apply link.
	if first.Link != "https://g.example.com/1" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Published == nil || first.Published.Day() != 1 {
		t.Errorf("Published = %v", first.Published)
	}

	second := raws[1]
	if !second.Remote {
		t.Error("expected second posting remote")
	}
	if second.Location != "US" {
		t.Errorf("Location = %q, want bare country", second.Location)
	}
	if second.Link != "https://example.com/apply/2" {
		t.Errorf("Link = %q, want apply link fallback", second.Link)
	}
}

func TestJSearchRateLimitedReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := newJSearchTestAdapter(srv.URL)
	_, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("RetryAfter = %v", httpErr.RetryAfter)
	}
}

func TestJSearchPartialFailureKeepsResults(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(jsearchFixture))
	}))
	defer srv.Close()

	a := NewJSearchAdapter("k", []string{"AI ethics", "AI policy"}, []string{"US"}, http.DefaultClient, testLimiter(), discardLogger())
	a.baseURL = srv.URL

	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("partial failure should not surface: %v", err)
	}
	if len(raws) != 2 {
		t.Errorf("expected 2 postings from the surviving query, got %d", len(raws))
	}
}

func TestJSearchBadStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ERROR", "data": []}`))
	}))
	defer srv.Close()

	a := newJSearchTestAdapter(srv.URL)
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-OK body status")
	}
}
