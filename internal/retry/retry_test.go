package retry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/aisocjobs/internal/model"
)

type fakeAdapter struct {
	errs  []error
	calls int
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return []model.RawPosting{{Title: "AI Policy Fellow", Source: "fake"}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestFetchSucceedsFirstTry(t *testing.T) {
	inner := &fakeAdapter{}
	a := Wrap(inner, 3, time.Millisecond, testLogger())

	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(raws))
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestFetchRetriesTransientError(t *testing.T) {
	inner := &fakeAdapter{errs: []error{
		&model.HTTPError{StatusCode: 503, Err: errors.New("unavailable")},
		&model.HTTPError{StatusCode: 503, Err: errors.New("unavailable")},
	}}
	a := Wrap(inner, 3, time.Millisecond, testLogger())

	raws, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(raws))
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestFetchDoesNotRetryclient4xx(t *testing.T) {
	inner := &fakeAdapter{errs: []error{
		&model.HTTPError{StatusCode: 403, Err: errors.New("forbidden")},
	}}
	a := Wrap(inner, 3, time.Millisecond, testLogger())

	_, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	inner := &fakeAdapter{errs: []error{
		errors.New("dial tcp: timeout"),
		errors.New("dial tcp: timeout"),
		errors.New("dial tcp: timeout"),
	}}
	a := Wrap(inner, 2, time.Millisecond, testLogger())

	_, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryAfterTakesPrecedence(t *testing.T) {
	a := Wrap(&fakeAdapter{}, 3, time.Second, testLogger())
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 42 * time.Millisecond, Err: errors.New("rate limited")}

	delay := a.backoffDelay(1, err)
	if delay != 42*time.Millisecond {
		t.Errorf("expected Retry-After delay, got %v", delay)
	}
}

func TestBackoffDelayGrows(t *testing.T) {
	a := Wrap(&fakeAdapter{}, 5, 100*time.Millisecond, testLogger())
	plain := errors.New("boom")

	d1 := a.backoffDelay(1, plain)
	d3 := a.backoffDelay(3, plain)

	// Attempt 1 is base ±30%, attempt 3 is 4x base ±30%; the ranges do
	// not overlap.
	if d1 < 70*time.Millisecond || d1 > 130*time.Millisecond {
		t.Errorf("attempt 1 delay out of range: %v", d1)
	}
	if d3 < 280*time.Millisecond || d3 > 520*time.Millisecond {
		t.Errorf("attempt 3 delay out of range: %v", d3)
	}
}

func TestContextCancelNotRetryable(t *testing.T) {
	inner := &fakeAdapter{errs: []error{context.Canceled}}
	a := Wrap(inner, 3, time.Millisecond, testLogger())

	_, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}
