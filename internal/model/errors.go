package model

import (
	"fmt"
	"time"
)

// HTTPError wraps a non-200 response so the retry layer can inspect the
// status code and any server-imposed backoff.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ModelError marks a stage-2 scoring failure. Callers fall back to a
// default assessment instead of dropping the posting.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
