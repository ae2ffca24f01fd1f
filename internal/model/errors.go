package model

import (
	"fmt"
	"time"
)

// InvalidQueryError reports a caller mistake: bad dates, missing name, or a
// 4xx from upstream. It is never retried.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	if e.Field == "" {
		return "invalid query: " + e.Reason
	}
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

// MissingFieldError means no known alias of a required field was present in a
// raw record. Only that record is dropped.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// MalformedFieldError means a required field was present but unusable.
type MalformedFieldError struct {
	Field string
	Value string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %q: %q", e.Field, e.Value)
}

// UpstreamError is a transient network or server fault that survived the
// retry budget.
type UpstreamError struct {
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UpstreamUnavailableError is returned when upstream cannot be reached and no
// fallback data could be produced either.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// RateLimitedError is returned by admission control. RetryAfter is the
// earliest moment a retry could be admitted.
type RateLimitedError struct {
	ClientKey  string
	Limit      string // "minute" or "hour"
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s ceiling) for %q, retry after %s", e.Limit, e.ClientKey, e.RetryAfter)
}
