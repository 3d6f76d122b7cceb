package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// maxBodyInError bounds how much of a response body ends up in an error.
const maxBodyInError = 512

// StatusError is a non-2xx response from an embedding provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap exposes the domain classification of the status code.
func (e *StatusError) Unwrap() []error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return []error{domain.ErrRateLimited, domain.ErrEmbeddingTransient}
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return []error{domain.ErrAuthInvalid, domain.ErrEmbeddingTerminal}
	case e.StatusCode == http.StatusRequestTimeout || e.StatusCode >= 500:
		return []error{domain.ErrEmbeddingTransient}
	default:
		return []error{domain.ErrEmbeddingTerminal}
	}
}

// NewStatusError builds a StatusError from an HTTP response and its body.
func NewStatusError(provider string, resp *http.Response, body []byte) *StatusError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}
	return &StatusError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    msg,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// Transient wraps a network-level failure as retryable. Context
// cancellation by the caller is returned unchanged.
func Transient(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrEmbeddingTransient, err)
}

// Terminal wraps a failure that will repeat until configuration changes.
func Terminal(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrEmbeddingTerminal, err)
}

// RetryAfter returns the server-requested delay carried by err, if any.
func RetryAfter(err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}
