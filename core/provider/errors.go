package provider

import (
	"errors"
	"fmt"
	"time"
)

// ErrTooLarge is returned by Fetch when the asset exceeds the configured
// size limit. The syncer counts these as policy skips, not errors.
var ErrTooLarge = errors.New("content exceeds size limit")

// AuthError indicates a bad or expired credential. It is fatal to the
// provider's sync pass and is never retried.
type AuthError struct {
	Provider string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Reason)
}

// RateLimitError indicates the remote signalled throttling. RetryAfter is
// zero when the remote gave no hint.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s)", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// NotFoundError indicates an entry disappeared between list and fetch.
// The syncer skips the entry and records it without aborting the pass.
type NotFoundError struct {
	Name string
	URL  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("emoji %q not found at %s", e.Name, e.URL)
}

// UnavailableError indicates a transport failure or a 5xx response.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: provider unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError, returning
// the retry-after hint when present.
func IsRateLimit(err error) (time.Duration, bool) {
	var re *RateLimitError
	if errors.As(err, &re) {
		return re.RetryAfter, true
	}
	return 0, false
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
