package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrEmptyDocument = errors.New("empty document")
)

// FetchError wraps errors that occur while retrieving a page: network
// failures, timeouts, and non-2xx HTTP statuses.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Timeout    bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether the fetch failed by exceeding its deadline.
func (e *FetchError) IsTimeout() bool { return e.Timeout }

// ParseError wraps errors that occur while building the document tree.
// Markup recovery absorbs malformed HTML, so in practice this only fires
// on fundamentally unprocessable input such as an empty body.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
