package fetcher

import (
	"context"

	"github.com/victorkelvin/webharvest/internal/types"
)

// Fetcher retrieves raw HTML for a URL.
type Fetcher interface {
	// Fetch issues a single GET request and returns the page body,
	// final URL after redirects, and status code. Network errors,
	// timeouts, and non-2xx statuses come back as *types.FetchError.
	Fetch(ctx context.Context, rawURL string) (*types.FetchResult, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
