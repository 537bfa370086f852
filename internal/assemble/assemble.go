// Package assemble normalizes raw extracted fragments into the typed
// records of the public contract: whitespace collapsing, relative-URL
// resolution against the page's final fetched location, and
// keep-first deduplication. The stringly-typed heuristic matching in
// the extractors never leaks past this boundary.
package assemble

import (
	"net/url"
	"strings"

	"github.com/victorkelvin/webharvest/internal/types"
)

// Schemes and prefixes that never resolve to a fetchable resource.
var skipPrefixes = []string{"javascript:", "mailto:", "tel:", "data:"}

// NormalizeText collapses runs of whitespace to single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// ResolveURL resolves ref against base using standard URL-resolution
// rules. Absolute URLs pass through unchanged; protocol-relative URLs
// inherit the base's scheme. Fragment-only references and non-fetchable
// schemes (javascript:, mailto:, tel:, data:) are rejected, as is
// anything that does not resolve to http(s).
func ResolveURL(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	lower := strings.ToLower(ref)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	resolved := parsed
	if base != nil {
		resolved = base.ResolveReference(parsed)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// DedupeImages removes images whose resolved URL was already seen,
// keeping the first occurrence. Document order is otherwise preserved.
func DedupeImages(images []types.ImageRef) []types.ImageRef {
	seen := make(map[string]bool, len(images))
	out := images[:0]
	for _, img := range images {
		if seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		out = append(out, img)
	}
	return out
}
