// Package parser turns raw HTML into a queryable document tree.
// Parsing is lenient: malformed markup (unclosed tags, missing quotes,
// stray text) is recovered best-effort, and only fundamentally
// unprocessable input fails.
package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/victorkelvin/webharvest/internal/types"
)

// Document is an immutable tree view over a fetched page, plus the final
// URL the page was fetched from (the base for relative-URL resolution).
type Document struct {
	doc      *goquery.Document
	base     *url.URL
	finalURL string
}

// Parse builds a Document from raw HTML. finalURL is the URL the page was
// actually served from, after redirects. Returns a ParseError on empty
// input or when the final URL cannot be parsed as a resolution base.
func Parse(rawHTML, finalURL string) (*Document, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, &types.ParseError{URL: finalURL, Err: types.ErrEmptyDocument}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &types.ParseError{URL: finalURL, Err: err}
	}

	base, err := url.Parse(finalURL)
	if err != nil {
		return nil, &types.ParseError{URL: finalURL, Err: err}
	}

	return &Document{doc: doc, base: base, finalURL: finalURL}, nil
}

// Find returns the selection matching a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Base returns the base URL for relative-URL resolution.
func (d *Document) Base() *url.URL { return d.base }

// FinalURL returns the URL the document was fetched from.
func (d *Document) FinalURL() string { return d.finalURL }

// Node returns the root HTML node, for node-level traversal and XPath.
func (d *Document) Node() *html.Node {
	if len(d.doc.Nodes) == 0 {
		return nil
	}
	return d.doc.Nodes[0]
}
