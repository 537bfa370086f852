package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/victorkelvin/webharvest/internal/assemble"
	"github.com/victorkelvin/webharvest/internal/parser"
	"github.com/victorkelvin/webharvest/internal/types"
)

// MetadataExtractor pulls title, description, images, links, and headings
// from a parsed document. It is a total function over valid documents:
// missing fields come back empty, never as errors.
type MetadataExtractor struct {
	logger *slog.Logger
}

// NewMetadataExtractor creates a metadata extractor.
func NewMetadataExtractor(logger *slog.Logger) *MetadataExtractor {
	return &MetadataExtractor{
		logger: logger.With("component", "metadata_extractor"),
	}
}

// Extract walks the document and assembles PageMetadata. Every URL in the
// result is absolute, resolved against the document's final URL.
func (e *MetadataExtractor) Extract(doc *parser.Document) *types.PageMetadata {
	meta := &types.PageMetadata{
		Title:       e.extractTitle(doc),
		Description: e.extractDescription(doc),
		Images:      e.extractImages(doc),
		Links:       e.extractLinks(doc),
		Headings:    e.extractHeadings(doc),
	}

	e.logger.Debug("metadata extracted",
		"url", doc.FinalURL(),
		"images", len(meta.Images),
		"links", len(meta.Links),
		"headings", len(meta.Headings),
	)
	return meta
}

// extractTitle returns the first <title> text, else the first <h1> text.
func (e *MetadataExtractor) extractTitle(doc *parser.Document) string {
	if title := assemble.NormalizeText(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return assemble.NormalizeText(doc.Find("h1").First().Text())
}

// extractDescription returns the standard meta description, falling back
// to the OpenGraph description.
func (e *MetadataExtractor) extractDescription(doc *parser.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc := assemble.NormalizeText(content); desc != "" {
			return desc
		}
	}
	if content, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return assemble.NormalizeText(content)
	}
	return ""
}

// extractImages collects every <img> with a resolvable source, in
// document order, deduplicated by resolved URL (first occurrence kept).
func (e *MetadataExtractor) extractImages(doc *parser.Document) []types.ImageRef {
	var images []types.ImageRef

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := imageSource(sel)
		if src == "" {
			return
		}
		resolved, ok := assemble.ResolveURL(doc.Base(), src)
		if !ok {
			return
		}
		alt, _ := sel.Attr("alt")
		title, _ := sel.Attr("title")
		images = append(images, types.ImageRef{
			URL:   resolved,
			Alt:   assemble.NormalizeText(alt),
			Title: assemble.NormalizeText(title),
		})
	})

	return assemble.DedupeImages(images)
}

// extractLinks collects every <a href>, skipping fragment-only anchors
// and non-fetchable schemes.
func (e *MetadataExtractor) extractLinks(doc *parser.Document) []types.LinkRef {
	var links []types.LinkRef

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved, ok := assemble.ResolveURL(doc.Base(), href)
		if !ok {
			return
		}
		title, _ := sel.Attr("title")
		links = append(links, types.LinkRef{
			URL:   resolved,
			Text:  assemble.NormalizeText(sel.Text()),
			Title: assemble.NormalizeText(title),
		})
	})

	return links
}

// extractHeadings collects h1–h6 in document order with numeric levels.
func (e *MetadataExtractor) extractHeadings(doc *parser.Document) []types.Heading {
	var headings []types.Heading

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if len(tag) != 2 || !strings.HasPrefix(tag, "h") {
			return
		}
		level, err := strconv.Atoi(tag[1:])
		if err != nil || level < 1 || level > 6 {
			return
		}
		headings = append(headings, types.Heading{
			Level: level,
			Text:  assemble.NormalizeText(sel.Text()),
		})
	})

	return headings
}

// imageSource returns the first present source attribute of an <img>.
func imageSource(sel *goquery.Selection) string {
	for _, attr := range sourceAttrs {
		if val, ok := sel.Attr(attr); ok && strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}
