package extract

import (
	"log/slog"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/victorkelvin/webharvest/internal/assemble"
	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/parser"
	"github.com/victorkelvin/webharvest/internal/types"
)

// currencyRe recognizes monetary amounts without parsing them: a symbol
// or short code ending in "$" ($, R$, US$, €, £, ¥, ₹), optional space,
// then digits with dot/comma separators. Matches are kept verbatim.
var currencyRe = regexp.MustCompile(`(?:[A-Za-z]{0,3}\$|€|£|¥|₹)\s*\d[\d.,]*`)

// ProductExtractor locates repeated product-card structures with
// class/id token heuristics and pulls name/price/image/link out of each.
// E-commerce markup has no standard schema, so every field is optional
// and extraction degrades gracefully; a document with no recognizable
// product markup yields an empty slice, not an error.
type ProductExtractor struct {
	vocab         Vocabulary
	profiles      []config.SiteProfile
	maxCandidates int
	maxNameLength int
	logger        *slog.Logger
}

// NewProductExtractor creates a product extractor from configuration.
func NewProductExtractor(cfg config.ExtractorConfig, logger *slog.Logger) *ProductExtractor {
	return &ProductExtractor{
		vocab:         NewVocabulary(cfg.ContainerTokens, cfg.NameTokens, cfg.PriceTokens),
		profiles:      cfg.Profiles,
		maxCandidates: cfg.MaxCandidates,
		maxNameLength: cfg.MaxNameLength,
		logger:        logger.With("component", "product_extractor"),
	}
}

// candidate is one element under consideration as a product container.
type candidate struct {
	sel  *goquery.Selection
	node *html.Node

	// complete means the candidate has both a name-like and a
	// price-like child; completeness decides nested-candidate dedup.
	complete bool
}

// Extract returns the products found in the document, in document order.
// A site profile matching the document's host takes precedence over the
// generic heuristics.
func (e *ProductExtractor) Extract(doc *parser.Document) []types.Product {
	if profile := e.profileFor(doc.Base()); profile != nil {
		return e.extractWithProfile(doc, *profile)
	}

	candidates := e.discover(doc)
	candidates = e.dedupe(candidates)

	products := make([]types.Product, 0, len(candidates))
	for _, c := range candidates {
		if p, ok := e.extractOne(c.sel, doc.Base()); ok {
			products = append(products, p)
		}
	}

	e.logger.Debug("products extracted",
		"url", doc.FinalURL(),
		"candidates", len(candidates),
		"products", len(products),
	)
	return products
}

// discover scans the tree for elements whose class or id contain a
// container token, or that carry a data-product-id attribute. The scan
// stops at maxCandidates to bound work on pathological pages.
func (e *ProductExtractor) discover(doc *parser.Document) []candidate {
	var candidates []candidate

	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		_, hasProductID := sel.Attr("data-product-id")

		if !hasProductID && !e.vocab.IsContainer(class, id) {
			return true
		}

		candidates = append(candidates, candidate{
			sel:      sel,
			node:     sel.Get(0),
			complete: e.hasNameChild(sel) && e.hasPriceChild(sel),
		})
		return len(candidates) < e.maxCandidates
	})

	return candidates
}

// dedupe collapses nested candidates so a container and its matching
// descendant are never both emitted. Rule (deterministic, documented):
// a candidate is suppressed when one of its descendant candidates is
// complete — the deepest complete match wins. Otherwise the shallowest
// candidate in document order is kept and every candidate nested inside
// an already-kept one is suppressed.
func (e *ProductExtractor) dedupe(candidates []candidate) []candidate {
	kept := make([]candidate, 0, len(candidates))
	var emitted []*html.Node

	for i, c := range candidates {
		if nestedInAny(c.node, emitted) {
			continue
		}
		if e.hasCompleteDescendant(c, candidates[i+1:]) {
			continue
		}
		kept = append(kept, c)
		emitted = append(emitted, c.node)
	}
	return kept
}

// hasCompleteDescendant reports whether any later candidate nested
// inside c is complete. Candidates come in document order (pre-order),
// so descendants of c always appear after it.
func (e *ProductExtractor) hasCompleteDescendant(c candidate, later []candidate) bool {
	for _, d := range later {
		if d.complete && isDescendant(d.node, c.node) {
			return true
		}
	}
	return false
}

// extractOne pulls the four optional fields out of a candidate.
// Candidates yielding neither a name nor a link are noise and dropped.
func (e *ProductExtractor) extractOne(sel *goquery.Selection, base *url.URL) (types.Product, bool) {
	p := types.Product{
		Name:  e.nameOf(sel),
		Price: e.priceOf(sel),
		Image: e.imageOf(sel, base),
		Link:  e.linkOf(sel, base),
	}
	if p.Name == "" && p.Link == "" {
		return types.Product{}, false
	}
	return p, true
}

// nameOf finds the product name: first heading element, else first
// element with a name-indicative class/id token, else the candidate's
// own text truncated.
func (e *ProductExtractor) nameOf(sel *goquery.Selection) string {
	if h := sel.Find("h1, h2, h3, h4, h5, h6").First(); h.Length() > 0 {
		if name := assemble.NormalizeText(h.Text()); name != "" {
			return name
		}
	}
	if named := e.findByToken(sel, e.vocab.IsName); named != nil {
		if name := assemble.NormalizeText(named.Text()); name != "" {
			return name
		}
	}
	return assemble.Truncate(assemble.NormalizeText(sel.Text()), e.maxNameLength)
}

// priceOf finds the first currency-pattern match inside descendants with
// a price-indicative token (or a data-price attribute), then falls back
// to a single scan of the candidate's full text. The match is returned
// verbatim — "R$ 99,90" stays "R$ 99,90".
func (e *ProductExtractor) priceOf(sel *goquery.Selection) string {
	var price string
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		_, hasPriceAttr := s.Attr("data-price")
		if !hasPriceAttr && !e.vocab.IsPrice(class, id) {
			return true
		}
		if m := currencyRe.FindString(assemble.NormalizeText(s.Text())); m != "" {
			price = m
			return false
		}
		return true
	})
	if price != "" {
		return price
	}
	return currencyRe.FindString(assemble.NormalizeText(sel.Text()))
}

// imageOf finds the first descendant <img> with a resolvable source.
func (e *ProductExtractor) imageOf(sel *goquery.Selection, base *url.URL) string {
	var image string
	sel.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := imageSource(img)
		if src == "" {
			return true
		}
		if resolved, ok := assemble.ResolveURL(base, src); ok {
			image = resolved
			return false
		}
		return true
	})
	return image
}

// linkOf finds the nearest enclosing anchor (the whole card may be
// wrapped in one), else the first descendant anchor.
func (e *ProductExtractor) linkOf(sel *goquery.Selection, base *url.URL) string {
	if enclosing := sel.Closest("a[href]"); enclosing.Length() > 0 {
		href, _ := enclosing.Attr("href")
		if resolved, ok := assemble.ResolveURL(base, href); ok {
			return resolved
		}
	}

	var link string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if resolved, ok := assemble.ResolveURL(base, href); ok {
			link = resolved
			return false
		}
		return true
	})
	return link
}

// hasNameChild reports whether the candidate contains a heading or a
// name-token element.
func (e *ProductExtractor) hasNameChild(sel *goquery.Selection) bool {
	if sel.Find("h1, h2, h3, h4, h5, h6").Length() > 0 {
		return true
	}
	return e.findByToken(sel, e.vocab.IsName) != nil
}

// hasPriceChild reports whether the candidate's text contains a
// currency-pattern match.
func (e *ProductExtractor) hasPriceChild(sel *goquery.Selection) bool {
	return currencyRe.MatchString(sel.Text())
}

// findByToken returns the first descendant whose class or id satisfies
// the token predicate, or nil.
func (e *ProductExtractor) findByToken(sel *goquery.Selection, match func(class, id string) bool) *goquery.Selection {
	var found *goquery.Selection
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if match(class, id) {
			found = s
			return false
		}
		return true
	})
	return found
}

// isDescendant reports whether node is strictly inside ancestor.
func isDescendant(node, ancestor *html.Node) bool {
	for p := node.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// nestedInAny reports whether node is inside (or is) any of the given nodes.
func nestedInAny(node *html.Node, ancestors []*html.Node) bool {
	for _, a := range ancestors {
		if node == a || isDescendant(node, a) {
			return true
		}
	}
	return false
}
