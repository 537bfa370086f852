package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/victorkelvin/webharvest/internal/assemble"
	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/parser"
	"github.com/victorkelvin/webharvest/internal/types"
)

// profileFor returns the first site profile whose host suffix matches the
// document's host, or nil.
func (e *ProductExtractor) profileFor(base *url.URL) *config.SiteProfile {
	if base == nil {
		return nil
	}
	host := strings.ToLower(base.Hostname())
	for i := range e.profiles {
		if strings.HasSuffix(host, strings.ToLower(e.profiles[i].HostSuffix)) {
			return &e.profiles[i]
		}
	}
	return nil
}

// extractWithProfile applies a site profile's explicit selectors instead
// of the generic candidate scan. Field selectors that are empty or match
// nothing fall back to the heuristic field extraction, so a profile only
// needs to pin down the parts the heuristics get wrong.
func (e *ProductExtractor) extractWithProfile(doc *parser.Document, profile config.SiteProfile) []types.Product {
	nodes := e.profileNodes(doc, profile)
	if len(nodes) > e.maxCandidates {
		nodes = nodes[:e.maxCandidates]
	}

	products := make([]types.Product, 0, len(nodes))
	for _, node := range nodes {
		sel := goquery.NewDocumentFromNode(node).Selection

		p := types.Product{
			Name:  e.profileName(node, sel, profile),
			Price: e.profilePrice(node, sel, profile),
			Image: e.profileImage(node, sel, profile, doc.Base()),
			Link:  e.profileLink(node, sel, profile, doc.Base()),
		}
		if p.Name == "" && p.Link == "" {
			continue
		}
		products = append(products, p)
	}

	e.logger.Debug("products extracted via profile",
		"url", doc.FinalURL(),
		"host_suffix", profile.HostSuffix,
		"products", len(products),
	)
	return products
}

// profileNodes evaluates the product selector as CSS or XPath.
func (e *ProductExtractor) profileNodes(doc *parser.Document, profile config.SiteProfile) []*html.Node {
	if profile.Type == "xpath" {
		root := doc.Node()
		if root == nil {
			return nil
		}
		nodes, err := htmlquery.QueryAll(root, profile.ProductSelector)
		if err != nil {
			e.logger.Warn("invalid xpath in profile",
				"host_suffix", profile.HostSuffix,
				"selector", profile.ProductSelector,
				"error", err,
			)
			return nil
		}
		return nodes
	}
	return doc.Find(profile.ProductSelector).Nodes
}

func (e *ProductExtractor) profileName(node *html.Node, sel *goquery.Selection, profile config.SiteProfile) string {
	if name := e.selectText(node, sel, profile.Type, profile.NameSelector); name != "" {
		return name
	}
	return e.nameOf(sel)
}

func (e *ProductExtractor) profilePrice(node *html.Node, sel *goquery.Selection, profile config.SiteProfile) string {
	if text := e.selectText(node, sel, profile.Type, profile.PriceSelector); text != "" {
		if m := currencyRe.FindString(text); m != "" {
			return m
		}
	}
	return e.priceOf(sel)
}

func (e *ProductExtractor) profileImage(node *html.Node, sel *goquery.Selection, profile config.SiteProfile, base *url.URL) string {
	for _, attr := range sourceAttrs {
		src := e.selectAttr(node, sel, profile.Type, profile.ImageSelector, attr)
		if src == "" {
			continue
		}
		if resolved, ok := assemble.ResolveURL(base, src); ok {
			return resolved
		}
	}
	return e.imageOf(sel, base)
}

func (e *ProductExtractor) profileLink(node *html.Node, sel *goquery.Selection, profile config.SiteProfile, base *url.URL) string {
	if href := e.selectAttr(node, sel, profile.Type, profile.LinkSelector, "href"); href != "" {
		if resolved, ok := assemble.ResolveURL(base, href); ok {
			return resolved
		}
	}
	return e.linkOf(sel, base)
}

// selectText evaluates a field selector relative to the product element
// and returns the first match's normalized text.
func (e *ProductExtractor) selectText(node *html.Node, sel *goquery.Selection, selType, selector string) string {
	if selector == "" {
		return ""
	}
	if selType == "xpath" {
		found, err := htmlquery.Query(node, selector)
		if err != nil || found == nil {
			return ""
		}
		return assemble.NormalizeText(htmlquery.InnerText(found))
	}
	return assemble.NormalizeText(sel.Find(selector).First().Text())
}

// selectAttr evaluates a field selector and returns the first match's
// attribute value.
func (e *ProductExtractor) selectAttr(node *html.Node, sel *goquery.Selection, selType, selector, attr string) string {
	if selector == "" {
		return ""
	}
	if selType == "xpath" {
		found, err := htmlquery.Query(node, selector)
		if err != nil || found == nil {
			return ""
		}
		return htmlquery.SelectAttr(found, attr)
	}
	val, _ := sel.Find(selector).First().Attr(attr)
	return val
}
