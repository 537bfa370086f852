package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/victorkelvin/webharvest/internal/config"
)

func testExtractor(mutate func(*config.ExtractorConfig)) *ProductExtractor {
	cfg := config.DefaultConfig().Extractor
	if mutate != nil {
		mutate(&cfg)
	}
	return NewProductExtractor(cfg, testLogger)
}

const productListing = `<html><body>
<div class="product-card">
  <h3>Blue Widget</h3>
  <span class="price">$19.99</span>
  <img src="/img/blue.jpg" alt="Blue">
  <a href="/widgets/blue">details</a>
</div>
<div class="Product-Card">
  <h3>Red Widget</h3>
  <span class="price">$24.50</span>
</div>
</body></html>`

func TestProductExtractBasic(t *testing.T) {
	doc := mustParse(t, productListing, "https://shop.example.com/widgets")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}

	first := products[0]
	if first.Name != "Blue Widget" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Price != "$19.99" {
		t.Errorf("price = %q", first.Price)
	}
	if first.Image != "https://shop.example.com/img/blue.jpg" {
		t.Errorf("image = %q", first.Image)
	}
	if first.Link != "https://shop.example.com/widgets/blue" {
		t.Errorf("link = %q", first.Link)
	}

	// Token matching is case-insensitive: Product-Card matches too
	if products[1].Name != "Red Widget" {
		t.Errorf("second name = %q", products[1].Name)
	}
}

func TestProductNestedCandidatesEmitOnce(t *testing.T) {
	// Outer grid matches a container token but its inner card is
	// complete, so only the card is emitted.
	raw := `<html><body>
<div class="products">
  <div class="product-card">
    <h3>Only One</h3>
    <span class="price">$5.00</span>
  </div>
</div>
</body></html>`

	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Only One" || products[0].Price != "$5.00" {
		t.Errorf("unexpected product: %+v", products[0])
	}
}

func TestProductNestedIncompleteKeepsOuter(t *testing.T) {
	// The inner candidate has no price, so the outer container wins and
	// the inner one is suppressed as its descendant.
	raw := `<html><body>
<div class="item">
  <div class="card">Loose description text</div>
</div>
</body></html>`

	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Loose description text" {
		t.Errorf("name = %q", products[0].Name)
	}
}

func TestProductPriceKeptVerbatim(t *testing.T) {
	cases := []struct {
		markup string
		want   string
	}{
		{`<span class="price">R$ 99,90</span>`, "R$ 99,90"},
		{`<span class="price">US$ 1,299.00</span>`, "US$ 1,299.00"},
		{`<span class="cost">€49</span>`, "€49"},
		{`<span class="valor">£ 10.50</span>`, "£ 10.50"},
		{`<span class="amount">₹999</span>`, "₹999"},
	}

	for _, tc := range cases {
		raw := fmt.Sprintf(`<html><body><div class="product-card"><h3>X</h3>%s</div></body></html>`, tc.markup)
		doc := mustParse(t, raw, "https://shop.example.com")
		products := testExtractor(nil).Extract(doc)
		if len(products) != 1 {
			t.Fatalf("markup %q: expected 1 product, got %d", tc.markup, len(products))
		}
		if products[0].Price != tc.want {
			t.Errorf("markup %q: price = %q, want %q", tc.markup, products[0].Price, tc.want)
		}
	}
}

func TestProductPriceFallsBackToFullText(t *testing.T) {
	// No price-token element, currency appears in loose text
	raw := `<html><body><div class="product-card"><h4>Deal</h4>Now only $7.25 today</div></body></html>`
	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Price != "$7.25" {
		t.Errorf("price = %q, want %q", products[0].Price, "$7.25")
	}
}

func TestProductDataProductIDDiscovery(t *testing.T) {
	raw := `<html><body>
<section data-product-id="42">
  <h4>Gadget</h4>
  <span class="price">€49</span>
</section>
</body></html>`

	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Gadget" || products[0].Price != "€49" {
		t.Errorf("unexpected product: %+v", products[0])
	}
}

func TestProductNoneFound(t *testing.T) {
	raw := `<html><body><article><h1>Blog post</h1><p>Nothing for sale here.</p></article></body></html>`
	doc := mustParse(t, raw, "https://blog.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 0 {
		t.Fatalf("expected no products, got %d: %+v", len(products), products)
	}
}

func TestProductEnclosingAnchorLink(t *testing.T) {
	raw := `<html><body>
<a href="/p/7"><div class="product-card"><h3>Wrapped</h3></div></a>
</body></html>`

	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(nil).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Link != "https://shop.example.com/p/7" {
		t.Errorf("link = %q", products[0].Link)
	}
}

func TestProductNameFallbackTruncates(t *testing.T) {
	long := strings.Repeat("very long name ", 20)
	raw := fmt.Sprintf(`<html><body><div class="item">%s</div></body></html>`, long)

	doc := mustParse(t, raw, "https://shop.example.com")
	products := testExtractor(func(c *config.ExtractorConfig) { c.MaxNameLength = 30 }).Extract(doc)

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if n := len([]rune(products[0].Name)); n > 31 {
		t.Errorf("name not truncated: %d runes (%q)", n, products[0].Name)
	}
}

func TestProductCandidateBound(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, `<div class="product-card"><h3>P%d</h3><span class="price">$%d.00</span></div>`, i, i+1)
	}
	b.WriteString("</body></html>")

	doc := mustParse(t, b.String(), "https://shop.example.com")
	products := testExtractor(func(c *config.ExtractorConfig) { c.MaxCandidates = 3 }).Extract(doc)

	if len(products) != 3 {
		t.Fatalf("expected candidate scan bounded at 3, got %d products", len(products))
	}
}

const profileListing = `<html><body>
<div class="offer">
  <span class="n">Alpha</span>
  <span class="p">$5.00</span>
  <a href="/a">view</a>
  <img src="/a.jpg">
</div>
<div class="offer">
  <span class="n">Beta</span>
  <span class="p">$8.00</span>
  <a href="/b">view</a>
  <img src="/b.jpg">
</div>
</body></html>`

func TestProductCSSProfile(t *testing.T) {
	doc := mustParse(t, profileListing, "https://www.shop.test/list")
	products := testExtractor(func(c *config.ExtractorConfig) {
		c.Profiles = []config.SiteProfile{{
			HostSuffix:      "shop.test",
			Type:            "css",
			ProductSelector: ".offer",
			NameSelector:    ".n",
			PriceSelector:   ".p",
			ImageSelector:   "img",
			LinkSelector:    "a",
		}}
	}).Extract(doc)

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Alpha" || products[0].Price != "$5.00" {
		t.Errorf("unexpected product: %+v", products[0])
	}
	if products[0].Link != "https://www.shop.test/a" {
		t.Errorf("link = %q", products[0].Link)
	}
	if products[0].Image != "https://www.shop.test/a.jpg" {
		t.Errorf("image = %q", products[0].Image)
	}
	if products[1].Name != "Beta" {
		t.Errorf("second name = %q", products[1].Name)
	}
}

func TestProductXPathProfile(t *testing.T) {
	doc := mustParse(t, profileListing, "https://www.shop.test/list")
	products := testExtractor(func(c *config.ExtractorConfig) {
		c.Profiles = []config.SiteProfile{{
			HostSuffix:      "shop.test",
			Type:            "xpath",
			ProductSelector: `//div[@class="offer"]`,
			NameSelector:    `.//span[@class="n"]`,
			PriceSelector:   `.//span[@class="p"]`,
			ImageSelector:   `.//img`,
			LinkSelector:    `.//a`,
		}}
	}).Extract(doc)

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Alpha" || products[0].Price != "$5.00" {
		t.Errorf("unexpected product: %+v", products[0])
	}
	if products[1].Link != "https://www.shop.test/b" {
		t.Errorf("link = %q", products[1].Link)
	}
}

func TestProductProfileHostMismatchUsesHeuristics(t *testing.T) {
	doc := mustParse(t, productListing, "https://shop.example.com/widgets")
	products := testExtractor(func(c *config.ExtractorConfig) {
		c.Profiles = []config.SiteProfile{{
			HostSuffix:      "shop.test",
			ProductSelector: ".offer",
		}}
	}).Extract(doc)

	if len(products) != 2 {
		t.Fatalf("profile for another host should not apply, got %d products", len(products))
	}
}

func TestVocabularyMatching(t *testing.T) {
	v := NewVocabulary(
		[]string{"product", "item", "card"},
		[]string{"title", "name"},
		[]string{"price", "cost"},
	)

	if !v.IsContainer("Product-Grid__cell", "") {
		t.Error("expected case-insensitive container match on class")
	}
	if !v.IsContainer("", "main-ITEM-7") {
		t.Error("expected container match on id")
	}
	if v.IsContainer("navbar", "header") {
		t.Error("unexpected container match")
	}
	if !v.IsName("product-title", "") {
		t.Error("expected name match")
	}
	if !v.IsPrice("", "total-Cost") {
		t.Error("expected price match on id")
	}
}
