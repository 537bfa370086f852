package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelError,
}))

const storePage = `<html>
<head>
  <title>Gadget Store</title>
  <meta name="description" content="Gadgets for everyone.">
</head>
<body>
  <h1>Gadget Store</h1>
  <a href="/about">About</a>
  <img src="/logo.png" alt="logo">
  <div class="product-card">
    <h3>Gizmo</h3>
    <span class="price">$12.00</span>
    <a href="/p/gizmo">view</a>
  </div>
</body>
</html>`

func newTestScraper() *Scraper {
	return New(config.DefaultConfig(), testLogger)
}

func TestScrapePageEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(storePage))
	}))
	defer srv.Close()

	s := newTestScraper()
	defer s.Close()

	meta, err := s.ScrapePage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ScrapePage failed: %v", err)
	}
	if meta.Title != "Gadget Store" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Description != "Gadgets for everyone." {
		t.Errorf("description = %q", meta.Description)
	}
	if len(meta.Links) == 0 || meta.Links[0].URL != srv.URL+"/about" {
		t.Errorf("links = %+v, want first resolved against server", meta.Links)
	}
	if len(meta.Images) != 1 || meta.Images[0].URL != srv.URL+"/logo.png" {
		t.Errorf("images = %+v", meta.Images)
	}

	if got := s.Metrics().Snapshot()["pages_scraped"]; got != 1 {
		t.Errorf("pages_scraped = %d, want 1", got)
	}
}

func TestScrapeProductsEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(storePage))
	}))
	defer srv.Close()

	s := newTestScraper()
	defer s.Close()

	products, err := s.ScrapeProducts(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ScrapeProducts failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d: %+v", len(products), products)
	}
	if products[0].Name != "Gizmo" || products[0].Price != "$12.00" {
		t.Errorf("unexpected product: %+v", products[0])
	}
	if products[0].Link != srv.URL+"/p/gizmo" {
		t.Errorf("link = %q", products[0].Link)
	}
}

func TestScrapeProductsNoneIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>just an article</p></body></html>`))
	}))
	defer srv.Close()

	s := newTestScraper()
	defer s.Close()

	products, err := s.ScrapeProducts(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected success on product-free page, got %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected no products, got %+v", products)
	}
}

func TestScrapeInvalidURL(t *testing.T) {
	s := newTestScraper()
	defer s.Close()

	for _, raw := range []string{"", "not-a-url", "ftp://example.com/x"} {
		_, err := s.ScrapePage(context.Background(), raw)
		if !errors.Is(err, types.ErrInvalidURL) {
			t.Errorf("ScrapePage(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}

	if got := s.Metrics().Snapshot()["invalid_inputs"]; got != 3 {
		t.Errorf("invalid_inputs = %d, want 3", got)
	}
	if got := s.Metrics().Snapshot()["fetches_total"]; got != 0 {
		t.Errorf("invalid input must not reach the network, fetches_total = %d", got)
	}
}

func TestScrapeFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestScraper()
	defer s.Close()

	_, err := s.ScrapePage(context.Background(), srv.URL)
	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", fetchErr.StatusCode)
	}
	if got := s.Metrics().Snapshot()["fetches_failed"]; got != 1 {
		t.Errorf("fetches_failed = %d, want 1", got)
	}
}

func TestScrapeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := newTestScraper()
	defer s.Close()

	_, err := s.ScrapePage(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if got := s.Metrics().Snapshot()["parse_failures"]; got != 1 {
		t.Errorf("parse_failures = %d, want 1", got)
	}
}
