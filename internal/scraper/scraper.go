// Package scraper wires the fetch → parse → extract pipeline into the
// two operations the service exposes: metadata scraping and product
// scraping. Each call is independent; the only state shared across
// concurrent calls is the fetcher's connection pool.
package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/extract"
	"github.com/victorkelvin/webharvest/internal/fetcher"
	"github.com/victorkelvin/webharvest/internal/observability"
	"github.com/victorkelvin/webharvest/internal/parser"
	"github.com/victorkelvin/webharvest/internal/types"
)

// Scraper is the extraction engine's entry point.
type Scraper struct {
	fetcher  fetcher.Fetcher
	metadata *extract.MetadataExtractor
	products *extract.ProductExtractor
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Scraper with an HTTP fetcher built from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher:  fetcher.NewHTTPFetcher(cfg, logger),
		metadata: extract.NewMetadataExtractor(logger),
		products: extract.NewProductExtractor(cfg.Extractor, logger),
		metrics:  observability.NewMetrics(logger),
		logger:   logger.With("component", "scraper"),
	}
}

// NewWithFetcher creates a Scraper around an existing fetcher. Used by
// tests to substitute the network layer.
func NewWithFetcher(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *Scraper {
	s := New(cfg, logger)
	s.fetcher = f
	return s
}

// Metrics exposes the operational counters for the metrics endpoint.
func (s *Scraper) Metrics() *observability.Metrics { return s.metrics }

// Close tears down the fetcher's connection pool.
func (s *Scraper) Close() error {
	return s.fetcher.Close()
}

// ScrapePage fetches a URL and extracts its page metadata. Returns
// ErrInvalidURL before any network call for malformed input, a
// FetchError or ParseError when retrieval fails, and otherwise a
// complete (possibly partly empty) PageMetadata.
func (s *Scraper) ScrapePage(ctx context.Context, rawURL string) (*types.PageMetadata, error) {
	doc, err := s.retrieve(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	meta := s.metadata.Extract(doc)
	s.metrics.PagesScraped.Add(1)

	s.logger.Info("page scraped",
		"url", rawURL,
		"title", meta.Title,
		"images", len(meta.Images),
		"links", len(meta.Links),
	)
	return meta, nil
}

// ScrapeProducts fetches a URL and extracts product listings. Zero
// products is a legitimate outcome, not an error.
func (s *Scraper) ScrapeProducts(ctx context.Context, rawURL string) ([]types.Product, error) {
	doc, err := s.retrieve(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	products := s.products.Extract(doc)
	s.metrics.ProductScrapes.Add(1)
	s.metrics.ProductsFound.Add(int64(len(products)))

	s.logger.Info("products scraped", "url", rawURL, "found", len(products))
	return products, nil
}

// retrieve runs the shared validate → fetch → parse prefix of both
// operations. Failures here abort the pipeline; extraction never runs on
// a failed fetch or parse.
func (s *Scraper) retrieve(ctx context.Context, rawURL string) (*parser.Document, error) {
	if err := config.ValidateURL(rawURL); err != nil {
		s.metrics.InvalidInputs.Add(1)
		return nil, err
	}

	s.metrics.FetchesTotal.Add(1)
	result, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.metrics.FetchesFailed.Add(1)
		var fetchErr *types.FetchError
		if errors.As(err, &fetchErr) && fetchErr.IsTimeout() {
			s.metrics.FetchTimeouts.Add(1)
		}
		s.logger.Warn("fetch failed", "url", rawURL, "error", err)
		return nil, err
	}
	s.metrics.BytesDownloaded.Add(int64(len(result.HTML)))

	doc, err := parser.Parse(result.HTML, result.FinalURL)
	if err != nil {
		s.metrics.ParseFailures.Add(1)
		s.logger.Warn("parse failed", "url", rawURL, "error", err)
		return nil, err
	}
	return doc, nil
}
