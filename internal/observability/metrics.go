package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for the scraping service.
type Metrics struct {
	// Fetch metrics
	FetchesTotal    atomic.Int64
	FetchesFailed   atomic.Int64
	FetchTimeouts   atomic.Int64
	BytesDownloaded atomic.Int64

	// Extraction metrics
	PagesScraped   atomic.Int64
	ProductScrapes atomic.Int64
	ProductsFound  atomic.Int64
	ParseFailures  atomic.Int64

	// API metrics
	RequestsRejected atomic.Int64
	InvalidInputs    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"webharvest_fetches_total", "Total fetch attempts", m.FetchesTotal.Load()},
		{"webharvest_fetches_failed_total", "Total failed fetches", m.FetchesFailed.Load()},
		{"webharvest_fetch_timeouts_total", "Total fetch timeouts", m.FetchTimeouts.Load()},
		{"webharvest_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"webharvest_pages_scraped_total", "Total metadata scrapes completed", m.PagesScraped.Load()},
		{"webharvest_product_scrapes_total", "Total product scrapes completed", m.ProductScrapes.Load()},
		{"webharvest_products_found_total", "Total products extracted", m.ProductsFound.Load()},
		{"webharvest_parse_failures_total", "Total unparseable documents", m.ParseFailures.Load()},
		{"webharvest_requests_rejected_total", "Total rate-limited requests", m.RequestsRejected.Load()},
		{"webharvest_invalid_inputs_total", "Total requests with invalid URLs", m.InvalidInputs.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"fetches_total":     m.FetchesTotal.Load(),
		"fetches_failed":    m.FetchesFailed.Load(),
		"fetch_timeouts":    m.FetchTimeouts.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"pages_scraped":     m.PagesScraped.Load(),
		"product_scrapes":   m.ProductScrapes.Load(),
		"products_found":    m.ProductsFound.Load(),
		"parse_failures":    m.ParseFailures.Load(),
		"requests_rejected": m.RequestsRejected.Load(),
		"invalid_inputs":    m.InvalidInputs.Load(),
	}
}
