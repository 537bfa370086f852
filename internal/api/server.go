package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/types"
)

// PageScraper is the interface the API uses to drive the extraction
// engine.
type PageScraper interface {
	ScrapePage(ctx context.Context, url string) (*types.PageMetadata, error)
	ScrapeProducts(ctx context.Context, url string) ([]types.Product, error)
}

// Server provides the JSON scraping API.
type Server struct {
	mux     *http.ServeMux
	httpSrv *http.Server
	scraper PageScraper
	limiter *Limiter
	logger  *slog.Logger
	now     func() time.Time // test seam for scraped_at
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, scraper PageScraper, logger *slog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		scraper: scraper,
		logger:  logger.With("component", "api_server"),
		now:     time.Now,
	}

	if cfg.RateLimit.Enabled {
		s.limiter = NewLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.BlockFor, logger)
	}

	s.registerRoutes()

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves the API, blocking until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", s.handleHome)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/scrape", s.withRateLimit(s.handleScrapePage))
	s.mux.HandleFunc("POST /api/scrape/products", s.withRateLimit(s.handleScrapeProducts))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{
			"error":  "endpoint not found",
			"status": "error",
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "WebHarvest scraping API",
		"version": config.Version,
		"endpoints": map[string]string{
			"/api/scrape":          "POST - extract metadata from a web page",
			"/api/scrape/products": "POST - extract products from an e-commerce page",
			"/api/health":          "GET - health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "webharvest",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

// pageEnvelope is the transport shape for a metadata scrape.
type pageEnvelope struct {
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []types.ImageRef `json:"images"`
	Links       []types.LinkRef  `json:"links"`
	Headings    []types.Heading  `json:"headings"`
	ScrapedAt   string           `json:"scraped_at"`
	Status      string           `json:"status"`
}

// productsEnvelope is the transport shape for a product scrape.
type productsEnvelope struct {
	URL        string          `json:"url"`
	Products   []types.Product `json:"products"`
	TotalFound int             `json:"total_found"`
	ScrapedAt  string          `json:"scraped_at"`
	Status     string          `json:"status"`
}

func (s *Server) handleScrapePage(w http.ResponseWriter, r *http.Request) {
	url, ok := s.decodeURL(w, r)
	if !ok {
		return
	}

	s.logger.Info("scraping page", "url", url)
	meta, err := s.scraper.ScrapePage(r.Context(), url)
	if err != nil {
		s.errorResponse(w, url, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, pageEnvelope{
		URL:         url,
		Title:       meta.Title,
		Description: meta.Description,
		Images:      emptyIfNil(meta.Images),
		Links:       emptyIfNil(meta.Links),
		Headings:    emptyIfNil(meta.Headings),
		ScrapedAt:   s.now().Format(time.RFC3339),
		Status:      "success",
	})
}

func (s *Server) handleScrapeProducts(w http.ResponseWriter, r *http.Request) {
	url, ok := s.decodeURL(w, r)
	if !ok {
		return
	}

	s.logger.Info("scraping products", "url", url)
	products, err := s.scraper.ScrapeProducts(r.Context(), url)
	if err != nil {
		s.errorResponse(w, url, err)
		return
	}

	// Zero products is success: absence of data is a valid outcome.
	s.jsonResponse(w, http.StatusOK, productsEnvelope{
		URL:        url,
		Products:   emptyIfNil(products),
		TotalFound: len(products),
		ScrapedAt:  s.now().Format(time.RFC3339),
		Status:     "success",
	})
}

// decodeURL reads the {"url": ...} request body. A missing or invalid
// body is a client error.
func (s *Server) decodeURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid JSON body",
			"status": "error",
		})
		return "", false
	}
	if strings.TrimSpace(body.URL) == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error":  "URL is required",
			"status": "error",
		})
		return "", false
	}
	return body.URL, true
}

// errorResponse maps the engine's failure kinds to HTTP statuses:
// InvalidInput → 400, fetch and parse failures → 502.
func (s *Server) errorResponse(w http.ResponseWriter, url string, err error) {
	status := http.StatusInternalServerError

	var fetchErr *types.FetchError
	var parseErr *types.ParseError
	switch {
	case errors.Is(err, types.ErrInvalidURL):
		status = http.StatusBadRequest
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		status = http.StatusBadGateway
	}

	s.jsonResponse(w, status, map[string]string{
		"url":        url,
		"error":      err.Error(),
		"status":     "error",
		"scraped_at": s.now().Format(time.RFC3339),
	})
}

// withRateLimit wraps a handler with per-client request limiting.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]string{
				"error":  "rate limit exceeded",
				"status": "error",
			})
			return
		}
		next(w, r)
	}
}

// clientIP identifies the requester, honoring the first X-Forwarded-For
// hop when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
