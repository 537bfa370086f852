package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for WebHarvest.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     yaml:"server"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"    yaml:"fetcher"`
	Extractor ExtractorConfig `mapstructure:"extractor"  yaml:"extractor"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"    yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"    yaml:"metrics"`
}

// ServerConfig controls the JSON API server.
type ServerConfig struct {
	Port         int           `mapstructure:"port"          yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// ExtractorConfig controls the extraction heuristics. The token lists are
// the single source of truth for class/id substring matching — nothing in
// the extractors hardcodes vocabulary.
type ExtractorConfig struct {
	ContainerTokens []string      `mapstructure:"container_tokens" yaml:"container_tokens"`
	NameTokens      []string      `mapstructure:"name_tokens"      yaml:"name_tokens"`
	PriceTokens     []string      `mapstructure:"price_tokens"     yaml:"price_tokens"`
	MaxCandidates   int           `mapstructure:"max_candidates"   yaml:"max_candidates"`
	MaxNameLength   int           `mapstructure:"max_name_length"  yaml:"max_name_length"`
	Profiles        []SiteProfile `mapstructure:"profiles"         yaml:"profiles"`
}

// SiteProfile overrides the generic heuristics with explicit selectors for
// a known site. Selectors are CSS by default; set type to "xpath" for
// XPath expressions. Field selectors are evaluated relative to each
// product element and fall back to the heuristics when empty or unmatched.
type SiteProfile struct {
	HostSuffix      string `mapstructure:"host_suffix"      yaml:"host_suffix"`
	Type            string `mapstructure:"type"             yaml:"type"`
	ProductSelector string `mapstructure:"product_selector" yaml:"product_selector"`
	NameSelector    string `mapstructure:"name_selector"    yaml:"name_selector"`
	PriceSelector   string `mapstructure:"price_selector"   yaml:"price_selector"`
	ImageSelector   string `mapstructure:"image_selector"   yaml:"image_selector"`
	LinkSelector    string `mapstructure:"link_selector"    yaml:"link_selector"`
}

// RateLimitConfig controls per-client request limiting on the API.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"   yaml:"enabled"`
	Limit    int           `mapstructure:"limit"     yaml:"limit"`
	Window   time.Duration `mapstructure:"window"    yaml:"window"`
	BlockFor time.Duration `mapstructure:"block_for" yaml:"block_for"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Fetcher: FetcherConfig{
			Timeout:         10 * time.Second,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:  "en-US,en;q=0.9",
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Extractor: ExtractorConfig{
			ContainerTokens: []string{"product", "item", "card"},
			NameTokens:      []string{"title", "name"},
			PriceTokens:     []string{"price", "cost", "amount", "valor"},
			MaxCandidates:   40,
			MaxNameLength:   120,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Limit:    100,
			Window:   time.Hour,
			BlockFor: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
