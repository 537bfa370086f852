package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/victorkelvin/webharvest/internal/types"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if len(cfg.Extractor.ContainerTokens) == 0 {
		return fmt.Errorf("extractor.container_tokens must not be empty")
	}
	if cfg.Extractor.MaxCandidates < 1 {
		return fmt.Errorf("extractor.max_candidates must be >= 1, got %d", cfg.Extractor.MaxCandidates)
	}
	if cfg.Extractor.MaxNameLength < 1 {
		return fmt.Errorf("extractor.max_name_length must be >= 1, got %d", cfg.Extractor.MaxNameLength)
	}
	for _, p := range cfg.Extractor.Profiles {
		if p.HostSuffix == "" {
			return fmt.Errorf("extractor profile missing host_suffix")
		}
		if p.ProductSelector == "" {
			return fmt.Errorf("extractor profile %q missing product_selector", p.HostSuffix)
		}
		if p.Type != "" && p.Type != "css" && p.Type != "xpath" {
			return fmt.Errorf("extractor profile %q type must be 'css' or 'xpath', got %q", p.HostSuffix, p.Type)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Limit < 1 {
			return fmt.Errorf("rate_limit.limit must be >= 1, got %d", cfg.RateLimit.Limit)
		}
		if cfg.RateLimit.Window <= 0 {
			return fmt.Errorf("rate_limit.window must be > 0")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks that a URL is syntactically well-formed for scraping.
// This is the InvalidInput gate: it runs before any network call.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("%w: URL is required", types.ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", types.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: URL must have a host", types.ErrInvalidURL)
	}
	return nil
}
