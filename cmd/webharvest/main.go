package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/victorkelvin/webharvest/internal/api"
	"github.com/victorkelvin/webharvest/internal/config"
	"github.com/victorkelvin/webharvest/internal/export"
	"github.com/victorkelvin/webharvest/internal/scraper"
)

var (
	cfgFile      string
	verbose      bool
	serverPort   int
	outputPath   string
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webharvest",
		Short: "WebHarvest — structured data extraction from web pages",
		Long: `WebHarvest extracts structured data from arbitrary web pages.

Features:
  • Page metadata extraction: title, description, images, links, headings
  • Heuristic product extraction from e-commerce pages
  • Per-site selector profiles (CSS and XPath)
  • JSON API server with health check and rate limiting
  • One-shot CLI scrapes with JSON, JSONL, CSV output
  • Prometheus metrics endpoint`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pageCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scraping API server",
		RunE:  runServe,
	}
	cmd.Flags().IntVarP(&serverPort, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serverPort > 0 {
		cfg.Server.Port = serverPort
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	engine := scraper.New(cfg, logger)
	defer engine.Close()

	if cfg.Metrics.Enabled {
		if err := engine.Metrics().StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	server := api.NewServer(cfg, engine, logger)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting API server", "port", cfg.Server.Port, "rate_limit", cfg.RateLimit.Enabled)
	return server.Start()
}

// pageCmd creates the "page" subcommand for one-shot metadata scrapes.
func pageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page <url>",
		Short: "Scrape page metadata from a URL",
		Long:  "Fetch a page once and print its title, description, images, links, and headings.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPage,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runPage(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine := scraper.New(cfg, logger)
	defer engine.Close()

	meta, err := engine.ScrapePage(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	return export.Page(out, meta)
}

// productsCmd creates the "products" subcommand for one-shot product
// scrapes.
func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products <url>",
		Short: "Extract products from an e-commerce URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runProducts,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, jsonl, csv")
	return cmd
}

func runProducts(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !export.ValidFormat(outputFormat) {
		return fmt.Errorf("unsupported format %q (valid: json, jsonl, csv)", outputFormat)
	}

	engine := scraper.New(cfg, logger)
	defer engine.Close()

	products, err := engine.ScrapeProducts(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(products) == 0 {
		logger.Info("no products found", "url", args[0])
	}

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	return export.Products(out, outputFormat, products)
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("WebHarvest %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Server:\n")
			fmt.Printf("  Port:             %d\n", cfg.Server.Port)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:          %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Max Redirects:    %d\n", cfg.Fetcher.MaxRedirects)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User-Agent:       %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("\nExtractor:\n")
			fmt.Printf("  Container Tokens: %v\n", cfg.Extractor.ContainerTokens)
			fmt.Printf("  Name Tokens:      %v\n", cfg.Extractor.NameTokens)
			fmt.Printf("  Price Tokens:     %v\n", cfg.Extractor.PriceTokens)
			fmt.Printf("  Max Candidates:   %d\n", cfg.Extractor.MaxCandidates)
			fmt.Printf("  Site Profiles:    %d configured\n", len(cfg.Extractor.Profiles))
			fmt.Printf("\nRate Limit:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.RateLimit.Enabled)
			fmt.Printf("  Limit:            %d per %s\n", cfg.RateLimit.Limit, cfg.RateLimit.Window)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:             %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openOutput returns the writer for command output and a close function.
func openOutput() (io.Writer, func(), error) {
	if outputPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}
