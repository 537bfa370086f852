// Package export writes scrape results to a stream for the one-shot CLI
// commands. Products can go out as JSON, JSONL, or CSV; page metadata as
// JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/victorkelvin/webharvest/internal/types"
)

// Formats supported by Products.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// ValidFormat reports whether format names a supported product format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatJSON, FormatJSONL, FormatCSV:
		return true
	}
	return false
}

// Products writes the product list in the given format.
func Products(w io.Writer, format string, products []types.Product) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)

	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, p := range products {
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("encode JSONL: %w", err)
			}
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"name", "price", "image", "link"}); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		for _, p := range products {
			if err := cw.Write([]string{p.Name, p.Price, p.Image, p.Link}); err != nil {
				return fmt.Errorf("write CSV row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Page writes page metadata as indented JSON.
func Page(w io.Writer, meta *types.PageMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
