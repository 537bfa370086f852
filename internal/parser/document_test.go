package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/victorkelvin/webharvest/internal/types"
)

func TestParseWellFormed(t *testing.T) {
	doc, err := Parse(`<html><head><title>Store</title></head><body><p>hello</p></body></html>`, "https://example.com/page")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Find("title").Text(); got != "Store" {
		t.Errorf("title = %q, want %q", got, "Store")
	}
	if doc.FinalURL() != "https://example.com/page" {
		t.Errorf("FinalURL = %q", doc.FinalURL())
	}
	if doc.Base() == nil || doc.Base().Host != "example.com" {
		t.Errorf("unexpected base: %v", doc.Base())
	}
}

func TestParseRecoversMalformed(t *testing.T) {
	// Unclosed tags, missing quotes, stray text after close
	raw := `<html><body><div class=box><p>unclosed paragraph<div>nested</body></html>trailing`

	doc, err := Parse(raw, "https://example.com")
	if err != nil {
		t.Fatalf("malformed markup should still parse: %v", err)
	}
	if !strings.Contains(doc.Find("p").Text(), "unclosed paragraph") {
		t.Error("expected recovered paragraph text")
	}
	if doc.Find(".box").Length() == 0 {
		t.Error("expected unquoted class attribute to be recovered")
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t  \n"} {
		_, err := Parse(raw, "https://example.com")
		if err == nil {
			t.Errorf("Parse(%q) = nil error, want failure", raw)
			continue
		}
		if !errors.Is(err, types.ErrEmptyDocument) {
			t.Errorf("Parse(%q) error should wrap ErrEmptyDocument, got %v", raw, err)
		}
		var parseErr *types.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Parse(%q) error should be a ParseError, got %T", raw, err)
		}
	}
}

func TestParseNode(t *testing.T) {
	doc, err := Parse(`<html><body><span>x</span></body></html>`, "https://example.com")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Node() == nil {
		t.Fatal("expected non-nil root node")
	}
}
