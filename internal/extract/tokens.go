package extract

import "strings"

// Vocabulary is the heuristic token table: class/id substrings that mark
// an element as product-related. Matching is case-insensitive substring
// containment. The defaults live in config.DefaultConfig; this type just
// holds the lowercased working set so the walk itself stays free of
// inline vocabulary.
type Vocabulary struct {
	container []string
	name      []string
	price     []string
}

// NewVocabulary builds a Vocabulary from configured token lists.
func NewVocabulary(container, name, price []string) Vocabulary {
	return Vocabulary{
		container: lowerAll(container),
		name:      lowerAll(name),
		price:     lowerAll(price),
	}
}

// IsContainer reports whether class/id mark a product container.
func (v Vocabulary) IsContainer(class, id string) bool {
	return matchAny(v.container, class, id)
}

// IsName reports whether class/id mark a product name/title element.
func (v Vocabulary) IsName(class, id string) bool {
	return matchAny(v.name, class, id)
}

// IsPrice reports whether class/id mark a price element.
func (v Vocabulary) IsPrice(class, id string) bool {
	return matchAny(v.price, class, id)
}

func matchAny(tokens []string, attrs ...string) bool {
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		attr = strings.ToLower(attr)
		for _, tok := range tokens {
			if strings.Contains(attr, tok) {
				return true
			}
		}
	}
	return false
}

func lowerAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// sourceAttrs are the attributes checked, in order, for an image source.
// Lazy-loading markup commonly parks the real URL in data-src or
// data-original.
var sourceAttrs = []string{"src", "data-src", "data-original"}
