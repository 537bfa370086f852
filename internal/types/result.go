package types

// FetchResult is the raw outcome of retrieving a URL. It is consumed by
// the parser and discarded; nothing downstream holds onto the body.
type FetchResult struct {
	HTML       string
	FinalURL   string
	StatusCode int
}

// ImageRef is a single image found on a page. URL is always absolute.
type ImageRef struct {
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// LinkRef is a single anchor found on a page. URL is always absolute.
type LinkRef struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Heading is a single h1–h6 element, in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// PageMetadata holds everything the metadata extractor pulls from a page.
// Absent fields are empty values, never errors.
type PageMetadata struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Images      []ImageRef `json:"images"`
	Links       []LinkRef  `json:"links"`
	Headings    []Heading  `json:"headings"`
}

// Product is one extracted product card. Every field except Name is
// optional; Price keeps the page's original currency formatting verbatim.
// A product with neither a name nor a link is dropped before it gets here.
type Product struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
	Image string `json:"image,omitempty"`
	Link  string `json:"link,omitempty"`
}
