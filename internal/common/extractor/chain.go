package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Chain is an ordered list of CSS selectors for one logical field.
// Selectors are tried in order and the first one producing a non-empty
// value wins; when none does the result is the empty string.
type Chain []string

// Find returns the first element of the earliest selector whose match has non-blank text
func (c Chain) Find(s *goquery.Selection) *goquery.Selection {
	for _, sel := range c {
		if found := s.Find(sel).First(); strings.TrimSpace(found.Text()) != "" {
			return found
		}
	}
	return s.Slice(0, 0)
}

// FindAll returns every element matched by the earliest selector that matches anything
func (c Chain) FindAll(s *goquery.Selection) *goquery.Selection {
	for _, sel := range c {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return s.Slice(0, 0)
}

// Text returns the trimmed text of the first selector with non-blank text
func (c Chain) Text(s *goquery.Selection) string {
	for _, sel := range c {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// Attr returns the trimmed attribute value of the first selector that carries it
func (c Chain) Attr(s *goquery.Selection, attr string) string {
	for _, sel := range c {
		if val, ok := s.Find(sel).First().Attr(attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val
			}
		}
	}
	return ""
}

// FirstNonEmpty returns the first non-empty value, used to chain
// selector results with static defaults
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewDocument parses raw markup. The HTML parser tolerates any input,
// so malformed markup produces a sparse document rather than an error.
func NewDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
