package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	blankLines   = regexp.MustCompile(`\n\s*\n(\s*\n)+`)
	inlineSpaces = regexp.MustCompile(`[ \t\f\r\v\x{00a0}]+`)

	// a closing block tag or <br> ends a line; whitespace already
	// following it is folded into that single break
	blockEnd = regexp.MustCompile(`(?i)(<br\s*/?>|</(?:p|div|li|ul|ol|h[1-6]|tr|table|section|article)\s*>)[ \t\r]*\n?`)
	// an opening block tag glued to preceding text starts a new line
	blockStart = regexp.MustCompile(`(?i)([^\s>])(<(?:p|div|li|ul|ol|h[1-6]|tr|table|section|article)\b)`)
)

// Cleaner sanitizes scraped job description markup using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewCleaner creates a cleaner that keeps basic formatting and drops
// scripts, styles, event handlers and javascript: links
func NewCleaner() *Cleaner {
	policy := bluemonday.NewPolicy()

	// Allow basic text formatting
	policy.AllowElements("p", "br", "div", "span")
	policy.AllowElements("strong", "b", "em", "i", "u")
	policy.AllowElements("ul", "ol", "li")
	policy.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")

	policy.AllowAttrs("href").OnElements("a")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return &Cleaner{
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// Clean sanitizes HTML content for display
func (c *Cleaner) Clean(html string) string {
	return strings.TrimSpace(c.policy.Sanitize(html))
}

// CleanToText removes all HTML and returns plain text with one line per
// block element, so list items and paragraphs keep their word boundaries
func (c *Cleaner) CleanToText(markup string) string {
	markup = blockEnd.ReplaceAllString(markup, "$1\n")
	markup = blockStart.ReplaceAllString(markup, "$1\n$2")
	return NormalizeText(html.UnescapeString(c.strict.Sanitize(markup)))
}

// NormalizeText trims the text, squeezes inline whitespace and collapses
// runs of blank lines into a single paragraph break
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
