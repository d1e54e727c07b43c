// Package keywords derives small tag sets from page titles and URL paths.
// Extraction is deterministic and pure; it backs both automatic tagging on
// capture and the suggestion chips in annotate flows.
package keywords

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxKeywords caps the extracted tag set per item.
const MaxKeywords = 12

// stopWords are common English function words plus web boilerplate tokens
// that carry no signal as tags.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "and": true, "or": true, "is": true,
	"it": true, "with": true, "from": true, "by": true, "as": true, "be": true,
	"was": true, "are": true, "this": true, "that": true, "have": true,
	"had": true, "has": true, "not": true, "but": true, "what": true,
	"how": true, "when": true, "where": true, "who": true, "which": true,
	"www": true, "com": true, "http": true, "https": true, "html": true,
	"php": true,
}

var (
	nonWordRegex = regexp.MustCompile(`[^\w\s]`)
	numericRegex = regexp.MustCompile(`^\d+$`)
)

// Extract derives up to MaxKeywords tags from a title and a URL. The URL
// contributes only its path component; a malformed URL contributes nothing
// rather than failing. Tokens of length ≤2, stop-words, and purely numeric
// tokens are dropped; order of first occurrence is preserved.
func Extract(title, rawURL string) []string {
	urlPath := ""
	if u, err := url.Parse(rawURL); err == nil {
		urlPath = u.Path
	}
	return FromText(title + " " + urlPath)
}

// FromText tokenizes free text into a deduplicated keyword list. This is
// the variant the page context runs on title+path alone, since it cannot
// reach extension storage.
func FromText(text string) []string {
	text = strings.ToLower(text)
	text = nonWordRegex.ReplaceAllString(text, " ")

	seen := make(map[string]bool)
	out := make([]string, 0, MaxKeywords)
	for _, tok := range strings.Fields(text) {
		if len(tok) <= 2 || stopWords[tok] || numericRegex.MatchString(tok) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// Merge unions two keyword lists preserving first-occurrence order, capped
// at MaxKeywords. Used by the annotation flow, which accumulates tags
// rather than overwriting them.
func Merge(existing, extra []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, MaxKeywords)
	for _, list := range [][]string{existing, extra} {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
			if len(out) == MaxKeywords {
				return out
			}
		}
	}
	return out
}
