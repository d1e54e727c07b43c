package capture

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/tabstash/internal/urlkey"
)

// Result caps for the quick-switch suggestion list.
const (
	maxCaptureResults = 5
	maxMetricResults  = 3
)

// matchesTerm is the shared free-text test: a case-insensitive substring
// match against the concatenation of the given fields.
func matchesTerm(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join(fields, " "))
	return strings.Contains(haystack, strings.ToLower(term))
}

// ItemMatches reports whether a capture matches the query over
// title, URL, note, and keywords.
func ItemMatches(it Item, term string) bool {
	fields := append([]string{it.Title, it.URL, it.Note}, it.Keywords...)
	return matchesTerm(term, fields...)
}

// MetricMatches reports whether a metric record matches the query over
// title, URL, note, and keywords.
func MetricMatches(r MetricRecord, term string) bool {
	fields := append([]string{r.Title, r.URL, r.Note}, r.Keywords...)
	return matchesTerm(term, fields...)
}

// Suggestion is one entry of the quick-switch result list.
type Suggestion struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Meta  string `json:"meta"` // source: capture type, "inbox", visit count, or "web"
	Web   bool   `json:"web"`  // catch-all search-the-web row
}

// Search builds the shared suggestion list for a query: captures and inbox
// first (up to 5), frequent sites by score second (up to 3, deduplicated by
// URL against the first block), and a search-the-web fallback appended
// last. The fallback row is always present, so an empty result list means
// an empty query.
func (s *Store) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}

	data, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, maxCaptureResults+maxMetricResults+1)
	seen := make(map[string]bool)

	items := make([]Item, 0, len(data.Captures)+len(data.Uncategorized))
	items = append(items, data.Captures...)
	items = append(items, data.Uncategorized...)
	for _, it := range items {
		if len(out) == maxCaptureResults {
			break
		}
		if !ItemMatches(it, query) {
			continue
		}
		meta := string(it.Type)
		if it.Type == TypeUncategorized {
			meta = "inbox"
		}
		out = append(out, Suggestion{URL: it.URL, Label: labelFor(it.Title, it.URL), Meta: meta})
		seen[urlkey.Normalize(it.URL)] = true
	}

	metrics, err := s.Metrics(ctx, DefaultMetricsLimit)
	if err != nil {
		return nil, err
	}
	added := 0
	for _, r := range metrics {
		if added == maxMetricResults {
			break
		}
		if seen[urlkey.Normalize(r.URL)] || !MetricMatches(r, query) {
			continue
		}
		out = append(out, Suggestion{
			URL:   r.URL,
			Label: labelFor(r.Title, r.URL),
			Meta:  visitsMeta(r.Visits),
		})
		added++
	}

	out = append(out, Suggestion{
		URL:   WebSearchURL(query),
		Label: `Search the web for "` + query + `"`,
		Meta:  "web",
		Web:   true,
	})
	return out, nil
}

// WebSearchURL builds the catch-all web search target for a query.
func WebSearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

func labelFor(title, rawURL string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return rawURL
}

func visitsMeta(visits int) string {
	return strconv.Itoa(visits) + "×"
}
