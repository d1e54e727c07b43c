package capture

import (
	"context"
	"sort"
	"strings"

	"github.com/hpungsan/tabstash/internal/keywords"
	"github.com/hpungsan/tabstash/internal/kv"
	"github.com/hpungsan/tabstash/internal/urlkey"
)

// DefaultMetricsLimit is the ranked-metrics cap applied when a caller
// passes no limit.
const DefaultMetricsLimit = 20

const metricKeyPrefix = "metric:"

func metricKey(url string) string {
	return metricKeyPrefix + urlkey.Normalize(url)
}

// RecordVisit increments the visit count for a URL, refreshing title,
// last-seen, and keywords. Keywords are recomputed from the current
// title/URL on every visit; they overwrite, they do not accumulate.
// System URLs are a no-op.
func (s *Store) RecordVisit(ctx context.Context, url, title string) error {
	if urlkey.IsSystem(url) {
		return nil
	}

	key := metricKey(url)
	now := s.now().UnixMilli()

	var rec MetricRecord
	found, err := s.kv.Get(ctx, key, &rec)
	if err != nil {
		return err
	}
	if !found {
		rec = MetricRecord{URL: url, FirstSeen: now}
	}

	rec.Visits++
	rec.LastSeen = now
	if strings.TrimSpace(title) != "" {
		rec.Title = title
	}
	rec.Keywords = keywords.Extract(title, url)

	return s.kv.Set(ctx, key, kv.KindMetric, rec)
}

// RecordTimeSpent adds ms of active dwell time to the URL's record. Visits
// and keywords are untouched. A record is created if the visit that opened
// the tab predates this process (caches are rebuildable, metrics are not).
func (s *Store) RecordTimeSpent(ctx context.Context, url string, ms int64) error {
	if urlkey.IsSystem(url) || ms <= 0 {
		return nil
	}

	key := metricKey(url)
	now := s.now().UnixMilli()

	var rec MetricRecord
	found, err := s.kv.Get(ctx, key, &rec)
	if err != nil {
		return err
	}
	if !found {
		rec = MetricRecord{URL: url, FirstSeen: now, LastSeen: now}
	}

	rec.TimeMs += ms
	return s.kv.Set(ctx, key, kv.KindMetric, rec)
}

// AnnotateInput contains parameters for SaveAnnotation.
type AnnotateInput struct {
	URL      string
	Title    string
	Note     string
	Keywords []string
}

// SaveAnnotation merges a user note and keywords onto the URL's metric
// record. Unlike RecordVisit, keywords are unioned here, so user-added
// tags survive until the next visit recomputes them.
func (s *Store) SaveAnnotation(ctx context.Context, input AnnotateInput) (*MetricRecord, error) {
	key := metricKey(input.URL)
	now := s.now().UnixMilli()

	var rec MetricRecord
	found, err := s.kv.Get(ctx, key, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = MetricRecord{URL: input.URL, FirstSeen: now, LastSeen: now}
	}

	if strings.TrimSpace(input.Title) != "" && rec.Title == "" {
		rec.Title = input.Title
	}
	if strings.TrimSpace(input.Note) != "" {
		rec.Note = strings.TrimSpace(input.Note)
	}
	rec.Keywords = keywords.Merge(rec.Keywords, input.Keywords)

	if err := s.kv.Set(ctx, key, kv.KindMetric, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MetricByURL returns the metric record for a URL, or nil.
func (s *Store) MetricByURL(ctx context.Context, url string) (*MetricRecord, error) {
	var rec MetricRecord
	found, err := s.kv.Get(ctx, metricKey(url), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// Metrics returns all metric records sorted descending by score, truncated
// to limit (DefaultMetricsLimit when ≤0).
func (s *Store) Metrics(ctx context.Context, limit int) ([]MetricRecord, error) {
	if limit <= 0 {
		limit = DefaultMetricsLimit
	}

	keys, err := s.kv.Keys(ctx, kv.KindMetric)
	if err != nil {
		return nil, err
	}

	recs := make([]MetricRecord, 0, len(keys))
	for _, k := range keys {
		var rec MetricRecord
		found, err := s.kv.Get(ctx, k, &rec)
		if err != nil {
			return nil, err
		}
		if found {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return Score(recs[i]) > Score(recs[j])
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// clearMetrics removes every metric-keyed record and nothing else.
func (s *Store) clearMetrics(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx, kv.KindMetric)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
