package api

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tabstash/internal/bookmarks"
	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/coordinator"
	"github.com/hpungsan/tabstash/internal/export"
	"github.com/hpungsan/tabstash/internal/kv"
	"github.com/hpungsan/tabstash/internal/settings"
)

type workflowClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *workflowClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *workflowClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestFullWorkflow exercises the complete lifecycle across the dispatcher
// and the event pipelines: save → browse → dwell → close (auto-capture) →
// metrics → search → export → delete → clear.
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()

	store := kv.NewMemory()
	tabs := browser.NewMemoryTabs()
	marks := browser.NewMemoryBookmarks()
	messenger := browser.NewMemoryMessenger()
	cache := bookmarks.NewCache(marks)
	caps := capture.NewStore(store)
	cfg := settings.NewStore(store)

	log := logrus.New()
	log.SetOutput(io.Discard)

	clk := &workflowClock{now: time.UnixMilli(1700000000000)}
	caps.SetClock(clk.Now)

	coord := coordinator.New(coordinator.Deps{
		Tabs:      tabs,
		Messenger: messenger,
		Bookmarks: cache,
		Settings:  cfg,
		Captures:  caps,
		Log:       log,
	})
	coord.SetClock(clk.Now)

	d := NewDispatcher(Deps{
		Captures:  caps,
		Settings:  cfg,
		Coord:     coord,
		Tabs:      tabs,
		Bookmarks: marks,
		Cache:     cache,
		BaseDir:   t.TempDir(),
		Log:       log,
	})

	// 1. Save a reference capture; it also gets a real bookmark.
	out, err := d.Dispatch(ctx, "save_capture", map[string]any{
		"url":   "https://go.dev/doc/effective_go",
		"title": "Effective Go",
		"type":  "reference",
	})
	require.NoError(t, err)
	saved := out.(*capture.Item)
	require.NotEmpty(t, saved.ID)

	all, err := marks.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "https://go.dev/doc/effective_go", all[0].URL)

	// 2. Browse an unrelated page to completion.
	tab := tabs.Add("https://news.ycombinator.com/item?id=1", "Interesting thread")
	require.NoError(t, coord.Dispatch(ctx, browser.TabEvent{
		Kind: browser.TabCreated, Tab: tab,
	}))
	require.NoError(t, coord.Dispatch(ctx, browser.TabEvent{
		Kind: browser.TabUpdated, Tab: tab, URLChanged: true, Complete: true,
	}))

	// 3. Dwell on it for half an hour, then close the tab.
	require.NoError(t, coord.Dispatch(ctx, browser.TabEvent{
		Kind: browser.TabActivated, Tab: tab,
	}))
	clk.Advance(30 * time.Minute)
	require.NoError(t, coord.Dispatch(ctx, browser.TabEvent{
		Kind: browser.TabRemoved, Tab: browser.Tab{ID: tab.ID},
	}))

	// 4. The visit and dwell time show up in metrics.
	out, err = d.Dispatch(ctx, "get_metrics", map[string]any{"limit": 10})
	require.NoError(t, err)
	rows := out.([]capture.MetricRecord)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Visits)
	require.Equal(t, (30 * time.Minute).Milliseconds(), rows[0].TimeMs)

	// 5. The closed tab was auto-captured into the inbox.
	out, err = d.Dispatch(ctx, "get_data", nil)
	require.NoError(t, err)
	data := out.(*capture.Data)
	require.Len(t, data.Captures, 1)
	require.Len(t, data.Uncategorized, 1)
	inboxID := data.Uncategorized[0].ID
	require.Equal(t, "https://news.ycombinator.com/item?id=1", data.Uncategorized[0].URL)

	// 6. Search finds both the capture and the browsing activity.
	out, err = d.Dispatch(ctx, "search", map[string]any{"query": "effective"})
	require.NoError(t, err)
	hits := out.([]capture.Suggestion)
	require.NotEmpty(t, hits)
	require.Equal(t, "https://go.dev/doc/effective_go", hits[0].URL)

	// 7. Export everything to markdown.
	out, err = d.Dispatch(ctx, "export", map[string]any{})
	require.NoError(t, err)
	exported := out.(*export.Output)
	require.Equal(t, 2, exported.Count)
	body, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "Effective Go"))

	// 8. Delete the inbox item, then clear the rest.
	_, err = d.Dispatch(ctx, "delete_item", map[string]any{
		"list": capture.ListUncategorized, "id": inboxID,
	})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, "clear_data", map[string]any{
		"categories": []any{"captures", "metrics"},
	})
	require.NoError(t, err)

	out, err = d.Dispatch(ctx, "get_data", nil)
	require.NoError(t, err)
	data = out.(*capture.Data)
	require.Empty(t, data.Captures)
	require.Empty(t, data.Uncategorized)

	out, err = d.Dispatch(ctx, "get_metrics", map[string]any{})
	require.NoError(t, err)
	require.Empty(t, out.([]capture.MetricRecord))
}
