// Package coordinator reacts to tab lifecycle events: it keeps the tab
// snapshot cache, tracks active dwell time, closes duplicates, surfaces
// banners, and turns closed tabs into inbox captures. It is the only
// writer of visit metrics.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/tabstash/internal/bookmarks"
	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/settings"
	"github.com/hpungsan/tabstash/internal/urlkey"
)

// Dwell intervals at or outside these bounds are discarded: at most a
// second is tab flicker, an hour or more is an abandoned machine.
const (
	minDwell = time.Second
	maxDwell = time.Hour
)

// snapshotEntry is the cached identity of one open tab. The platform
// forgets a tab's URL the moment it closes, so the removed pipeline runs
// entirely off this cache.
type snapshotEntry struct {
	URL   string
	Title string
}

// Deps are the coordinator's collaborators.
type Deps struct {
	Tabs      browser.TabDirectory
	Messenger browser.Messenger
	Bookmarks *bookmarks.Cache
	Settings  *settings.Store
	Captures  *capture.Store
	Log       *logrus.Logger
}

// Coordinator owns the event pipelines. One instance per attached browser;
// all handlers are safe for concurrent use.
type Coordinator struct {
	tabs      browser.TabDirectory
	messenger browser.Messenger
	bookmarks *bookmarks.Cache
	settings  *settings.Store
	captures  *capture.Store
	log       *logrus.Logger

	now func() time.Time

	mu          sync.Mutex
	snapshot    map[string]snapshotEntry
	activeTab   string
	activeSince time.Time
}

// New creates a coordinator. Log may be nil; a discard-free default writing
// through logrus.StandardLogger is used.
func New(deps Deps) *Coordinator {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		tabs:      deps.Tabs,
		messenger: deps.Messenger,
		bookmarks: deps.Bookmarks,
		settings:  deps.Settings,
		captures:  deps.Captures,
		log:       log,
		now:       time.Now,
		snapshot:  make(map[string]snapshotEntry),
	}
}

// SetClock overrides the time source for tests.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// Dispatch routes one tab event to its pipeline.
func (c *Coordinator) Dispatch(ctx context.Context, ev browser.TabEvent) error {
	switch ev.Kind {
	case browser.TabCreated:
		c.HandleCreated(ev)
		return nil
	case browser.TabUpdated:
		return c.HandleUpdated(ctx, ev)
	case browser.TabActivated:
		return c.HandleActivated(ctx, ev)
	case browser.TabRemoved:
		return c.HandleRemoved(ctx, ev)
	}
	return nil
}

// HandleCreated records the new tab in the snapshot cache.
func (c *Coordinator) HandleCreated(ev browser.TabEvent) {
	if ev.Tab.URL == "" {
		return
	}
	c.mu.Lock()
	c.snapshot[ev.Tab.ID] = snapshotEntry{URL: ev.Tab.URL, Title: ev.Tab.Title}
	c.mu.Unlock()
}

// HandleUpdated runs the load pipeline: refresh the snapshot, close
// duplicates, record the visit, and surface at most one banner.
func (c *Coordinator) HandleUpdated(ctx context.Context, ev browser.TabEvent) error {
	tab := ev.Tab

	if tab.URL != "" {
		c.mu.Lock()
		c.snapshot[tab.ID] = snapshotEntry{URL: tab.URL, Title: tab.Title}
		c.mu.Unlock()
	}

	if !ev.URLChanged && !ev.Complete {
		return nil
	}
	if urlkey.IsSystem(tab.URL) {
		return nil
	}

	cfg := c.settings.Get(ctx)

	if cfg.AutoDedupe && ev.URLChanged {
		closed, err := c.closeDuplicate(ctx, tab)
		if err != nil {
			return err
		}
		if closed {
			return nil
		}
	}

	if !ev.Complete {
		return nil
	}
	if !cfg.Enabled || cfg.IsExcluded(tab.URL) {
		c.log.WithField("url", tab.URL).Debug("load skipped: disabled or excluded")
		return nil
	}

	if err := c.captures.RecordVisit(ctx, tab.URL, tab.Title); err != nil {
		return err
	}
	return c.showLoadBanner(ctx, tab)
}

// closeDuplicate closes the tab if another open tab already shows the same
// normalized URL, activating the survivor. Reports whether it closed.
func (c *Coordinator) closeDuplicate(ctx context.Context, tab browser.Tab) (bool, error) {
	open, err := c.tabs.Tabs(ctx)
	if err != nil {
		return false, err
	}

	key := urlkey.Normalize(tab.URL)
	for _, t := range open {
		if t.ID == tab.ID || urlkey.Normalize(t.URL) != key {
			continue
		}
		if err := c.tabs.Close(ctx, tab.ID); err != nil {
			return false, err
		}
		if err := c.tabs.Activate(ctx, t.ID); err != nil {
			return false, err
		}
		c.notify(ctx, t.ID, browser.Message{
			Action:  ActionShowToast,
			Payload: map[string]any{"text": "Duplicate tab closed", "url": tab.URL},
		})
		c.log.WithFields(logrus.Fields{"closed": tab.ID, "kept": t.ID}).Debug("duplicate tab closed")
		return true, nil
	}
	return false, nil
}

// showLoadBanner shows at most one banner: bookmarked beats previously
// captured.
func (c *Coordinator) showLoadBanner(ctx context.Context, tab browser.Tab) error {
	if c.bookmarks.IsBookmarked(tab.URL) {
		c.notify(ctx, tab.ID, browser.Message{
			Action:  ActionShowBanner,
			Payload: map[string]any{"type": "bookmarked"},
		})
		return nil
	}

	prev, err := c.captures.FindByURL(ctx, tab.URL)
	if err != nil {
		return err
	}
	if prev != nil {
		c.notify(ctx, tab.ID, browser.Message{
			Action:  ActionShowBanner,
			Payload: map[string]any{"type": "captured", "capture": prev},
		})
	}
	return nil
}

// HandleActivated finalizes the previous tab's dwell interval and starts
// timing the newly active tab.
func (c *Coordinator) HandleActivated(ctx context.Context, ev browser.TabEvent) error {
	now := c.now()

	c.mu.Lock()
	prevTab, prevSince := c.activeTab, c.activeSince
	prevURL := c.snapshot[prevTab].URL
	c.activeTab = ev.Tab.ID
	c.activeSince = now
	if ev.Tab.URL != "" {
		c.snapshot[ev.Tab.ID] = snapshotEntry{URL: ev.Tab.URL, Title: ev.Tab.Title}
	}
	c.mu.Unlock()

	return c.finalizeDwell(ctx, prevTab, prevURL, prevSince, now)
}

// finalizeDwell records one closed dwell interval if it falls inside the
// accepted window.
func (c *Coordinator) finalizeDwell(ctx context.Context, tabID, url string, since, now time.Time) error {
	if tabID == "" || url == "" || since.IsZero() {
		return nil
	}
	d := now.Sub(since)
	if d <= minDwell || d >= maxDwell {
		if d > 0 {
			c.log.WithFields(logrus.Fields{"url": url, "dwell": d}).Debug("dwell interval discarded")
		}
		return nil
	}
	return c.captures.RecordTimeSpent(ctx, url, d.Milliseconds())
}

// HandleRemoved runs the close pipeline: finalize dwell, then capture the
// tab into the inbox unless something says not to. The snapshot entry is
// dropped no matter what.
func (c *Coordinator) HandleRemoved(ctx context.Context, ev browser.TabEvent) error {
	now := c.now()

	c.mu.Lock()
	entry, known := c.snapshot[ev.Tab.ID]
	delete(c.snapshot, ev.Tab.ID)
	wasActive := c.activeTab == ev.Tab.ID
	since := c.activeSince
	if wasActive {
		c.activeTab = ""
		c.activeSince = time.Time{}
	}
	c.mu.Unlock()

	if wasActive {
		if err := c.finalizeDwell(ctx, ev.Tab.ID, entry.URL, since, now); err != nil {
			return err
		}
	}

	if !known || entry.URL == "" || urlkey.IsSystem(entry.URL) {
		return nil
	}
	if c.bookmarks.IsBookmarked(entry.URL) {
		c.log.WithField("url", entry.URL).Debug("close skipped: bookmarked")
		return nil
	}
	cfg := c.settings.Get(ctx)
	if !cfg.Enabled || cfg.IsExcluded(entry.URL) {
		c.log.WithField("url", entry.URL).Debug("close skipped: disabled or excluded")
		return nil
	}

	item, err := c.captures.AutoCapture(ctx, entry.URL, entry.Title)
	if err != nil {
		return err
	}
	if item != nil {
		c.log.WithField("url", entry.URL).Debug("closed tab captured to inbox")
	}
	return nil
}

// SnapshotSize returns the number of cached tab entries.
func (c *Coordinator) SnapshotSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshot)
}
