package cdp

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hpungsan/tabstash/internal/browser"
)

// activePollInterval is how often the watcher checks which tab is visible.
// CDP emits no activation event, so focus changes are detected by polling.
const activePollInterval = 500 * time.Millisecond

// Watch translates DevTools target events into TabEvents until the context
// is cancelled. The returned channel is closed when the pump stops.
func (c *Browser) Watch(ctx context.Context) <-chan browser.TabEvent {
	w := &watcher{
		c:    c,
		ctx:  ctx,
		out:  make(chan browser.TabEvent, 16),
		urls: make(map[string]string),
	}
	go w.run()
	return w.out
}

type watcher struct {
	c   *Browser
	ctx context.Context
	out chan browser.TabEvent

	mu     sync.Mutex
	urls   map[string]string // target ID to last observed URL
	active string
}

func (w *watcher) run() {
	defer close(w.out)

	go w.pollActive()

	wait := w.c.b.Context(w.ctx).EachEvent(
		func(e *proto.TargetTargetCreated) {
			if e.TargetInfo.Type != "page" {
				return
			}
			w.track(string(e.TargetInfo.TargetID), e.TargetInfo.URL)
			w.emit(browser.TabEvent{
				Kind: browser.TabCreated,
				Tab:  tabOf(e.TargetInfo),
			})
		},

		func(e *proto.TargetTargetInfoChanged) {
			if e.TargetInfo.Type != "page" {
				return
			}
			id := string(e.TargetInfo.TargetID)
			changed := w.track(id, e.TargetInfo.URL)

			w.emit(browser.TabEvent{
				Kind:       browser.TabUpdated,
				Tab:        tabOf(e.TargetInfo),
				URLChanged: changed,
			})
			if changed {
				go w.waitComplete(e.TargetInfo)
			}
		},

		func(e *proto.TargetTargetDestroyed) {
			id := string(e.TargetID)
			w.mu.Lock()
			_, known := w.urls[id]
			delete(w.urls, id)
			w.mu.Unlock()
			if !known {
				return
			}
			w.emit(browser.TabEvent{
				Kind: browser.TabRemoved,
				Tab:  browser.Tab{ID: id},
			})
		},
	)

	// EachEvent returns a wait function that blocks until context is cancelled.
	wait()
}

// waitComplete blocks until the navigated page finishes loading, then emits
// the Complete update the coordinator keys visit recording on.
func (w *watcher) waitComplete(info *proto.TargetTargetInfo) {
	p, err := w.c.b.PageFromTarget(info.TargetID)
	if err != nil {
		return
	}
	if err := p.Context(w.ctx).WaitLoad(); err != nil {
		return
	}

	tab := tabOf(info)
	if cur, err := p.Info(); err == nil {
		tab.URL = cur.URL
		tab.Title = cur.Title
	}
	w.emit(browser.TabEvent{
		Kind:     browser.TabUpdated,
		Tab:      tab,
		Complete: true,
	})
}

// pollActive watches which page is visible and emits Activated on change.
func (w *watcher) pollActive() {
	ticker := time.NewTicker(activePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}

		tabs, err := w.c.Tabs(w.ctx)
		if err != nil {
			continue
		}
		for _, t := range tabs {
			if !t.Active {
				continue
			}
			w.mu.Lock()
			changed := w.active != t.ID
			w.active = t.ID
			w.mu.Unlock()
			if changed {
				w.emit(browser.TabEvent{Kind: browser.TabActivated, Tab: t})
			}
			break
		}
	}
}

// track records the latest URL for a target and reports whether it changed.
func (w *watcher) track(id, url string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, known := w.urls[id]
	w.urls[id] = url
	return known && prev != url
}

func (w *watcher) emit(ev browser.TabEvent) {
	select {
	case w.out <- ev:
	case <-w.ctx.Done():
	}
}

func tabOf(info *proto.TargetTargetInfo) browser.Tab {
	return browser.Tab{
		ID:    string(info.TargetID),
		URL:   info.URL,
		Title: info.Title,
	}
}
