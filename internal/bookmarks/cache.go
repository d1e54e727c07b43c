// Package bookmarks keeps the bookmark side of the capture pipeline: an
// in-memory index of normalized bookmarked URLs, kept eventually consistent
// with a BookmarkDirectory, plus a kv-backed directory implementation.
package bookmarks

import (
	"context"
	"sync"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/urlkey"
)

// Cache is a process-scoped set of normalized bookmarked URLs. It is a
// reconstructible cache, not a source of truth: it is rebuilt wholesale at
// startup and on any "changed" notification, and staleness is bounded only
// by the directory's event delivery latency.
type Cache struct {
	dir browser.BookmarkDirectory

	mu   sync.RWMutex
	urls map[string]bool
}

// NewCache creates a cache over the given directory. Call Rebuild before
// first use.
func NewCache(dir browser.BookmarkDirectory) *Cache {
	return &Cache{dir: dir, urls: make(map[string]bool)}
}

// Rebuild queries every bookmark and replaces the set with the normalized
// URLs of entries that have one (folders are skipped).
func (c *Cache) Rebuild(ctx context.Context) error {
	marks, err := c.dir.All(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string]bool, len(marks))
	for _, b := range marks {
		if b.URL == "" {
			continue
		}
		fresh[urlkey.Normalize(b.URL)] = true
	}

	c.mu.Lock()
	c.urls = fresh
	c.mu.Unlock()
	return nil
}

// IsBookmarked reports whether the URL's normalized key is in the set.
func (c *Cache) IsBookmarked(rawURL string) bool {
	key := urlkey.Normalize(rawURL)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.urls[key]
}

// OnCreated adds one entry for a newly created bookmark.
func (c *Cache) OnCreated(b browser.Bookmark) {
	if b.URL == "" {
		return
	}
	c.mu.Lock()
	c.urls[urlkey.Normalize(b.URL)] = true
	c.mu.Unlock()
}

// OnRemoved drops the entry for a deleted bookmark, using the deleted
// node's URL.
func (c *Cache) OnRemoved(b browser.Bookmark) {
	if b.URL == "" {
		return
	}
	c.mu.Lock()
	delete(c.urls, urlkey.Normalize(b.URL))
	c.mu.Unlock()
}

// OnChanged handles a title/URL edit. Edits are not diffed incrementally;
// a full rebuild is the safe policy.
func (c *Cache) OnChanged(ctx context.Context) error {
	return c.Rebuild(ctx)
}

// Size returns the number of indexed URLs.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.urls)
}
