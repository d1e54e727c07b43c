package bookmarks

import (
	"context"
	"testing"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/kv"
)

func TestCache_RebuildIndexesNormalizedURLs(t *testing.T) {
	ctx := context.Background()
	dir := browser.NewMemoryBookmarks()
	if _, err := dir.Create(ctx, "https://Example.com/Article/", "Article"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := dir.Create(ctx, "", "a folder"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c := NewCache(dir)
	if err := c.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Folders (empty URL) are excluded
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
	// Lookup is scheme/case/trailing-slash insensitive
	if !c.IsBookmarked("http://example.com/article") {
		t.Error("IsBookmarked = false for normalized-equal URL, want true")
	}
	if c.IsBookmarked("https://example.com/other") {
		t.Error("IsBookmarked = true for unknown URL, want false")
	}
}

func TestCache_IncrementalCreateAndRemove(t *testing.T) {
	ctx := context.Background()
	c := NewCache(browser.NewMemoryBookmarks())
	if err := c.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	b := browser.Bookmark{ID: "bm-1", URL: "https://example.com/page"}
	c.OnCreated(b)
	if !c.IsBookmarked("https://example.com/page/") {
		t.Error("IsBookmarked = false after OnCreated")
	}

	c.OnRemoved(b)
	if c.IsBookmarked("https://example.com/page") {
		t.Error("IsBookmarked = true after OnRemoved")
	}
}

func TestCache_OnChangedRebuildsWholesale(t *testing.T) {
	ctx := context.Background()
	dir := browser.NewMemoryBookmarks()
	created, err := dir.Create(ctx, "https://example.com/old", "Old")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c := NewCache(dir)
	if err := c.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Simulate an edit: replace the bookmark behind the cache's back, then
	// deliver the changed notification.
	if err := dir.Remove(ctx, created.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := dir.Create(ctx, "https://example.com/new", "New"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := c.OnChanged(ctx); err != nil {
		t.Fatalf("OnChanged failed: %v", err)
	}

	if c.IsBookmarked("https://example.com/old") {
		t.Error("stale entry survived OnChanged rebuild")
	}
	if !c.IsBookmarked("https://example.com/new") {
		t.Error("new entry missing after OnChanged rebuild")
	}
}

func TestKVDirectory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := NewKVDirectory(kv.NewMemory())

	b, err := dir.Create(ctx, "https://example.com/doc", "Doc")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID == "" {
		t.Fatal("Create returned empty ID")
	}

	all, err := dir.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 || all[0].URL != "https://example.com/doc" {
		t.Errorf("All = %v, want one bookmark for example.com/doc", all)
	}

	if err := dir.Remove(ctx, b.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	all, err = dir.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("len(All) = %d after Remove, want 0", len(all))
	}
}

func TestKVDirectory_FeedsCache(t *testing.T) {
	ctx := context.Background()
	dir := NewKVDirectory(kv.NewMemory())
	if _, err := dir.Create(ctx, "https://example.com/kept", "Kept"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c := NewCache(dir)
	if err := c.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !c.IsBookmarked("https://example.com/kept") {
		t.Error("cache does not see kv-backed bookmark")
	}
}
