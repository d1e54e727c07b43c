package bookmarks

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/kv"
)

const keyPrefix = "bookmark:"

// KVDirectory is a BookmarkDirectory persisted in the kv store, used when
// no platform bookmark store is reachable (plain CDP exposes none). Each
// bookmark is one kv record keyed bookmark:<id>.
type KVDirectory struct {
	kv kv.Store
}

// NewKVDirectory creates a bookmark directory over the kv store.
func NewKVDirectory(store kv.Store) *KVDirectory {
	return &KVDirectory{kv: store}
}

// All implements browser.BookmarkDirectory.
func (d *KVDirectory) All(ctx context.Context) ([]browser.Bookmark, error) {
	keys, err := d.kv.Keys(ctx, kv.KindBookmark)
	if err != nil {
		return nil, err
	}

	marks := make([]browser.Bookmark, 0, len(keys))
	for _, k := range keys {
		var b browser.Bookmark
		found, err := d.kv.Get(ctx, k, &b)
		if err != nil {
			return nil, err
		}
		if found {
			marks = append(marks, b)
		}
	}
	return marks, nil
}

// Create implements browser.BookmarkDirectory.
func (d *KVDirectory) Create(ctx context.Context, url, title string) (browser.Bookmark, error) {
	id, err := newULID()
	if err != nil {
		return browser.Bookmark{}, err
	}

	b := browser.Bookmark{ID: id, URL: url, Title: title}
	if err := d.kv.Set(ctx, keyPrefix+id, kv.KindBookmark, b); err != nil {
		return browser.Bookmark{}, err
	}
	return b, nil
}

// Remove deletes a bookmark record.
func (d *KVDirectory) Remove(ctx context.Context, id string) error {
	return d.kv.Delete(ctx, keyPrefix+id)
}

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
