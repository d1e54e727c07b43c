package capture

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/keywords"
	"github.com/hpungsan/tabstash/internal/kv"
	"github.com/hpungsan/tabstash/internal/urlkey"
)

// Store persists all capture collections through the kv collaborator.
type Store struct {
	kv kv.Store

	// now is the clock; tests override it for deterministic timestamps.
	now func() time.Time
}

// NewStore creates a capture store over the given kv backend.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

// SetClock overrides the store clock.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SaveInput contains parameters for an explicit triaged capture.
type SaveInput struct {
	URL   string
	Title string
	Note  string
	Type  CaptureType // next, someday, or reference
}

// Save stores a triaged capture into the captures collection with derived
// keywords. Explicit saves do not check for an existing item with the same
// URL; the user asked for this one.
func (s *Store) Save(ctx context.Context, input SaveInput) (*Item, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	switch input.Type {
	case TypeNext, TypeSomeday, TypeReference:
	default:
		return nil, errors.NewInvalidRequest("type must be one of: next, someday, reference")
	}

	item, err := s.newItem(input.URL, input.Title, input.Type)
	if err != nil {
		return nil, err
	}
	item.Note = strings.TrimSpace(input.Note)

	if err := s.prependItem(ctx, ListCaptures, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AutoCapture stores a closed tab into the uncategorized inbox unless its
// normalized URL already exists in either persisted collection. Returns the
// new item, or nil when the URL was already captured.
func (s *Store) AutoCapture(ctx context.Context, url, title string) (*Item, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}

	exists, err := s.ExistsByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	item, err := s.newItem(url, title, TypeUncategorized)
	if err != nil {
		return nil, err
	}
	if err := s.prependItem(ctx, ListUncategorized, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveScratchpad stores a scratchpad note.
func (s *Store) SaveScratchpad(ctx context.Context, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	if len([]rune(text)) > MaxNoteLen {
		return nil, errors.NewInvalidRequest("text exceeds 500 characters")
	}

	id, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	note := Note{ID: id, Text: text, Timestamp: s.now().UnixMilli()}

	var notes []Note
	if _, err := s.kv.Get(ctx, ListScratchpad, &notes); err != nil {
		return nil, err
	}
	notes = append([]Note{note}, notes...)
	if err := s.kv.Set(ctx, ListScratchpad, kv.KindList, notes); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes one item by list name and id.
func (s *Store) Delete(ctx context.Context, list, id string) error {
	switch list {
	case ListCaptures, ListUncategorized:
		var items []Item
		if _, err := s.kv.Get(ctx, list, &items); err != nil {
			return err
		}
		kept := items[:0]
		for _, it := range items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return errors.NewNotFound(id)
		}
		return s.kv.Set(ctx, list, kv.KindList, kept)

	case ListScratchpad:
		var notes []Note
		if _, err := s.kv.Get(ctx, list, &notes); err != nil {
			return err
		}
		kept := notes[:0]
		for _, n := range notes {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(notes) {
			return errors.NewNotFound(id)
		}
		return s.kv.Set(ctx, list, kv.KindList, kept)

	default:
		return errors.NewInvalidRequest("list must be one of: captures, uncategorized, scratchpad")
	}
}

// All returns the full persisted snapshot. Missing collections come back
// as empty slices, never errors.
func (s *Store) All(ctx context.Context) (*Data, error) {
	data := &Data{
		Captures:      []Item{},
		Uncategorized: []Item{},
		Scratchpad:    []Note{},
	}
	if _, err := s.kv.Get(ctx, ListCaptures, &data.Captures); err != nil {
		return nil, err
	}
	if _, err := s.kv.Get(ctx, ListUncategorized, &data.Uncategorized); err != nil {
		return nil, err
	}
	if _, err := s.kv.Get(ctx, ListScratchpad, &data.Scratchpad); err != nil {
		return nil, err
	}
	return data, nil
}

// ExistsByURL reports whether the URL's normalized key already exists in
// the captures or uncategorized collection. Both collections are always
// consulted so an explicit reference save suppresses a later auto-capture.
func (s *Store) ExistsByURL(ctx context.Context, url string) (bool, error) {
	item, err := s.FindByURL(ctx, url)
	return item != nil, err
}

// FindByURL returns the first persisted capture matching the URL's
// normalized key, captures before inbox, or nil.
func (s *Store) FindByURL(ctx context.Context, url string) (*Item, error) {
	key := urlkey.Normalize(url)
	for _, list := range []string{ListCaptures, ListUncategorized} {
		var items []Item
		if _, err := s.kv.Get(ctx, list, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			if urlkey.Normalize(it.URL) == key {
				return &it, nil
			}
		}
	}
	return nil, nil
}

// Clear empties the named categories. Unknown categories are rejected
// before anything is touched.
func (s *Store) Clear(ctx context.Context, categories []string) error {
	for _, c := range categories {
		switch c {
		case ListCaptures, ListUncategorized, ListScratchpad, CategoryMetrics:
		default:
			return errors.NewInvalidRequest("unknown category: " + c)
		}
	}

	for _, c := range categories {
		if c == CategoryMetrics {
			if err := s.clearMetrics(ctx); err != nil {
				return err
			}
			continue
		}
		if err := s.kv.Delete(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) newItem(url, title string, typ CaptureType) (Item, error) {
	id, err := newULID()
	if err != nil {
		return Item{}, errors.NewInternal(err)
	}
	if strings.TrimSpace(title) == "" {
		title = url
	}
	return Item{
		ID:        id,
		URL:       url,
		Title:     title,
		Keywords:  keywords.Extract(title, url),
		Timestamp: s.now().UnixMilli(),
		Type:      typ,
	}, nil
}

func (s *Store) prependItem(ctx context.Context, list string, item Item) error {
	var items []Item
	if _, err := s.kv.Get(ctx, list, &items); err != nil {
		return err
	}
	items = append([]Item{item}, items...)
	return s.kv.Set(ctx, list, kv.KindList, items)
}

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
