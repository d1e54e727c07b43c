package capture

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(kv.NewMemory())
	s.SetClock(func() time.Time { return time.UnixMilli(1700000000000) })
	return s
}

func TestSave_TriagedCapture(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item, err := s.Save(ctx, SaveInput{
		URL:   "https://example.com/guide",
		Title: "The Example Guide",
		Note:  "read before friday",
		Type:  TypeReference,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if item.ID == "" {
		t.Error("ID is empty")
	}
	if item.Type != TypeReference {
		t.Errorf("Type = %q, want %q", item.Type, TypeReference)
	}
	if item.Note != "read before friday" {
		t.Errorf("Note = %q", item.Note)
	}
	if len(item.Keywords) == 0 {
		t.Error("Keywords not derived")
	}

	data, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(data.Captures) != 1 {
		t.Errorf("len(Captures) = %d, want 1", len(data.Captures))
	}
}

func TestSave_RejectsUncategorizedType(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(context.Background(), SaveInput{URL: "https://example.com", Type: TypeUncategorized})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("want ErrInvalidRequest, got %v", err)
	}
}

func TestSave_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, u := range []string{"https://a.com", "https://b.com"} {
		if _, err := s.Save(ctx, SaveInput{URL: u, Type: TypeNext}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	data, _ := s.All(ctx)
	if data.Captures[0].URL != "https://b.com" {
		t.Errorf("newest item not first: %v", data.Captures[0].URL)
	}
}

func TestAutoCapture_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.AutoCapture(ctx, "https://example.com/article", "Article")
	if err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}
	if first == nil {
		t.Fatal("first AutoCapture returned nil item")
	}
	if first.Type != TypeUncategorized {
		t.Errorf("Type = %q, want %q", first.Type, TypeUncategorized)
	}

	// Same URL modulo normalization: no second entry
	second, err := s.AutoCapture(ctx, "http://Example.com/article/", "Article again")
	if err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}
	if second != nil {
		t.Error("second AutoCapture created a duplicate inbox entry")
	}

	data, _ := s.All(ctx)
	if len(data.Uncategorized) != 1 {
		t.Errorf("len(Uncategorized) = %d, want 1", len(data.Uncategorized))
	}
}

func TestAutoCapture_SuppressedByExplicitCapture(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Explicit "save as reference", then the close-driven auto-capture.
	if _, err := s.Save(ctx, SaveInput{URL: "https://example.com/doc", Type: TypeReference}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	item, err := s.AutoCapture(ctx, "https://example.com/doc", "Doc")
	if err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}
	if item != nil {
		t.Error("AutoCapture duplicated an explicitly captured URL into the inbox")
	}

	data, _ := s.All(ctx)
	if len(data.Uncategorized) != 0 {
		t.Errorf("len(Uncategorized) = %d, want 0", len(data.Uncategorized))
	}
}

func TestSaveScratchpad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	note, err := s.SaveScratchpad(ctx, "  try the new sqlite driver  ")
	if err != nil {
		t.Fatalf("SaveScratchpad failed: %v", err)
	}
	if note.Text != "try the new sqlite driver" {
		t.Errorf("Text = %q, want trimmed text", note.Text)
	}

	t.Run("rejects empty", func(t *testing.T) {
		if _, err := s.SaveScratchpad(ctx, "   "); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("want ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("rejects over 500 chars", func(t *testing.T) {
		long := strings.Repeat("x", MaxNoteLen+1)
		if _, err := s.SaveScratchpad(ctx, long); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("want ErrInvalidRequest, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item, err := s.AutoCapture(ctx, "https://example.com/x", "X")
	if err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}

	if err := s.Delete(ctx, ListUncategorized, item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	data, _ := s.All(ctx)
	if len(data.Uncategorized) != 0 {
		t.Error("item still present after Delete")
	}

	t.Run("missing id", func(t *testing.T) {
		if err := s.Delete(ctx, ListUncategorized, "nope"); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		if err := s.Delete(ctx, "attic", item.ID); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("want ErrInvalidRequest, got %v", err)
		}
	})
}

func TestAll_MissingCollectionsAreEmpty(t *testing.T) {
	s := newTestStore(t)

	data, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if data.Captures == nil || data.Uncategorized == nil || data.Scratchpad == nil {
		t.Error("missing collections should be empty slices, not nil")
	}
}

func TestFindByURL_CapturesBeforeInbox(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AutoCapture(ctx, "https://example.com/one", "Inbox copy"); err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}
	if _, err := s.Save(ctx, SaveInput{URL: "https://example.com/one", Title: "Triaged copy", Type: TypeNext}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	found, err := s.FindByURL(ctx, "https://example.com/one")
	if err != nil {
		t.Fatalf("FindByURL failed: %v", err)
	}
	if found == nil {
		t.Fatal("FindByURL = nil, want item")
	}
	if found.Type != TypeNext {
		t.Errorf("FindByURL preferred %q, want triaged capture first", found.Type)
	}
}

func TestClear_SelectiveCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Save(ctx, SaveInput{URL: "https://keep.com", Type: TypeNext}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.AutoCapture(ctx, "https://inbox.com", "mail"); err != nil {
		t.Fatalf("AutoCapture failed: %v", err)
	}
	if _, err := s.SaveScratchpad(ctx, "an idea"); err != nil {
		t.Fatalf("SaveScratchpad failed: %v", err)
	}
	if err := s.RecordVisit(ctx, "https://metric.com", "Metric"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}

	// Clearing scratchpad leaves captures and uncategorized untouched
	if err := s.Clear(ctx, []string{ListScratchpad}); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	data, _ := s.All(ctx)
	if len(data.Scratchpad) != 0 {
		t.Error("scratchpad not cleared")
	}
	if len(data.Captures) != 1 || len(data.Uncategorized) != 1 {
		t.Error("clear of scratchpad touched other collections")
	}

	// Clearing metrics removes metric records and no capture records
	if err := s.Clear(ctx, []string{CategoryMetrics}); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	metrics, _ := s.Metrics(ctx, 0)
	if len(metrics) != 0 {
		t.Error("metrics not cleared")
	}
	data, _ = s.All(ctx)
	if len(data.Captures) != 1 || len(data.Uncategorized) != 1 {
		t.Error("clear of metrics touched capture collections")
	}
}

func TestClear_UnknownCategoryRejectedUpfront(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.SaveScratchpad(ctx, "survives"); err != nil {
		t.Fatalf("SaveScratchpad failed: %v", err)
	}

	err := s.Clear(ctx, []string{ListScratchpad, "bogus"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest, got %v", err)
	}
	// Nothing was cleared
	data, _ := s.All(ctx)
	if len(data.Scratchpad) != 1 {
		t.Error("valid category cleared despite rejected request")
	}
}
