package kv

import (
	"context"
	"testing"
)

// stores returns both implementations under a common name so every contract
// test runs against sqlite and memory alike.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"sqlite": sq,
		"memory": NewMemory(),
	}
}

type payload struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			in := payload{Title: "reading list", Tags: []string{"go", "sqlite"}, Count: 3}
			if err := s.Set(ctx, "metric:example.com", KindMetric, in); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			var out payload
			found, err := s.Get(ctx, "metric:example.com", &out)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !found {
				t.Fatal("Get found = false, want true")
			}
			if out.Title != in.Title || out.Count != in.Count || len(out.Tags) != 2 {
				t.Errorf("round-trip mismatch: got %+v, want %+v", out, in)
			}
		})
	}
}

func TestStore_MissingKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var out payload
			found, err := s.Get(context.Background(), "nope", &out)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if found {
				t.Error("found = true for missing key, want false")
			}
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := s.Set(ctx, "settings", KindSettings, payload{Count: 1}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "settings", KindSettings, payload{Count: 2}); err != nil {
				t.Fatalf("Set (overwrite) failed: %v", err)
			}

			var out payload
			if _, err := s.Get(ctx, "settings", &out); err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if out.Count != 2 {
				t.Errorf("Count = %d, want 2 (last write wins)", out.Count)
			}
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := s.Set(ctx, "gone", KindList, payload{}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Delete(ctx, "gone"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Delete(ctx, "gone"); err != nil {
				t.Errorf("second Delete failed: %v", err)
			}

			var out payload
			found, _ := s.Get(ctx, "gone", &out)
			if found {
				t.Error("record still present after Delete")
			}
		})
	}
}

func TestStore_KeysFiltersByKind(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seed := map[string]string{
				"captures":             KindList,
				"metric:a.com":         KindMetric,
				"metric:b.com/path":    KindMetric,
				"settings":             KindSettings,
				"bookmark:01HX2Z8Q9itm": KindBookmark,
			}
			for k, kind := range seed {
				if err := s.Set(ctx, k, kind, payload{}); err != nil {
					t.Fatalf("Set %q failed: %v", k, err)
				}
			}

			metrics, err := s.Keys(ctx, KindMetric)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(metrics) != 2 {
				t.Errorf("len(metric keys) = %d, want 2: %v", len(metrics), metrics)
			}
			if len(metrics) == 2 && (metrics[0] != "metric:a.com" || metrics[1] != "metric:b.com/path") {
				t.Errorf("metric keys not sorted: %v", metrics)
			}

			all, err := s.Keys(ctx, "")
			if err != nil {
				t.Fatalf("Keys(all) failed: %v", err)
			}
			if len(all) != len(seed) {
				t.Errorf("len(all keys) = %d, want %d", len(all), len(seed))
			}
		})
	}
}
