package settings

import (
	"context"
	"testing"

	"github.com/hpungsan/tabstash/internal/kv"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestGet_DefaultsWhenEmpty(t *testing.T) {
	s := NewStore(kv.NewMemory())

	got := s.Get(context.Background())

	if !got.Enabled {
		t.Error("Enabled default = false, want true")
	}
	if !got.AutoDedupe {
		t.Error("AutoDedupe default = false, want true")
	}
	if got.InterceptThreshold != 50 {
		t.Errorf("InterceptThreshold default = %d, want 50", got.InterceptThreshold)
	}
	if got.ExcludedDomains == nil {
		t.Error("ExcludedDomains default = nil, want empty slice")
	}
	if !got.NewTabOverride {
		t.Error("NewTabOverride default = false, want true")
	}
}

func TestSave_ShallowMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	merged, err := s.Save(ctx, Patch{Enabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if merged.Enabled {
		t.Error("Enabled = true after saving false")
	}
	// Untouched fields keep defaults
	if !merged.AutoDedupe {
		t.Error("AutoDedupe changed by unrelated patch")
	}

	// A second partial save must not resurrect the default
	merged, err = s.Save(ctx, Patch{InterceptThreshold: intPtr(80)})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if merged.Enabled {
		t.Error("Enabled reset to default by later partial save")
	}
	if merged.InterceptThreshold != 80 {
		t.Errorf("InterceptThreshold = %d, want 80", merged.InterceptThreshold)
	}

	got := s.Get(ctx)
	if got.Enabled || got.InterceptThreshold != 80 {
		t.Errorf("persisted settings = %+v, want enabled=false threshold=80", got)
	}
}

func TestSave_TriggersIndicator(t *testing.T) {
	s := NewStore(kv.NewMemory())

	var seen []bool
	s.OnSave = func(st Settings) { seen = append(seen, st.Enabled) }

	if _, err := s.Save(context.Background(), Patch{Enabled: boolPtr(false)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(context.Background(), Patch{AutoDedupe: boolPtr(false)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("indicator updated %d times, want 2", len(seen))
	}
	if seen[0] != false || seen[1] != false {
		t.Errorf("indicator saw enabled states %v, want [false false]", seen)
	}
}

func TestIsExcluded(t *testing.T) {
	s := Settings{ExcludedDomains: []string{"example.com", "Internal.Corp"}}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page", true},
		{"https://sub.example.com/page", true},
		{"https://notexample.com/page", false},
		{"https://wiki.internal.corp", true},
		{"https://other.org", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := s.IsExcluded(tt.url); got != tt.want {
			t.Errorf("IsExcluded(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
