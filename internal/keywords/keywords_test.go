package keywords

import (
	"slices"
	"testing"
)

func TestExtract_FiltersStopWordsAndNumbers(t *testing.T) {
	got := Extract("The Best Recipe Guide 2024", "https://cooking.example.com/recipes/best-guide")

	if slices.Contains(got, "the") {
		t.Errorf("Extract should drop stop-word 'the', got %v", got)
	}
	if slices.Contains(got, "2024") {
		t.Errorf("Extract should drop purely numeric tokens, got %v", got)
	}
	if !slices.Contains(got, "recipe") && !slices.Contains(got, "recipes") {
		t.Errorf("Extract should keep recipe-derived tokens, got %v", got)
	}
	if len(got) > MaxKeywords {
		t.Errorf("len = %d, want ≤ %d", len(got), MaxKeywords)
	}
}

func TestExtract_NoDuplicates(t *testing.T) {
	got := Extract("Recipe recipe RECIPE", "https://example.com/recipe")

	counts := make(map[string]int)
	for _, kw := range got {
		counts[kw]++
	}
	for kw, n := range counts {
		if n > 1 {
			t.Errorf("keyword %q appears %d times, want 1", kw, n)
		}
	}
}

func TestExtract_DropsShortTokens(t *testing.T) {
	got := Extract("Go vs C", "https://example.com/ab/cd")

	for _, kw := range got {
		if len(kw) <= 2 {
			t.Errorf("token %q has length ≤2, should be dropped", kw)
		}
	}
}

func TestExtract_CapsAtMax(t *testing.T) {
	got := Extract(
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november",
		"https://example.com",
	)

	if len(got) != MaxKeywords {
		t.Errorf("len = %d, want %d", len(got), MaxKeywords)
	}
	// First-occurrence order preserved
	if got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestExtract_MalformedURLContributesNothing(t *testing.T) {
	got := Extract("reading list", "http://%zz")

	want := []string{"reading", "list"}
	if !slices.Equal(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestFromText_SplitsPathSegments(t *testing.T) {
	got := FromText("getting-started/advanced-usage")

	for _, want := range []string{"getting", "started", "advanced", "usage"} {
		if !slices.Contains(got, want) {
			t.Errorf("FromText missing %q in %v", want, got)
		}
	}
}

func TestMerge_UnionsPreservingOrder(t *testing.T) {
	got := Merge([]string{"golang", "testing"}, []string{"Testing", "sqlite"})

	want := []string{"golang", "testing", "sqlite"}
	if !slices.Equal(got, want) {
		t.Errorf("Merge = %v, want %v", got, want)
	}
}

func TestMerge_CapsAtMax(t *testing.T) {
	a := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	b := []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8"}

	got := Merge(a, b)
	if len(got) != MaxKeywords {
		t.Errorf("len = %d, want %d", len(got), MaxKeywords)
	}
}
