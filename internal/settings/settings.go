// Package settings holds the user-configurable toggles and thresholds,
// persisted as a single kv record and merged over hardcoded defaults on
// every read.
package settings

import (
	"context"
	"net/url"
	"strings"

	"github.com/hpungsan/tabstash/internal/kv"
)

// Key is the kv record key holding the stored settings overrides.
const Key = "settings"

// Settings are the user-facing toggles. InterceptThreshold is a stored
// sensitivity knob reserved for the capture-decision logic; nothing
// consults it yet, but it round-trips so existing installs keep their
// value.
type Settings struct {
	Enabled            bool     `json:"enabled"`
	AutoDedupe         bool     `json:"auto_dedupe"`
	InterceptThreshold int      `json:"intercept_threshold"` // 0–100
	ExcludedDomains    []string `json:"excluded_domains"`
	NewTabOverride     bool     `json:"new_tab_override"`
}

// Patch is a partial settings update; nil fields are left unchanged.
type Patch struct {
	Enabled            *bool     `json:"enabled,omitempty"`
	AutoDedupe         *bool     `json:"auto_dedupe,omitempty"`
	InterceptThreshold *int      `json:"intercept_threshold,omitempty"`
	ExcludedDomains    *[]string `json:"excluded_domains,omitempty"`
	NewTabOverride     *bool     `json:"new_tab_override,omitempty"`
}

// IsExcluded reports whether the URL's host falls under any excluded
// domain, matching the domain itself or any subdomain of it.
func (s Settings) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())

	for _, d := range s.ExcludedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Defaults returns the hardcoded defaults applied under any stored record.
func Defaults() Settings {
	return Settings{
		Enabled:            true,
		AutoDedupe:         true,
		InterceptThreshold: 50,
		ExcludedDomains:    []string{},
		NewTabOverride:     true,
	}
}

// Store reads and writes settings through the kv collaborator.
type Store struct {
	kv kv.Store

	// OnSave, when set, is invoked with the merged settings after every
	// successful save so the boundary can refresh the enabled indicator.
	OnSave func(Settings)
}

// NewStore creates a settings store over the given kv backend.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Get returns the stored settings merged over defaults. A missing or
// unreadable record yields plain defaults; Get never fails.
func (s *Store) Get(ctx context.Context) Settings {
	merged := Defaults()

	var stored Patch
	found, err := s.kv.Get(ctx, Key, &stored)
	if err != nil || !found {
		return merged
	}
	applyPatch(&merged, stored)
	return merged
}

// Save shallow-merges the patch into the current settings, persists the
// full merged record, and returns it.
func (s *Store) Save(ctx context.Context, patch Patch) (Settings, error) {
	merged := s.Get(ctx)
	applyPatch(&merged, patch)

	if err := s.kv.Set(ctx, Key, kv.KindSettings, merged); err != nil {
		return merged, err
	}
	if s.OnSave != nil {
		s.OnSave(merged)
	}
	return merged, nil
}

func applyPatch(dst *Settings, p Patch) {
	if p.Enabled != nil {
		dst.Enabled = *p.Enabled
	}
	if p.AutoDedupe != nil {
		dst.AutoDedupe = *p.AutoDedupe
	}
	if p.InterceptThreshold != nil {
		dst.InterceptThreshold = *p.InterceptThreshold
	}
	if p.ExcludedDomains != nil {
		dst.ExcludedDomains = *p.ExcludedDomains
	}
	if p.NewTabOverride != nil {
		dst.NewTabOverride = *p.NewTabOverride
	}
}
