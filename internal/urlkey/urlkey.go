// Package urlkey canonicalizes URLs into the identity keys used across
// captures, bookmarks, and metrics. Two URLs differing only in scheme,
// query string, fragment, port, or case are the same item.
package urlkey

import (
	"net/url"
	"strings"
)

// Normalize returns the comparable key for a URL: lowercase hostname+path
// with a single trailing slash stripped. On parse failure (or a URL with no
// host) it falls back to the lowercased raw input. It never fails.
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	key := strings.ToLower(u.Hostname() + u.Path)
	if strings.HasSuffix(key, "/") {
		key = key[:len(key)-1]
	}
	return key
}

// IsSystem reports whether a URL is a browser-internal page that should
// never be captured, deduplicated, or counted: blank URLs and the chrome:,
// chrome-extension:, and about: schemes.
func IsSystem(raw string) bool {
	if raw == "" {
		return true
	}
	return strings.HasPrefix(raw, "chrome://") ||
		strings.HasPrefix(raw, "chrome-extension://") ||
		strings.HasPrefix(raw, "about:")
}
