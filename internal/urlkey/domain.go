package urlkey

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// RegistrableDomain extracts the registrable domain (eTLD+1) of a URL for
// grouping: scheme stripped, a leading "www." subdomain dropped, and the
// public suffix list consulted so "docs.example.co.uk" buckets with
// "example.co.uk". Returns false for URLs with no usable host.
func RegistrableDomain(raw string) (string, bool) {
	host := raw
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	} else {
		// Fallback for bare hosts without a scheme.
		host = strings.Split(host, "/")[0]
		host = strings.Split(host, ":")[0]
	}

	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" || !strings.Contains(host, ".") {
		return "", false
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		// Unknown suffix; the stripped host is still a usable bucket.
		return host, true
	}
	return domain, true
}
