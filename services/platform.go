package services

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// DefaultPlatformDomains are hosts that block direct retrieval and are analyzed by reference.
var DefaultPlatformDomains = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"twitter.com",
	"x.com",
}

// PlatformMatcher recognizes URLs on video-sharing and microblogging platforms.
type PlatformMatcher struct {
	domains []string
}

func NewPlatformMatcher(extra ...string) *PlatformMatcher {
	seen := make(map[string]bool)
	m := &PlatformMatcher{}
	for _, d := range append(append([]string{}, DefaultPlatformDomains...), extra...) {
		d = normalizeHost(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		m.domains = append(m.domains, d)
	}
	return m
}

func (m *PlatformMatcher) Domains() []string {
	return append([]string(nil), m.domains...)
}

// IsPlatformLink matches the URL host against the allow-list, subdomains included.
// Inputs without a parseable host fall back to a substring check on the raw text.
func (m *PlatformMatcher) IsPlatformLink(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		lower := strings.ToLower(rawURL)
		for _, d := range m.domains {
			if strings.Contains(lower, d) {
				return true
			}
		}
		return false
	}

	for _, d := range m.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	host = strings.TrimPrefix(host, "www.")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}
