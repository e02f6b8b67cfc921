package domain

import (
	"net/url"
	"strings"
)

// AbsoluteURL resolves href against base. Values that already carry a
// scheme and host are returned unchanged; unparseable input is returned
// trimmed so the caller still has something to hash.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() && ref.Host != "" {
		return ref.String()
	}

	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return href
	}
	return b.ResolveReference(ref).String()
}
