package domain

import (
	"net/url"
	"strings"
)

// AllowedDomains is the closed set of official sources the corpus may be
// built from. Subdomains of an entry are allowed too.
var AllowedDomains = []string{
	"gov.sg",
	"hdb.gov.sg",
	"cea.gov.sg",
	"ura.gov.sg",
}

// HostOf extracts the lowercase hostname of rawURL, or "" when the URL
// does not parse.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// URLAllowed reports whether rawURL points at a whitelisted domain.
// Matching is exact or dot-suffix on the lowercase host.
func URLAllowed(rawURL string) bool {
	host := HostOf(rawURL)
	if host == "" {
		return false
	}
	for _, allowed := range AllowedDomains {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
