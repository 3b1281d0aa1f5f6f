package urlfilter

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize resolves href against base and strips the fragment.
// The result is an absolute URL string. If either input cannot be parsed,
// the returned error wraps ErrMalformedURL.
func Normalize(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base %q: %v", ErrMalformedURL, base, err)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: href %q: %v", ErrMalformedURL, href, err)
	}

	resolved := baseURL.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	return resolved.String(), nil
}

// Host returns the network location (host[:port]) of rawURL.
func Host(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	return u.Host, nil
}
