// Package urlfilter canonicalizes discovered links and decides whether a URL
// is eligible for crawling.
//
// Normalization resolves an href against the page it was found on and drops
// the fragment. Nothing else is canonicalized: two URLs that differ only by a
// trailing slash or by query parameter order are different URLs.
//
// Validation applies, in order:
//   - a scheme check (http and https only)
//   - a domain allow-list, where a domain may additionally require a path prefix
//   - trap path substrings (calendars, day/month archives, event listings)
//   - an extension denylist for non-HTML resources
//   - optional glob ignore patterns supplied by configuration
package urlfilter
