// Package fetch downloads pages for the crawler.
//
// Client wraps an http.Client with a request timeout, a redirect limit, a
// response body cap, and a RoundTripper that stamps every request (redirects
// included) with the configured User-Agent and extra headers. Requests can
// optionally be routed through a SOCKS5 proxy, such as a caching proxy in
// front of the crawled hosts.
package fetch
