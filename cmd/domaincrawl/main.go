// Package main provides the entry point for the domaincrawl CLI.
//
// domaincrawl is a polite multi-worker web crawler restricted to an
// allow-list of domains. It discards duplicate and near-duplicate pages and
// reports corpus statistics: unique pages, the longest page, the most
// common words and per-subdomain counts.
//
// Usage:
//
//	domaincrawl crawl
//	domaincrawl crawl --seed https://www.ics.uci.edu --workers 4
//	domaincrawl report --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
