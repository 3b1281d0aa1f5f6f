// Package database provides SQLite-based storage for domaincrawl.
//
// CrawlDB stores:
//   - the frontier: every URL added to the crawl and whether it completed
//   - accepted pages with their word count and content hash
//   - final crawl reports as JSON for later rendering
//
// The pure-Go modernc.org/sqlite driver keeps the binary CGO-free. The
// database is opened with a single connection, so concurrent workers
// serialize on it.
package database
