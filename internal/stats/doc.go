// Package stats accumulates corpus statistics over a crawl.
//
// The Aggregator tracks the set of observed URLs, per-subdomain counts of
// valid URLs, a global word histogram of accepted pages, and the longest
// accepted page. Snapshot turns the running state into a model.Report.
//
// The Aggregator is not safe for concurrent use. The page pipeline owns the
// single lock that guards it together with the dedup caches.
package stats
