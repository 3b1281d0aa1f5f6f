// Package dedup detects exact and near-duplicate page content.
//
// Two bounded FIFO caches hold the most recently accepted pages:
//   - TextCache holds full page texts for exact matching
//   - TokenCache holds token frequency histograms for approximate matching
//
// A page is a near duplicate of a cached page when the number of distinct
// tokens the two share, divided by the distinct-token count of the smaller
// page, reaches the similarity threshold. Token frequencies and order are
// ignored.
//
// Nothing in this package is safe for concurrent use. The caller must hold
// one lock across each Engine.Check so that the check and the insert it
// implies are atomic.
package dedup
