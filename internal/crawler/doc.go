// Package crawler runs the crawl loop.
//
// A Worker repeatedly takes a URL from the Frontier, fetches it, hands the
// result to the page Processor, queues the returned links, marks the URL
// complete, and sleeps for the politeness delay. It stops when the frontier
// is exhausted or the context is cancelled.
//
// A Crawler runs several Workers concurrently against the same Frontier and
// Processor using an errgroup.
package crawler
