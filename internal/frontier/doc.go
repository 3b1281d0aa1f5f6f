// Package frontier holds the URLs waiting to be crawled.
//
// A Frontier is a first-in first-out queue that also tracks which URLs are
// currently held by workers. It reports exhaustion only when nothing is
// pending and nothing is in flight, because an in-flight page may still
// contribute new links. Next blocks in between.
//
// Every URL ever added is remembered, so re-adding is a no-op. When a Store
// is attached, additions and completions are persisted and an interrupted
// crawl resumes with its unfinished URLs.
package frontier
