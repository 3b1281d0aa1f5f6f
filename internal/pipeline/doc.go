// Package pipeline turns a fetched page into the links worth queuing and
// folds its content into the shared crawl state.
//
// A single Pipeline is shared by every worker of a crawl. For each page it:
//  1. observes the page URL in the unique page set
//  2. extracts links and visible text (outside the lock)
//  3. filters links: first observation, then validity, then subdomain count
//  4. applies the word-count bounds
//  5. runs the exact and near-duplicate checks
//  6. records accepted pages in the statistics and every PageSink
//
// Steps 3, 5 and 6 mutate shared state and run under one mutex, so the
// check-then-insert sequences are atomic across workers.
package pipeline
