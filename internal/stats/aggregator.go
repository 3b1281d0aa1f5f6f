package stats

import (
	"sort"
	"time"

	"github.com/nao1215/domaincrawl/internal/model"
)

// Aggregator holds the running statistics of a crawl.
type Aggregator struct {
	stopWords map[string]struct{}

	// seen and seenOrder form the unique page set.
	seen      map[string]struct{}
	seenOrder []string

	subdomains map[string]int

	// words is the histogram; wordOrder keeps first-insertion order for ties.
	words     map[string]int
	wordOrder []string

	longest  *model.LongestPage
	accepted int

	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithStopWords replaces the default stop-word list.
// Words are matched against lowercased tokens.
func WithStopWords(words []string) Option {
	return func(a *Aggregator) {
		a.stopWords = toSet(words)
	}
}

// WithClock sets the time source used for Report.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New creates an empty Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		stopWords:  toSet(DefaultStopWords),
		seen:       make(map[string]struct{}),
		subdomains: make(map[string]int),
		words:      make(map[string]int),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Observe adds url to the unique page set and reports whether it was new.
func (a *Aggregator) Observe(url string) bool {
	if _, ok := a.seen[url]; ok {
		return false
	}
	a.seen[url] = struct{}{}
	a.seenOrder = append(a.seenOrder, url)
	return true
}

// Seen reports whether url has been observed.
func (a *Aggregator) Seen(url string) bool {
	_, ok := a.seen[url]
	return ok
}

// UniqueCount returns the size of the unique page set.
func (a *Aggregator) UniqueCount() int {
	return len(a.seenOrder)
}

// CountSubdomain increments the valid-URL count of host.
func (a *Aggregator) CountSubdomain(host string) {
	a.subdomains[host]++
}

// Accept folds the tokens of an accepted page into the histogram and the
// longest-page record. It returns the 1-based acceptance sequence number.
//
// The longest page is replaced only when the new page is strictly longer,
// so the earliest page wins a tie.
func (a *Aggregator) Accept(url string, tokens []string) int {
	for _, tok := range tokens {
		if _, stop := a.stopWords[tok]; stop {
			continue
		}
		if _, ok := a.words[tok]; !ok {
			a.wordOrder = append(a.wordOrder, tok)
		}
		a.words[tok]++
	}

	if a.longest == nil || len(tokens) > a.longest.WordCount {
		a.longest = &model.LongestPage{URL: url, WordCount: len(tokens)}
	}

	a.accepted++
	return a.accepted
}

// Accepted returns the number of accepted pages.
func (a *Aggregator) Accepted() int {
	return a.accepted
}

// Snapshot returns a report of the current state. topN limits the word
// list; a non-positive value uses model.DefaultTopWords.
func (a *Aggregator) Snapshot(topN int) *model.Report {
	if topN <= 0 {
		topN = model.DefaultTopWords
	}

	r := &model.Report{
		GeneratedAt:   a.now(),
		UniquePages:   len(a.seenOrder),
		AcceptedPages: a.accepted,
		TopWords:      a.topWords(topN),
		Subdomains:    a.sortedSubdomains(),
		UniqueURLs:    append([]string(nil), a.seenOrder...),
	}
	if a.longest != nil {
		longest := *a.longest
		r.Longest = &longest
	}
	return r
}

func (a *Aggregator) topWords(n int) []model.WordCount {
	ranked := make([]model.WordCount, 0, len(a.wordOrder))
	for _, w := range a.wordOrder {
		ranked = append(ranked, model.WordCount{Word: w, Count: a.words[w]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (a *Aggregator) sortedSubdomains() []model.SubdomainCount {
	hosts := make([]string, 0, len(a.subdomains))
	for h := range a.subdomains {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	out := make([]model.SubdomainCount, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, model.SubdomainCount{Host: h, Count: a.subdomains[h]})
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
