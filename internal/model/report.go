package model

import "time"

// DefaultTopWords is the number of most frequent words listed in a report.
const DefaultTopWords = 50

// Report is a snapshot of the corpus statistics at the end of a crawl.
//
// Slices are already in presentation order: TopWords by descending count,
// Subdomains lexicographically, UniqueURLs in the order they were first seen.
type Report struct {
	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`

	// UniquePages is the number of distinct URL strings observed.
	UniquePages int `json:"unique_pages"`

	// AcceptedPages is the number of pages whose content was accepted.
	AcceptedPages int `json:"accepted_pages"`

	// Longest is the accepted page with the highest word count.
	// Nil when no page has been accepted.
	Longest *LongestPage `json:"longest,omitempty"`

	// TopWords are the most frequent non-stop words.
	TopWords []WordCount `json:"top_words"`

	// Subdomains are the valid-URL counts per network location.
	Subdomains []SubdomainCount `json:"subdomains"`

	// UniqueURLs lists every observed URL.
	UniqueURLs []string `json:"unique_urls"`
}

// LongestPage records the page with the most words.
type LongestPage struct {
	URL       string `json:"url"`
	WordCount int    `json:"word_count"`
}

// WordCount is one entry of the word frequency histogram.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SubdomainCount is the number of valid unique URLs seen under a host.
type SubdomainCount struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// SubdomainTotal returns the sum of all subdomain counts.
func (r *Report) SubdomainTotal() int {
	total := 0
	for _, s := range r.Subdomains {
		total += s.Count
	}
	return total
}
