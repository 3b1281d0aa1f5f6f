package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// StatusOK is the only fetch status that yields page content.
const StatusOK = 200

// FetchResult is the outcome of downloading a single URL.
// It is produced by the fetch layer and consumed by the page pipeline.
type FetchResult struct {
	// Status is the HTTP status code. Zero means the request never produced
	// a response (transport failure).
	Status int `json:"status"`

	// ErrorDetail describes why the fetch did not succeed.
	// Empty when Status is 200.
	ErrorDetail string `json:"error_detail,omitempty"`

	// FinalURL is the URL of the response after redirects.
	// Relative links on the page are resolved against it.
	FinalURL string `json:"final_url"`

	// ContentType is the Content-Type response header, used for charset detection.
	ContentType string `json:"content_type,omitempty"`

	// Body is the raw response body, limited by the fetcher's body size cap.
	Body []byte `json:"-"`

	// Truncated is set when the response was longer than the body size cap
	// and Body holds only its prefix.
	Truncated bool `json:"truncated,omitempty"`
}

// OK reports whether the fetch produced usable content.
func (r *FetchResult) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Page is a page whose content passed the word-count bounds and both
// duplicate checks.
type Page struct {
	// Seq is the 1-based acceptance order of the page within the crawl.
	Seq int `json:"seq"`

	// URL is the URL the page was requested as.
	URL string `json:"url"`

	// Text is the cleaned visible text of the page.
	Text string `json:"-"`

	// WordCount is the number of whitespace-separated tokens in Text.
	WordCount int `json:"word_count"`

	// Hash is the hex SHA3-256 digest of Text.
	Hash string `json:"hash"`

	// AcceptedAt is when the page was accepted.
	AcceptedAt time.Time `json:"accepted_at"`
}

// ComputeHash calculates and sets the SHA3-256 hash of the page text.
func (p *Page) ComputeHash() {
	if p.Text == "" {
		p.Hash = ""
		return
	}

	sum := sha3.Sum256([]byte(p.Text))
	p.Hash = hex.EncodeToString(sum[:])
}
